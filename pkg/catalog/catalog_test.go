package catalog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

const fixturePath = "testdata/fixture.gm"

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(fixturePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestReadTextFixture(t *testing.T) {
	c := loadFixture(t)

	positions := c.Positions()
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	imanari, backStep := positions[0], positions[1]
	if imanari.Description != "completed imanari roll" || imanari.Line != 1 {
		t.Errorf("first position = %q at line %d", imanari.Description, imanari.Line)
	}
	if !slices.Equal(imanari.Tags, []string{"bottom", "leglock"}) {
		t.Errorf("tags = %v", imanari.Tags)
	}
	if !imanari.IsExplicitPosition {
		t.Error("single-frame records are explicit positions")
	}
	if backStep.Description != "back step pass" || backStep.Line != 7 {
		t.Errorf("second position = %q at line %d", backStep.Description, backStep.Line)
	}
	if !slices.Equal(backStep.Notes, []string{"ref: seminar notes"}) {
		t.Errorf("notes = %v", backStep.Notes)
	}

	transitions := c.Transitions()
	if len(transitions) != 2 {
		t.Fatalf("got %d transitions, want 2", len(transitions))
	}
	honey, freeLeg := transitions[0], transitions[1]
	if honey.Description != "to honey" || honey.Line != 14 {
		t.Errorf("first transition = %q at line %d", honey.Description, honey.Line)
	}
	if len(honey.Frames) != 3 {
		t.Errorf("to honey has %d frames, want 3", len(honey.Frames))
	}
	if honey.Start.Code != honey.Frames[0] || honey.End.Code != honey.Frames[2] {
		t.Error("start and end should repeat the first and last frames")
	}
	if !honey.HasProperty(PropertyDetailed) || honey.HasProperty(PropertyBidirectional) {
		t.Errorf("to honey properties = %v", honey.Properties)
	}
	if !freeLeg.HasProperty(PropertyBidirectional) {
		t.Errorf("free leg properties = %v", freeLeg.Properties)
	}

	for _, p := range positions {
		if _, err := pose.Decode(p.Code); err != nil {
			t.Errorf("%s: %v", p.Description, err)
		}
	}
	for _, tr := range transitions {
		for _, f := range tr.Frames {
			if _, err := pose.Decode(f); err != nil {
				t.Errorf("%s: %v", tr.Description, err)
			}
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	c := loadFixture(t)
	var buf bytes.Buffer
	if err := WriteText(&buf, c); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	again, err := ReadText(&buf)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if again.Hash() != c.Hash() {
		t.Error("text round trip changed the catalog")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := loadFixture(t)
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := Save(path, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.Hash() != c.Hash() {
		t.Error("JSON round trip changed the catalog")
	}
	if again.Len() != 4 {
		t.Errorf("Len = %d, want 4", again.Len())
	}
}

func TestReadJSONEndpoints(t *testing.T) {
	code := loadFixture(t).Positions()[0].Code
	input := `{
	  "positions": [{"code": "` + code + `", "description": "a", "isExplicitPosition": true}],
	  "transitions": [{"startPosition": 0, "endPosition": "` + code + `", "description": "t", "properties": ["bidirectional"]}]
	}`
	c, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	tr := c.Transitions()[0]
	if !tr.Start.IsNode() || *tr.Start.Node != 0 {
		t.Errorf("start = %v, want node 0", tr.Start)
	}
	if tr.End.IsNode() || tr.End.Code != code {
		t.Errorf("end = %v, want code", tr.End)
	}

	out, err := json.Marshal(tr.Start)
	if err != nil || string(out) != "0" {
		t.Errorf("Marshal(start) = %s, %v", out, err)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, c); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("WriteText with node endpoints: err = %v", err)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "positions"},
		{"unknown field", `{"nodes": []}`},
		{"bad endpoint", `{"transitions": [{"startPosition": true}]}`},
		{"negative node", `{"transitions": [{"startPosition": -1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errs.Is(err, errs.ErrCodeInvalidCatalog) {
				t.Errorf("err = %v, want INVALID_CATALOG", err)
			}
		})
	}
}

func TestReadTextErrors(t *testing.T) {
	frame := pose.FormatCode(loadFixture(t).Positions()[0].Code)
	lines := strings.SplitAfter(frame, "\n")

	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"position without description", frame, "line 1"},
		{"truncated position", "title\n" + lines[0] + lines[1] + "next\n", "line 2"},
		{"truncated at end", "title\n" + lines[0], "line 2"},
		{"dangling description", "title\n" + frame + "orphan\n", "line 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadText(strings.NewReader(tt.input))
			if !errs.Is(err, errs.ErrCodeInvalidCatalog) {
				t.Fatalf("err = %v, want INVALID_CATALOG", err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("err = %v, want mention of %s", err, tt.line)
			}
		})
	}
}

func TestReadTextSkipsBlankLines(t *testing.T) {
	frame := pose.FormatCode(loadFixture(t).Positions()[0].Code)
	c, err := ReadText(strings.NewReader("\nfirst\n" + frame + "\n\nsecond\n" + frame))
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	ps := c.Positions()
	if len(ps) != 2 || ps[0].Description != "first" || ps[1].Description != "second" {
		t.Errorf("positions = %+v", ps)
	}
	if ps[1].Line != 9 {
		t.Errorf("second record at line %d, want 9", ps[1].Line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gm"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadTextIgnoresWhitespaceOnlyLines(t *testing.T) {
	code := loadFixture(t).Positions()[0].Code
	frame := pose.FormatCode(code)
	lines := strings.SplitAfter(frame, "\n")

	tests := []struct {
		name  string
		input string
	}{
		{"trailing indented blank", "first\n" + frame + "    \n"},
		{"trailing tab", "first\n" + frame + "\t\n"},
		{"inside a frame", "first\n" + lines[0] + lines[1] + "  \t \n" + lines[2] + lines[3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ReadText(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadText: %v", err)
			}
			ps := c.Positions()
			if len(ps) != 1 || ps[0].Code != code {
				t.Errorf("positions = %+v, want one record with the fixture code", ps)
			}
		})
	}
}
