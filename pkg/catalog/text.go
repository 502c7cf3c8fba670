package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

const (
	tagsPrefix       = "tags:"
	propertiesPrefix = "properties:"
)

// sequence is a raw text-database record: description lines followed by
// one or more encoded frames.
type sequence struct {
	desc   []string
	frames []string
	line   int
}

// ReadText parses a GrappleMap-style text database.
//
// Lines starting with a space hold positions, four lines per position.
// Any other non-empty line is a description line of the record that
// follows. The first description line is the record's description;
// "tags:" and "properties:" lines list whitespace-separated tags and
// properties; remaining lines are kept as notes. A record with a single
// position is an explicit position; one with several is a transition from
// its first to its last frame.
//
// Codes are not decoded here.
func ReadText(r io.Reader) (*Catalog, error) {
	seqs, err := readSequences(r)
	if err != nil {
		return nil, err
	}

	var positions []PositionRecord
	var transitions []TransitionRecord
	for _, s := range seqs {
		description, tags, props, notes := splitDescription(s.desc)
		if len(s.frames) == 1 {
			positions = append(positions, PositionRecord{
				Code:               s.frames[0],
				Description:        description,
				Tags:               tags,
				Properties:         props,
				IsExplicitPosition: true,
				Notes:              notes,
				Line:               s.line,
			})
			continue
		}
		transitions = append(transitions, TransitionRecord{
			Start:       CodeEndpoint(s.frames[0]),
			End:         CodeEndpoint(s.frames[len(s.frames)-1]),
			Description: description,
			Tags:        tags,
			Properties:  props,
			Notes:       notes,
			Frames:      s.frames,
			Line:        s.line,
		})
	}
	return New(positions, transitions), nil
}

func readSequences(r io.Reader) ([]sequence, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		seqs      []sequence
		desc      []string
		descLine  int
		lineNr    int
		pending   []string // indented lines of the frame being read
		pendStart int
		inFrames  bool
	)
	badCatalog := func(line int, format string, args ...any) error {
		return errs.New(errs.ErrCodeInvalidCatalog, "line %d: %s", line, fmt.Sprintf(format, args...))
	}
	flushFrame := func() error {
		if len(pending) == 0 {
			return nil
		}
		if len(pending) != pose.FormattedLines {
			return badCatalog(pendStart, "position has %d lines, want %d", len(pending), pose.FormattedLines)
		}
		var b strings.Builder
		for _, l := range pending {
			b.WriteString(strings.TrimSpace(l))
		}
		seqs[len(seqs)-1].frames = append(seqs[len(seqs)-1].frames, b.String())
		pending = pending[:0]
		return nil
	}

	for sc.Scan() {
		lineNr++
		line := strings.TrimRight(sc.Text(), "\r")
		if line != "" && strings.TrimSpace(line) == "" {
			// Indented but blank; not a frame line.
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if !inFrames {
				if len(desc) == 0 {
					return nil, badCatalog(lineNr, "position without description")
				}
				seqs = append(seqs, sequence{desc: desc, line: descLine})
				desc = nil
				inFrames = true
			}
			if len(pending) == 0 {
				pendStart = lineNr
			}
			pending = append(pending, line)
			if len(pending) == pose.FormattedLines {
				if err := flushFrame(); err != nil {
					return nil, err
				}
			}
			continue
		}

		if err := flushFrame(); err != nil {
			return nil, err
		}
		inFrames = false
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(desc) == 0 {
			descLine = lineNr
		}
		desc = append(desc, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidCatalog, err, "read text database")
	}
	if err := flushFrame(); err != nil {
		return nil, err
	}
	if len(desc) > 0 {
		return nil, badCatalog(descLine, "description %q has no positions", desc[0])
	}
	return seqs, nil
}

func splitDescription(lines []string) (description string, tags, props, notes []string) {
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, tagsPrefix):
			tags = append(tags, strings.Fields(l[len(tagsPrefix):])...)
		case strings.HasPrefix(l, propertiesPrefix):
			props = append(props, strings.Fields(l[len(propertiesPrefix):])...)
		case i == 0:
			description = l
		default:
			notes = append(notes, l)
		}
	}
	return description, tags, props, notes
}

// WriteText writes c in the text database format read by ReadText.
// Explicit and non-explicit positions are both written as single-frame
// records and so read back as explicit. Transitions without frames are
// written from their start to their end code; node id endpoints cannot be
// represented and yield an error.
func WriteText(w io.Writer, c *Catalog) error {
	bw := bufio.NewWriter(w)
	for _, p := range c.positions {
		writeDescription(bw, p.Description, p.Tags, p.Properties, p.Notes)
		if err := writeFrame(bw, p.Code); err != nil {
			return err
		}
	}
	for _, t := range c.transitions {
		frames := t.Frames
		if len(frames) == 0 {
			if t.Start.IsNode() || t.End.IsNode() {
				return errs.New(errs.ErrCodeUnsupported, "transition %q refers to node ids", t.Description)
			}
			frames = []string{t.Start.Code, t.End.Code}
		}
		writeDescription(bw, t.Description, t.Tags, t.Properties, t.Notes)
		for _, f := range frames {
			if err := writeFrame(bw, f); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeDescription(w *bufio.Writer, description string, tags, props, notes []string) {
	if description == "" {
		description = "?"
	}
	w.WriteString(description + "\n")
	if len(tags) > 0 {
		w.WriteString(tagsPrefix + " " + strings.Join(tags, " ") + "\n")
	}
	if len(props) > 0 {
		w.WriteString(propertiesPrefix + " " + strings.Join(props, " ") + "\n")
	}
	for _, n := range notes {
		w.WriteString(n + "\n")
	}
}

func writeFrame(w *bufio.Writer, code string) error {
	if len(code) != pose.EncodedSize {
		return errs.New(errs.ErrCodeInvalidPosition, "code has %d characters, want %d", len(code), pose.EncodedSize)
	}
	_, err := w.WriteString(pose.FormatCode(code))
	return err
}
