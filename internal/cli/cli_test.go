package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/pose/posetest"
	"github.com/matzehuels/grapplegraph/pkg/relax"
)

const fixturePath = "../../pkg/catalog/testdata/fixture.gm"

// writeConfig writes a config file that keeps tests off the user's cache.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if body == "" {
		body = "[cache]\nbackend = \"none\"\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runWithConfig(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runWithConfig(t, writeConfig(t, ""), stdin, args...)
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func sampleCode(t *testing.T, seed uint64) string {
	t.Helper()
	code, err := pose.Encode(posetest.Sample(seed))
	if err != nil {
		t.Fatal(err)
	}
	return code
}

func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fixture.gm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// Pose Commands
// =============================================================================

func TestDecode(t *testing.T) {
	code := sampleCode(t, 1)
	out := mustRun(t, "", "decode", code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != pose.PlayerJointCount {
		t.Fatalf("got %d lines, want %d", len(lines), pose.PlayerJointCount)
	}
	if !strings.HasPrefix(lines[0], "p0.LeftToe ") || !strings.HasPrefix(lines[len(lines)-1], "p1.Head ") {
		t.Errorf("unexpected order: %q ... %q", lines[0], lines[len(lines)-1])
	}

	if piped := mustRun(t, pose.FormatCode(code), "decode"); piped != out {
		t.Error("stdin input should decode like the argument")
	}
	if dash := mustRun(t, code, "decode", "-"); dash != out {
		t.Error(`"-" should read stdin`)
	}
}

func TestDecodeJSON(t *testing.T) {
	p := posetest.Quantize(posetest.Sample(2))
	code, _ := pose.Encode(p)
	out := mustRun(t, "", "decode", "--json", code)

	var coords map[string][3]float64
	if err := json.Unmarshal([]byte(out), &coords); err != nil {
		t.Fatal(err)
	}
	if len(coords) != pose.PlayerJointCount {
		t.Fatalf("got %d keys", len(coords))
	}
	head := p.Head(1)
	if got := coords["p1.Head"]; got != [3]float64{head.X, head.Y, head.Z} {
		t.Errorf("p1.Head = %v, want %v", got, head)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"short code", []string{"decode", "abc"}, errs.ErrCodeInvalidPosition},
		{"bad character", []string{"decode", strings.Repeat("-", pose.EncodedSize)}, errs.ErrCodeInvalidPosition},
		{"bad convention", []string{"decode", "--convention", "polar", "abc"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	code := sampleCode(t, 3)
	if got := mustRun(t, "", "format", code); got != pose.FormatCode(code) {
		t.Errorf("format =\n%s\nwant\n%s", got, pose.FormatCode(code))
	}
	if got := mustRun(t, pose.FormatCode(code), "format", "--compact"); got != code+"\n" {
		t.Errorf("format --compact = %q", got)
	}
}

func TestMatch(t *testing.T) {
	p := posetest.Quantize(posetest.Sample(4))
	moved := posetest.Quantize(pose.SwapPlayers(pose.Apply(pose.Reorientation{Yaw: -0.8}, p)))
	a, _ := pose.Encode(p)
	b, _ := pose.Encode(moved)

	out := mustRun(t, "", "match", a, b)
	if !strings.HasPrefix(out, "equivalent\n") || !strings.Contains(out, "swap     true") {
		t.Errorf("match output:\n%s", out)
	}

	out = mustRun(t, "", "match", "--metric", "abs-component", a, sampleCode(t, 5))
	if out != "not equivalent\n" {
		t.Errorf("unrelated poses: %q", out)
	}

	if _, err := run(t, "", "match", "--tolerance", "0", a, b); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("zero tolerance: err = %v", err)
	}
	if _, err := run(t, "", "match", "--metric", "cosine", a, b); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("bad metric: err = %v", err)
	}
}

func TestCanon(t *testing.T) {
	code := sampleCode(t, 6)
	p, _ := pose.Decode(code)

	out := mustRun(t, "", "canon", code)
	if want := fmt.Sprintf("key      %016x\n", match.Key(p, match.DefaultGrid)); !strings.HasPrefix(out, want) {
		t.Errorf("canon output starts %q, want %q", out, want)
	}
	head := match.Canonicalize(p).Position.Head(1)
	if want := fmt.Sprintf("%-18s %7.3f %7.3f %7.3f\n", "p1.Head", head.X, head.Y, head.Z); !strings.HasSuffix(out, want) {
		t.Errorf("canon output should end with the canonical p1.Head:\n%s", out)
	}

	out = mustRun(t, "", "canon", "--grid", "0.5", code)
	if want := fmt.Sprintf("key      %016x\n", match.Key(p, 0.5)); !strings.HasPrefix(out, want) {
		t.Errorf("canon --grid output starts %q, want %q", out, want)
	}
	if _, err := run(t, "", "canon", "--grid", "-1", code); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative grid: err = %v", err)
	}
}

func TestRelax(t *testing.T) {
	code := sampleCode(t, 7)
	p, _ := pose.Decode(code)
	k := pose.PlayerJoint{Player: 0, Joint: pose.LeftWrist}

	out := mustRun(t, "", "relax", "-n", "3", "--fixed", k.String(), code)
	want, _ := pose.Format(relax.Relax(p, relax.Options{Iterations: 3, Fixed: &k}))
	if out != want {
		t.Errorf("relax =\n%s\nwant\n%s", out, want)
	}

	out = mustRun(t, "", "relax", "--segments", code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if wantLines := pose.FormattedLines + pose.PlayerCount*len(relax.DefaultSegments); len(lines) != wantLines {
		t.Errorf("got %d lines, want %d", len(lines), wantLines)
	}

	for _, args := range [][]string{
		{"relax", "-n", "0", code},
		{"relax", "-n", "1000", code},
		{"relax", "--fixed", "p2.Head", code},
	} {
		if _, err := run(t, "", args...); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("%v: err = %v", args, err)
		}
	}
}

// =============================================================================
// Graph Commands
// =============================================================================

func TestBuildAndRender(t *testing.T) {
	catalogPath := copyFixture(t)
	base := strings.TrimSuffix(catalogPath, ".gm")

	mustRun(t, "", "build", "-f", "json,dot", "--index", "head-distance", "-w", "2", catalogPath)

	g, err := graphio.ImportJSON(base+".json", movegraph.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Errorf("built %d nodes, %d edges; want 4, 3", g.NodeCount(), g.EdgeCount())
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil || !strings.HasPrefix(string(dot), "digraph") {
		t.Fatalf("dot output: %v %q", err, dot)
	}

	out := filepath.Join(t.TempDir(), "moves")
	mustRun(t, "", "render", "-f", "dot", "--detailed", "-o", out, base+".json")
	rendered, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rendered), "id: 0") {
		t.Error("detailed render should carry node ids")
	}

	mustRun(t, "", "render", "-f", "json", base+".json")
	if _, err := os.Stat(base + ".rendered.json"); err != nil {
		t.Errorf("json render should not overwrite its input: %v", err)
	}
}

func TestBuildUsesFileCache(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, fmt.Sprintf("[cache]\nbackend = \"file\"\ndir = %q\n", dir))
	catalogPath := copyFixture(t)

	for range 2 {
		if _, err := runWithConfig(t, cfg, "", "build", catalogPath); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir should hold entries: %v", err)
	}

	out, err := runWithConfig(t, cfg, "", "cache", "path")
	if err != nil || strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, %v", out, err)
	}
	if _, err := runWithConfig(t, cfg, "", "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	var files int
	filepath.WalkDir(dir, func(_ string, d os.DirEntry, _ error) error {
		if d != nil && !d.IsDir() && filepath.Ext(d.Name()) == ".json" {
			files++
		}
		return nil
	})
	if files != 0 {
		t.Errorf("%d files left after clear", files)
	}
}

func TestBuildErrors(t *testing.T) {
	catalogPath := copyFixture(t)
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing catalog", []string{"build", filepath.Join(t.TempDir(), "none.gm")}, errs.ErrCodeFileNotFound},
		{"bad format", []string{"build", "-f", "png", catalogPath}, errs.ErrCodeInvalidInput},
		{"bad index", []string{"build", "--index", "kdtree", catalogPath}, errs.ErrCodeInvalidInput},
		{"tolerance too large", []string{"build", "--tolerance", "2", catalogPath}, errs.ErrCodeInvalidInput},
		{"too many workers", []string{"build", "-w", "1000", catalogPath}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "", tt.args...); !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	catalogPath := copyFixture(t)
	jsonPath := strings.TrimSuffix(catalogPath, ".gm") + ".catalog.json"
	mustRun(t, "", "convert", catalogPath, jsonPath)

	mustRun(t, "", "build", "-o", filepath.Join(t.TempDir(), "from-json"), jsonPath)
	if _, err := run(t, "", "convert", filepath.Join(t.TempDir(), "x.gm"), jsonPath); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing input: err = %v", err)
	}
}

// =============================================================================
// Config, Cache and Completion
// =============================================================================

func TestConfigShow(t *testing.T) {
	cfg := writeConfig(t, "[match]\nmetric = \"squared-sum\"\n[cache]\nbackend = \"none\"\n")
	out, err := runWithConfig(t, cfg, "", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`metric = "squared-sum"`, `backend = "none"`, `convention = "shift-xz"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %s:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	out, err := runWithConfig(t, path, "", "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, %v", out, err)
	}
	if _, err := runWithConfig(t, path, "", "config", "init"); err != nil {
		t.Errorf("second init should only warn: %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	if _, err := runWithConfig(t, filepath.Join(t.TempDir(), "missing.toml"), "", "decode", "x"); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config: err = %v", err)
	}
	bad := writeConfig(t, "[match]\nmetric = \"cosine\"\n")
	if _, err := runWithConfig(t, bad, "", "config", "show"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("bad metric: err = %v", err)
	}
}

func TestCacheClearNonFileBackend(t *testing.T) {
	if _, err := run(t, "", "cache", "clear"); err != nil {
		t.Errorf("clear with backend none: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out := mustRun(t, "", "completion", shell)
			if !strings.Contains(out, appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}
	if _, err := run(t, "", "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{
		"build", "decode", "format", "match", "canon", "relax", "render",
		"convert", "browse", "serve", "cache", "config", "completion",
	} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}
