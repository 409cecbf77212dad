package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/starlayout/cmd/starlayout/internal/render"
	layouterrors "github.com/go-drift/starlayout/pkg/errors"
)

const toolbarScenario = `
width: 200
height: 13
widths: [200, 120]
reduce: [day]
children:
  - group:
      name: day
      variants:
        - label: Mon
        - label: Monday
  - panel:
      children:
        - label: Search
        - star: {weight: 1, min: 20}
  - fixed: {width: 10, height: 13}
`

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecute_GlobalFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "Commands:"},
		{"help", []string{"--help"}, "Commands:"},
		{"version", []string{"-v"}, "starlayout version " + Version},
		{"command help", []string{"run", "--help"}, "starlayout run [--width N]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			if err := execute(tt.args); err != nil {
				t.Fatalf("execute(%v): %v", tt.args, err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"verbose without level", []string{"run", "--verbose"}},
		{"verbose not a number", []string{"--verbose=loud", "run"}},
		{"missing scenario", []string{"run"}},
		{"missing file", []string{"run", filepath.Join(t.TempDir(), "absent.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureOutput(t)
			if err := execute(tt.args); err == nil {
				t.Errorf("execute(%v): expected an error", tt.args)
			}
		})
	}
}

func TestRunCommand_RecoversPanics(t *testing.T) {
	prev := layouterrors.SetHandler(&layouterrors.LogHandler{Out: io.Discard})
	defer layouterrors.SetHandler(prev)

	cmd := &Command{Name: "broken", Run: func([]string) error { panic("boom") }}
	err := runCommand(cmd, nil)
	var pe *layouterrors.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("runCommand: expected a panic error, got %v", err)
	}
	if pe.Op != "starlayout.broken" || pe.Value != "boom" {
		t.Errorf("unexpected panic error %+v", pe)
	}

	ok := &Command{Name: "ok", Run: func([]string) error { return nil }}
	if err := runCommand(ok, nil); err != nil {
		t.Errorf("runCommand(ok): %v", err)
	}
}

func TestParseScenarioArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		path    string
		widths  []float64
		cell    float64
		wantErr bool
	}{
		{"path only", []string{"a.yaml"}, "a.yaml", nil, 0, false},
		{"separate values", []string{"--width", "90", "a.yaml", "--cell", "8"}, "a.yaml", []float64{90}, 8, false},
		{"inline values", []string{"--width=90", "--width=120", "a.yaml"}, "a.yaml", []float64{90, 120}, 0, false},
		{"missing value", []string{"a.yaml", "--width"}, "", nil, 0, true},
		{"negative width", []string{"--width", "-5", "a.yaml"}, "", nil, 0, true},
		{"unknown flag", []string{"--depth", "a.yaml"}, "", nil, 0, true},
		{"two paths", []string{"a.yaml", "b.yaml"}, "", nil, 0, true},
		{"no path", []string{"--width", "10"}, "", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseScenarioArgs(tt.args, "--width", "--cell")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScenarioArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.path != tt.path || opts.cellWidth != tt.cell {
				t.Errorf("got path=%q cell=%g", opts.path, opts.cellWidth)
			}
			if len(opts.widths) != len(tt.widths) {
				t.Fatalf("widths: got %v, want %v", opts.widths, tt.widths)
			}
			for i := range tt.widths {
				if opts.widths[i] != tt.widths[i] {
					t.Errorf("widths: got %v, want %v", opts.widths, tt.widths)
				}
			}
		})
	}

	if _, err := parseScenarioArgs([]string{"--cell", "8", "a.yaml"}, "--width"); err == nil {
		t.Error("a flag the command does not accept should be rejected")
	}
}

func TestRun_Toolbar(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	out := captureOutput(t)

	if err := execute([]string{"run", path}); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected a header and two rows, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[1], "200 ") || !strings.Contains(lines[1], "day=2/2") {
		t.Errorf("unexpected row for 200: %q", lines[1])
	}
	if !strings.Contains(lines[1], "star") {
		t.Errorf("expected a star pass at 200: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "120 ") {
		t.Errorf("unexpected row for 120: %q", lines[2])
	}
}

func TestRun_WidthOverride(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	out := captureOutput(t)

	if err := execute([]string{"run", "--width", "80", path}); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "80 ") {
		t.Fatalf("expected a single row for 80, got:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "day=1/2") {
		t.Errorf("expected the narrow variant at 80: %q", lines[1])
	}
	if fields := strings.Fields(lines[1]); len(fields) < 6 || fields[5] != "1" {
		t.Errorf("expected one grow step left at 80: %q", lines[1])
	}
}

func TestRun_RejectsCell(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	captureOutput(t)
	if err := execute([]string{"run", "--cell", "8", path}); err == nil {
		t.Error("run --cell: expected an error")
	}
}

func TestPhaseList(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	captureOutput(t)
	_, tree, err := loadTree(scenarioOptions{path: path})
	if err != nil {
		t.Fatal(err)
	}
	tree.Layout(200, 13)
	got := phaseList(tree.Host.Stats())
	if !strings.HasPrefix(got, "basic") || !strings.HasSuffix(got, "star") {
		t.Errorf("phaseList = %q", got)
	}
}

func TestAllocate_Inline(t *testing.T) {
	out := captureOutput(t)
	if err := execute([]string{"allocate", "--surplus", "50", "1:0:30", "1:0:100"}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "surplus 50, leftover 0") {
		t.Errorf("unexpected summary:\n%s", got)
	}
	if !strings.Contains(got, "total min 0, total allocated 50") {
		t.Errorf("unexpected totals:\n%s", got)
	}
	if strings.Count(got, "25") < 2 {
		t.Errorf("expected both entries to get 25:\n%s", got)
	}
}

func TestAllocate_Scenario(t *testing.T) {
	path := writeScenario(t, `
surplus: 100
entries:
  - {weight: 1, min: 0, max: 10}
  - {weight: 1, min: 0}
`)
	out := captureOutput(t)
	if err := execute([]string{"allocate", path}); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "inf") || !strings.Contains(got, "90") {
		t.Errorf("expected the unbounded entry to take 90:\n%s", got)
	}
}

func TestParseEntrySpec(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
		hasMax  bool
	}{
		{"1:0", false, false},
		{"2:10:40", false, true},
		{"1", true, false},
		{"1:2:3:4", true, false},
		{"x:0", true, false},
	}
	for _, tt := range tests {
		spec, err := parseEntrySpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseEntrySpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (spec.Max != nil) != tt.hasMax {
			t.Errorf("parseEntrySpec(%q) max = %v", tt.in, spec.Max)
		}
	}
	captureOutput(t)
	if err := execute([]string{"allocate"}); err == nil {
		t.Error("allocate without entries: expected an error")
	}
}

func TestRender_Toolbar(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	out := captureOutput(t)
	if err := execute([]string{"render", "--width", "140", path}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "Monday") {
		t.Errorf("expected the wide variant in the drawing:\n%s", out.String())
	}
}

func TestPreviewModel(t *testing.T) {
	path := writeScenario(t, toolbarScenario)
	s, tree, err := loadTree(scenarioOptions{path: path})
	if err != nil {
		t.Fatal(err)
	}
	m := newPreviewModel("toolbar", s, tree, render.New(0))
	if m.width != 200 {
		t.Fatalf("expected the first scenario width, got %g", m.width)
	}

	press := func(m previewModel, msg tea.KeyMsg) (previewModel, tea.Cmd) {
		t.Helper()
		next, cmd := m.Update(msg)
		return next.(previewModel), cmd
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.width != 210 {
		t.Errorf("right: expected 210, got %g", m.width)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	if m.step != 5 {
		t.Errorf("[: expected step 5, got %g", m.step)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if m.width != 205 {
		t.Errorf("h: expected 205, got %g", m.width)
	}
	if got := tree.Host.DesiredSize().Width; got != 205 {
		t.Errorf("expected the tree to be laid out again at 205, got %g", got)
	}

	for range 10 {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	}
	if m.step != maxPreviewStep {
		t.Errorf("expected the step to stop at %d, got %g", maxPreviewStep, m.step)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.width != 0 {
		t.Errorf("expected the width to stop at 0, got %g", m.width)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(previewModel)
	if m.cols != 100 || m.rows != 40 {
		t.Errorf("window size not recorded: %dx%d", m.cols, m.rows)
	}

	view := m.View()
	for _, want := range []string{"toolbar", "width 0", "groups day=", "grow steps left 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.width != 200 || m.step != defaultPreviewStep {
		t.Errorf("r: expected width 200 and the default step, got %g and %g", m.width, m.step)
	}
	if g := tree.Groups[0]; g.SizeIndex() != 1 {
		t.Errorf("r: expected the day group to grow again at 200")
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 12, Height: 4})
	m = next.(previewModel)
	lines := strings.Split(m.View(), "\n")
	if len(lines) > 4 {
		t.Errorf("view has %d lines, want at most 4", len(lines))
	}
	for _, line := range lines {
		if w := lipgloss.Width(line); w > 12 {
			t.Errorf("view line %q is %d cells wide, want at most 12", line, w)
		}
	}

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q: expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q: expected tea.QuitMsg")
	}
}
