package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gatepad/gatepad/internal/backend"
	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/kv"
	"github.com/gatepad/gatepad/internal/ops"
	"github.com/gatepad/gatepad/internal/persist"
)

// setupTestApp creates a CLI app over an in-memory session whose backend
// is unreachable.
func setupTestApp(t *testing.T) (*cli.App, *ops.Session) {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := config.DefaultConfig()
	session, err := ops.NewSession(context.Background(), kv.NewMemory(), cfg,
		ops.WithBackend(backend.NewClient(srv.URL, time.Second)))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(session.Close)
	return newCLIApp(session, cfg), session
}

// runCLI runs args with stdin piped from input and returns captured stdout.
func runCLI(t *testing.T, app *cli.App, input string, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	os.Stdin = stdinR
	go func() {
		_, _ = stdinW.WriteString(input)
		stdinW.Close()
	}()

	err := app.Run(append([]string{"gatepad"}, args...))

	os.Stdin = oldStdin
	stdinR.Close()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// mustRun runs args and decodes the JSON output into out.
func mustRun(t *testing.T, app *cli.App, input string, out any, args ...string) {
	t.Helper()
	stdout, err := runCLI(t, app, input, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal([]byte(stdout), out); err != nil {
		t.Fatalf("failed to parse output of %v: %v\nOutput: %s", args, err, stdout)
	}
}

const halfAdder = "module half_adder(input a, b, output s, c);\n  assign s = a ^ b;\n  assign c = a & b;\nendmodule"

// TestCLIClassify tests the classify command.
func TestCLIClassify(t *testing.T) {
	app, _ := setupTestApp(t)

	var output ops.ClassifyOutput
	mustRun(t, app, halfAdder+"\n", &output, "classify")

	if output.Category != "half_adder" {
		t.Errorf("expected category=half_adder, got %s", output.Category)
	}
	if output.DisplayName != "Half Adder" {
		t.Errorf("expected display_name=Half Adder, got %s", output.DisplayName)
	}
}

// TestCLIClassify_NoInput tests that classify requires source.
func TestCLIClassify_NoInput(t *testing.T) {
	app, _ := setupTestApp(t)

	_, err := runCLI(t, app, "", "classify")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

// TestCLILint tests that lint keeps leading lines for line numbers.
func TestCLILint(t *testing.T) {
	app, _ := setupTestApp(t)

	var output ops.LintOutput
	mustRun(t, app, "\n\nassign y = a & b\n", &output, "lint")

	if output.Clean {
		t.Fatal("expected lint findings")
	}
	if len(output.Issues) != 1 || output.Issues[0].Line != 3 {
		t.Errorf("expected one issue on line 3, got %+v", output.Issues)
	}
}

// TestCLIRender tests render to a file and to stdout.
func TestCLIRender(t *testing.T) {
	app, _ := setupTestApp(t)
	code := "assign y = a | b;"

	t.Run("svg to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "or.svg")
		var output struct {
			Category string `json:"category"`
			Format   string `json:"format"`
			Path     string `json:"path"`
		}
		mustRun(t, app, code, &output, "render", "--format=svg", "--out="+path)

		if output.Category != "or" || output.Format != "svg" || output.Path != path {
			t.Errorf("unexpected output: %+v", output)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read rendered file: %v", err)
		}
		if !strings.Contains(string(data), "<svg") {
			t.Error("expected an SVG document")
		}
	})

	t.Run("png to stdout", func(t *testing.T) {
		stdout, err := runCLI(t, app, code, "render", "--width=200", "--height=100")
		if err != nil {
			t.Fatalf("render failed: %v", err)
		}
		if !strings.HasPrefix(stdout, "\x89PNG") {
			t.Error("expected PNG bytes on stdout")
		}
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := runCLI(t, app, code, "render", "--format=gif")
		if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
			t.Errorf("expected INVALID_REQUEST, got %v", err)
		}
	})
}

// TestCLIProjectsAndFiles walks a project and file through their lifecycle.
func TestCLIProjectsAndFiles(t *testing.T) {
	app, _ := setupTestApp(t)

	var project ops.ProjectSummary
	mustRun(t, app, "", &project, "project", "create", "--name=Adders")
	if project.ID == "" || !project.Active {
		t.Fatalf("unexpected project: %+v", project)
	}

	var file ops.FileOutput
	mustRun(t, app, "", &file, "file", "create", "--name=ha.v")
	if file.ProjectID != project.ID {
		t.Errorf("expected file in project %s, got %s", project.ID, file.ProjectID)
	}

	var updated ops.FileOutput
	mustRun(t, app, halfAdder, &updated, "file", "update", file.ID)
	if updated.Category != "half_adder" {
		t.Errorf("expected category=half_adder, got %s", updated.Category)
	}

	var shown ops.FileOutput
	mustRun(t, app, "", &shown, "file", "show", "--project="+project.ID, file.ID)
	if shown.Content != halfAdder {
		t.Errorf("unexpected content: %q", shown.Content)
	}

	var list ops.ListProjectsOutput
	mustRun(t, app, "", &list, "project", "list")
	if len(list.Projects) != 1 || len(list.Projects[0].Files) != 1 {
		t.Fatalf("expected one project with one file, got %+v", list.Projects)
	}

	_, err := runCLI(t, app, "", "file", "update", file.ID)
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST for update without content, got %v", err)
	}

	var deleted ops.DeleteOutput
	mustRun(t, app, "", &deleted, "file", "delete", file.ID)
	if !deleted.Deleted {
		t.Error("expected deleted=true")
	}

	_, err = runCLI(t, app, "", "file", "show", file.ID)
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}

	mustRun(t, app, "", &deleted, "project", "delete", project.ID)
	if deleted.ID != project.ID {
		t.Errorf("expected ID=%s, got %s", project.ID, deleted.ID)
	}
}

// TestCLIProjectDelete_RequiresID tests that project delete needs an id.
func TestCLIProjectDelete_RequiresID(t *testing.T) {
	app, _ := setupTestApp(t)

	_, err := runCLI(t, app, "", "project", "delete")
	if err == nil || !strings.Contains(err.Error(), "project id is required") {
		t.Errorf("expected missing id error, got %v", err)
	}
}

// TestCLITextAndStatus tests editing the scratch buffer.
func TestCLITextAndStatus(t *testing.T) {
	app, _ := setupTestApp(t)

	mustRun(t, app, "assign y = ~a;", nil, "text")

	var status ops.StatusOutput
	mustRun(t, app, "", &status, "status")
	if status.Text != "assign y = ~a;" {
		t.Errorf("unexpected text: %q", status.Text)
	}
	if status.DisplayName != "NOT Gate" {
		t.Errorf("expected NOT Gate, got %s", status.DisplayName)
	}

	stdout, err := runCLI(t, app, "", "status", "--no-text")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if strings.Contains(stdout, `"text"`) {
		t.Error("expected text omitted")
	}
}

// TestCLIHistory tests the history command group.
func TestCLIHistory(t *testing.T) {
	app, _ := setupTestApp(t)

	var snap persist.Snapshot
	mustRun(t, app, "assign y = a & b;", &snap, "history", "add")
	if snap.Code != "assign y = a & b;" || !strings.HasPrefix(snap.Name, "Code_") {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	id := strconv.FormatInt(snap.ID, 10)

	var list ops.ListHistoryOutput
	mustRun(t, app, "", &list, "history", "list")
	if len(list.Items) != 1 || list.Pagination.Total != 1 {
		t.Fatalf("expected one snapshot, got %+v", list)
	}

	var shown persist.Snapshot
	mustRun(t, app, "", &shown, "history", "show", id)
	if shown.ID != snap.ID {
		t.Errorf("expected ID=%d, got %d", snap.ID, shown.ID)
	}

	mustRun(t, app, "", nil, "history", "load", id)
	var status ops.StatusOutput
	mustRun(t, app, "", &status, "status")
	if status.Text != "assign y = a & b;" {
		t.Errorf("expected loaded text, got %q", status.Text)
	}

	_, err := runCLI(t, app, "", "history", "show", "abc")
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST for bad id, got %v", err)
	}

	_, err = runCLI(t, app, "", "history", "clear")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("expected confirmation error, got %v", err)
	}

	var cleared ops.ClearHistoryOutput
	mustRun(t, app, "", &cleared, "history", "clear", "--yes")
	if cleared.Cleared != 1 {
		t.Errorf("expected cleared=1, got %d", cleared.Cleared)
	}

	_, err = runCLI(t, app, "", "history", "delete", id)
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND after clear, got %v", err)
	}
}

// TestCLIPrefs tests showing and changing preferences.
func TestCLIPrefs(t *testing.T) {
	app, _ := setupTestApp(t)

	var prefs persist.Prefs
	mustRun(t, app, "", &prefs, "prefs")
	if prefs.Theme != persist.ThemeDark {
		t.Errorf("expected default dark theme, got %s", prefs.Theme)
	}

	mustRun(t, app, "", &prefs, "prefs", "--theme=light", "--sidebar-width=100")
	if prefs.Theme != persist.ThemeLight {
		t.Errorf("expected light theme, got %s", prefs.Theme)
	}
	if prefs.SidebarWidth != persist.MinSidebarWidth {
		t.Errorf("expected width clamped to %d, got %d", persist.MinSidebarWidth, prefs.SidebarWidth)
	}

	_, err := runCLI(t, app, "", "prefs", "--theme=sepia")
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST for unknown theme, got %v", err)
	}
}

// TestCLIBackendDown tests the backend commands without a backend.
func TestCLIBackendDown(t *testing.T) {
	app, _ := setupTestApp(t)

	var analysis ops.AnalysisOutput
	mustRun(t, app, "assign y = a;", &analysis, "analyze")
	if analysis.Analysis == nil || analysis.Analysis.Success {
		t.Fatalf("expected a failed analysis, got %+v", analysis.Analysis)
	}
	if analysis.Analysis.Error != ops.AnalyzeFailedMessage {
		t.Errorf("unexpected error message: %q", analysis.Analysis.Error)
	}

	_, err := runCLI(t, app, "assign y = a;", "debug")
	if err == nil || !strings.Contains(err.Error(), "BACKEND_UNAVAILABLE") {
		t.Errorf("expected BACKEND_UNAVAILABLE, got %v", err)
	}

	var templates ops.TemplatesOutput
	mustRun(t, app, "", &templates, "templates")
	if !templates.Fallback || len(templates.Templates) != 1 {
		t.Errorf("expected the fallback template list, got %+v", templates)
	}

	var chat ops.ChatOutput
	mustRun(t, app, "", &chat, "chat", "what", "is", "a", "mux?")
	if chat.OK || chat.Reply != ops.ChatFailedMessage {
		t.Errorf("unexpected chat reply: %+v", chat)
	}
}

// TestCLIApplyTemplate tests loading the fallback template.
func TestCLIApplyTemplate(t *testing.T) {
	app, _ := setupTestApp(t)

	var editor ops.EditorOutput
	mustRun(t, app, "", &editor, "apply-template", "full_adder")
	if editor.Category != "full_adder" {
		t.Errorf("expected category=full_adder, got %s", editor.Category)
	}

	_, err := runCLI(t, app, "", "apply-template", "nope")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

// TestReadSource_File tests reading source with --in.
func TestReadSource_File(t *testing.T) {
	app, _ := setupTestApp(t)
	path := filepath.Join(t.TempDir(), "and.v")
	if err := os.WriteFile(path, []byte("assign y = a & b;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var output ops.ClassifyOutput
	mustRun(t, app, "", &output, "classify", "--in="+path)
	if output.Category != "and" {
		t.Errorf("expected category=and, got %s", output.Category)
	}

	_, err := runCLI(t, app, "", "classify", "--in="+filepath.Join(t.TempDir(), "missing.v"))
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST for missing file, got %v", err)
	}
}

// TestIsCLIMode tests command dispatch.
func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		args     []string
		expected bool
	}{
		{[]string{"gatepad"}, false},
		{[]string{"gatepad", "serve"}, true},
		{[]string{"gatepad", "history"}, true},
		{[]string{"gatepad", "--version"}, true},
		{[]string{"gatepad", "bogus"}, false},
	}
	for _, tt := range tests {
		os.Args = tt.args
		if got := isCLIMode(); got != tt.expected {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.expected)
		}
	}
}
