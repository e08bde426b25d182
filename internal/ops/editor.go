package ops

import (
	"context"

	"github.com/gatepad/gatepad/internal/backend"
	"github.com/gatepad/gatepad/internal/verilog"
)

// StatusInput contains parameters for the Status operation.
type StatusInput struct {
	IncludeText *bool // default: true (nil means default)
}

// StatusOutput is a snapshot of the editor and its derived views.
type StatusOutput struct {
	ProjectID   string              `json:"active_project_id,omitempty"`
	ProjectName string              `json:"active_project,omitempty"`
	FileID      string              `json:"active_file_id,omitempty"`
	FileName    string              `json:"active_file,omitempty"`
	Projects    int                 `json:"projects"`
	Text        string              `json:"text,omitempty"`
	Category    verilog.Category    `json:"category"`
	DisplayName string              `json:"display_name"`
	Lint        []verilog.LintIssue `json:"lint"`
	Unsaved     bool                `json:"unsaved"`
	HasBench    bool                `json:"has_testbench"`
	CanvasW     int                 `json:"canvas_width"`
	CanvasH     int                 `json:"canvas_height"`
	Analysis    *backend.Analysis   `json:"analysis,omitempty"`
	Waveform    *backend.Waveform   `json:"waveform,omitempty"`
}

// Status reports the active selection, the editor text with its live
// classification and lint, and the last backend results.
func (s *Session) Status(_ context.Context, input StatusInput) *StatusOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.ws.Text()
	lint := verilog.Lint(text)
	if lint == nil {
		lint = []verilog.LintIssue{}
	}
	cat := s.preview.Category()
	w, h := s.preview.Size()
	results := s.ws.Results()

	out := &StatusOutput{
		Projects:    len(s.ws.Projects()),
		Category:    cat,
		DisplayName: cat.DisplayName(),
		Lint:        lint,
		Unsaved:     s.ws.Unsaved(),
		HasBench:    s.ws.Testbench() != "",
		CanvasW:     int(w),
		CanvasH:     int(h),
		Analysis:    results.Analysis,
		Waveform:    results.Waveform,
	}
	if input.IncludeText == nil || *input.IncludeText {
		out.Text = text
	}
	if p, ok := s.ws.ActiveProject(); ok {
		out.ProjectID, out.ProjectName = p.ID, p.Name
	}
	if f, ok := s.ws.ActiveFile(); ok {
		out.FileID, out.FileName = f.ID, f.Name
	}
	return out
}

// SetTextInput contains parameters for the SetText operation.
type SetTextInput struct {
	Text string
}

// EditorOutput reports the editor after a text change.
type EditorOutput struct {
	FileID   string              `json:"active_file_id,omitempty"`
	Category verilog.Category    `json:"category"`
	Lint     []verilog.LintIssue `json:"lint"`
	Unsaved  bool                `json:"unsaved"`
}

// SetText replaces the editor text. With an active file the text is written
// through to it.
func (s *Session) SetText(_ context.Context, input SetTextInput) *EditorOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ws.SetText(input.Text)
	return s.editor()
}

func (s *Session) editor() *EditorOutput {
	lint := verilog.Lint(s.ws.Text())
	if lint == nil {
		lint = []verilog.LintIssue{}
	}
	return &EditorOutput{
		FileID:   s.ws.Selection().FileID,
		Category: s.preview.Category(),
		Lint:     lint,
		Unsaved:  s.ws.Unsaved(),
	}
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Saved    bool `json:"saved"`
	Projects int  `json:"projects"`
}

// Save persists the workspace and clears the unsaved flag. On failure the
// flag stays set.
func (s *Session) Save(ctx context.Context) (*SaveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.SaveWorkspace(ctx, s.ws); err != nil {
		return nil, err
	}
	return &SaveOutput{Saved: true, Projects: len(s.ws.Projects())}, nil
}
