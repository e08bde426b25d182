package ops

import (
	"context"
	"strings"

	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/verilog"
	"github.com/gatepad/gatepad/internal/workspace"
)

// FileRef addresses a file. Empty fields mean the active project and file.
type FileRef struct {
	ProjectID string
	FileID    string
}

// FileOutput is a file with its classification.
type FileOutput struct {
	workspace.File
	ProjectID string              `json:"project_id"`
	Active    bool                `json:"active"`
	Category  verilog.Category    `json:"category"`
	Lint      []verilog.LintIssue `json:"lint"`
	Unsaved   bool                `json:"unsaved"`
}

// CreateFileInput contains parameters for the CreateFile operation.
type CreateFileInput struct {
	ProjectID string // default: active project
	Name      string
}

// CreateFile appends an empty file to a project and makes it active.
func (s *Session) CreateFile(_ context.Context, input CreateFileInput) (*FileOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("file name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projectID, err := s.resolveProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	f, ok := s.ws.CreateFile(projectID, input.Name)
	if !ok {
		return nil, errors.NewInvalidRequest("file name is required")
	}
	return s.fileOutput(projectID, f), nil
}

// ShowFile returns a file's content.
func (s *Session) ShowFile(_ context.Context, ref FileRef) (*FileOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID, fileID, err := s.resolveFile(ref.ProjectID, ref.FileID)
	if err != nil {
		return nil, err
	}
	p, _ := s.ws.Project(projectID)
	f, _ := p.File(fileID)
	return s.fileOutput(projectID, f), nil
}

// SelectFile activates a file and loads its content into the editor.
func (s *Session) SelectFile(_ context.Context, ref FileRef) (*SelectionOutput, error) {
	if strings.TrimSpace(ref.ProjectID) == "" || strings.TrimSpace(ref.FileID) == "" {
		return nil, errors.NewInvalidRequest("project id and file id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projectID, fileID, err := s.resolveFile(ref.ProjectID, ref.FileID)
	if err != nil {
		return nil, err
	}
	s.ws.SelectFile(projectID, fileID)
	return s.selection(), nil
}

// UpdateFileInput contains parameters for the UpdateFile operation.
type UpdateFileInput struct {
	FileRef
	Content string
}

// UpdateFile replaces the content of exactly one file.
func (s *Session) UpdateFile(_ context.Context, input UpdateFileInput) (*FileOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID, fileID, err := s.resolveFile(input.ProjectID, input.FileID)
	if err != nil {
		return nil, err
	}
	s.ws.UpdateFileContent(projectID, fileID, input.Content)
	p, _ := s.ws.Project(projectID)
	f, _ := p.File(fileID)
	return s.fileOutput(projectID, f), nil
}

// DeleteFile removes a file and repairs the selection.
func (s *Session) DeleteFile(_ context.Context, ref FileRef) (*DeleteOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectID, fileID, err := s.resolveFile(ref.ProjectID, ref.FileID)
	if err != nil {
		return nil, err
	}
	s.ws.DeleteFile(projectID, fileID)
	return &DeleteOutput{Deleted: true, ID: fileID, Selection: s.ws.Selection()}, nil
}

func (s *Session) fileOutput(projectID string, f workspace.File) *FileOutput {
	sel := s.ws.Selection()
	lint := verilog.Lint(f.Content)
	if lint == nil {
		lint = []verilog.LintIssue{}
	}
	return &FileOutput{
		File:      f,
		ProjectID: projectID,
		Active:    sel.ProjectID == projectID && sel.FileID == f.ID,
		Category:  verilog.Classify(f.Content),
		Lint:      lint,
		Unsaved:   s.ws.Unsaved(),
	}
}
