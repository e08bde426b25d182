package ops

import (
	"context"
	"strings"
	"time"

	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/workspace"
)

// FileSummary describes a file without its content.
type FileSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int    `json:"size"`
	Active bool   `json:"active"`
}

// ProjectSummary describes a project and its files.
type ProjectSummary struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Files     []FileSummary `json:"files"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Active    bool          `json:"active"`
}

// SelectionOutput reports the active pointers after an operation.
type SelectionOutput struct {
	workspace.Selection
	Text    string `json:"text"`
	Unsaved bool   `json:"unsaved"`
}

// DeleteOutput contains the result of a delete operation.
type DeleteOutput struct {
	Deleted   bool                `json:"deleted"`
	ID        string              `json:"id"`
	Selection workspace.Selection `json:"selection"`
}

// CreateProjectInput contains parameters for the CreateProject operation.
type CreateProjectInput struct {
	Name string
}

// CreateProject adds an empty project and makes it active.
func (s *Session) CreateProject(_ context.Context, input CreateProjectInput) (*ProjectSummary, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("project name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.ws.CreateProject(input.Name)
	if !ok {
		return nil, errors.NewInvalidRequest("project name is required")
	}
	out := s.summarize(p)
	return &out, nil
}

// ListProjectsOutput contains the result of the ListProjects operation.
type ListProjectsOutput struct {
	Projects  []ProjectSummary    `json:"projects"`
	Selection workspace.Selection `json:"selection"`
	Unsaved   bool                `json:"unsaved"`
}

// ListProjects returns every project in workspace order.
func (s *Session) ListProjects(_ context.Context) *ListProjectsOutput {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.ws.Projects()
	out := &ListProjectsOutput{
		Projects:  make([]ProjectSummary, 0, len(projects)),
		Selection: s.ws.Selection(),
		Unsaved:   s.ws.Unsaved(),
	}
	for _, p := range projects {
		out.Projects = append(out.Projects, s.summarize(p))
	}
	return out
}

// SelectProjectInput contains parameters for the SelectProject operation.
type SelectProjectInput struct {
	ID string
}

// SelectProject makes a project active, keeping the active file when it
// belongs to the project and otherwise falling back to its first file.
func (s *Session) SelectProject(_ context.Context, input SelectProjectInput) (*SelectionOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("project id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ws.SelectProject(id) {
		return nil, errors.NewNotFound("project", id)
	}
	return s.selection(), nil
}

// DeleteProjectInput contains parameters for the DeleteProject operation.
type DeleteProjectInput struct {
	ID string
}

// DeleteProject removes a project and repairs the selection.
func (s *Session) DeleteProject(_ context.Context, input DeleteProjectInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("project id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ws.DeleteProject(id) {
		return nil, errors.NewNotFound("project", id)
	}
	return &DeleteOutput{Deleted: true, ID: id, Selection: s.ws.Selection()}, nil
}

func (s *Session) summarize(p workspace.Project) ProjectSummary {
	sel := s.ws.Selection()
	files := make([]FileSummary, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, FileSummary{
			ID:     f.ID,
			Name:   f.Name,
			Size:   len(f.Content),
			Active: p.ID == sel.ProjectID && f.ID == sel.FileID,
		})
	}
	return ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		Files:     files,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Active:    p.ID == sel.ProjectID,
	}
}

func (s *Session) selection() *SelectionOutput {
	return &SelectionOutput{
		Selection: s.ws.Selection(),
		Text:      s.ws.Text(),
		Unsaved:   s.ws.Unsaved(),
	}
}
