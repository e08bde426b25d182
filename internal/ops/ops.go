// Package ops is the operation layer shared by the CLI, the web UI and the
// MCP server. A Session binds one workspace to its persistence, its diagram
// preview and the analysis backend, and serializes every event behind a
// single lock.
package ops

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gatepad/gatepad/internal/backend"
	"github.com/gatepad/gatepad/internal/config"
	"github.com/gatepad/gatepad/internal/diagram"
	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/kv"
	"github.com/gatepad/gatepad/internal/persist"
	"github.com/gatepad/gatepad/internal/workspace"
)

// Pagination limits
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Session is one workspace event context.
type Session struct {
	mu      sync.Mutex
	ws      *workspace.Store
	persist *persist.Adapter
	preview *diagram.Controller
	backend *backend.Client
	cfg     *config.Config
}

type sessionOptions struct {
	workspace []workspace.Option
	persist   []persist.Option
	backend   *backend.Client
}

// SessionOption configures NewSession.
type SessionOption func(*sessionOptions)

// WithWorkspaceOptions passes options to the workspace store.
func WithWorkspaceOptions(opts ...workspace.Option) SessionOption {
	return func(o *sessionOptions) { o.workspace = append(o.workspace, opts...) }
}

// WithPersistOptions passes options to the persistence adapter.
func WithPersistOptions(opts ...persist.Option) SessionOption {
	return func(o *sessionOptions) { o.persist = append(o.persist, opts...) }
}

// WithBackend replaces the backend client built from cfg.
func WithBackend(c *backend.Client) SessionOption {
	return func(o *sessionOptions) { o.backend = c }
}

// NewSession loads the saved workspace from store and attaches a diagram
// preview sized from cfg. Absent or malformed saved data starts an empty
// workspace; a failing store is returned as an error.
func NewSession(ctx context.Context, store kv.Store, cfg *config.Config, opts ...SessionOption) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		timeout := time.Duration(cfg.BackendTimeoutSeconds) * time.Second
		o.backend = backend.NewClient(cfg.BackendURL, timeout)
	}

	s := &Session{
		ws:      workspace.New(o.workspace...),
		persist: persist.New(store, o.persist...),
		backend: o.backend,
		cfg:     cfg,
	}
	if err := s.persist.LoadWorkspace(ctx, s.ws); err != nil {
		return nil, err
	}
	s.preview = diagram.New(s.ws, float64(cfg.CanvasWidth), float64(cfg.CanvasHeight))
	return s, nil
}

// Close detaches the diagram preview.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview.Close()
}

// resolveFile fills in the active project and file for empty ids.
func (s *Session) resolveFile(projectID, fileID string) (string, string, error) {
	projectID = strings.TrimSpace(projectID)
	fileID = strings.TrimSpace(fileID)
	sel := s.ws.Selection()
	if projectID == "" {
		projectID = sel.ProjectID
	}
	if fileID == "" {
		if projectID != sel.ProjectID || sel.FileID == "" {
			return "", "", errors.NewNoActiveFile()
		}
		fileID = sel.FileID
	}

	p, ok := s.ws.Project(projectID)
	if !ok {
		return "", "", errors.NewNotFound("project", projectID)
	}
	if _, ok := p.File(fileID); !ok {
		return "", "", errors.NewNotFound("file", fileID)
	}
	return projectID, fileID, nil
}

// resolveProject returns projectID, or the active project when it is empty.
func (s *Session) resolveProject(projectID string) (string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		projectID = s.ws.Selection().ProjectID
		if projectID == "" {
			return "", errors.NewInvalidRequest("no project is selected")
		}
	}
	if _, ok := s.ws.Project(projectID); !ok {
		return "", errors.NewNotFound("project", projectID)
	}
	return projectID, nil
}

// requireCode rejects blank source before a backend call.
func requireCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.NewInvalidRequest("code is empty")
	}
	return nil
}
