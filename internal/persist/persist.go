// Package persist saves and restores the workspace, the code history and
// UI preferences through a kv.Store.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	apperrors "github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/kv"
	"github.com/gatepad/gatepad/internal/workspace"
)

// Storage keys. They match the keys used by earlier browser releases so
// exported data stays readable.
const (
	WorkspaceKey        = "vlsi-projects-v1"
	HistoryKey          = "savedCodes"
	ThemeKey            = "preferredTheme"
	SidebarWidthKey     = "sidebarWidth"
	SidebarCollapsedKey = "sidebarCollapsed"
)

// Adapter reads and writes persisted state.
type Adapter struct {
	store kv.Store
	now   func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock replaces time.Now for snapshot ids and names.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New returns an adapter over store.
func New(store kv.Store, opts ...Option) *Adapter {
	a := &Adapter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SaveWorkspace writes every project under WorkspaceKey and clears the
// unsaved flag. On failure the flag stays set so the save can be retried.
func (a *Adapter) SaveWorkspace(ctx context.Context, ws *workspace.Store) error {
	data, err := json.Marshal(ws.Projects())
	if err != nil {
		log.Printf("Warning: failed to encode workspace: %v", err)
		return apperrors.NewInternal(fmt.Errorf("encode workspace: %w", err))
	}
	if err := a.store.Set(ctx, WorkspaceKey, string(data)); err != nil {
		log.Printf("Warning: failed to save workspace: %v", err)
		return storageErr("save workspace", err)
	}
	ws.MarkSaved()
	return nil
}

// LoadWorkspace restores the projects saved under WorkspaceKey and
// activates the first project and file. Absent or malformed data yields an
// empty workspace; only a failing store is an error.
func (a *Adapter) LoadWorkspace(ctx context.Context, ws *workspace.Store) error {
	raw, ok, err := a.store.Get(ctx, WorkspaceKey)
	if err != nil {
		ws.Restore(nil)
		return storageErr("load workspace", err)
	}
	if !ok {
		ws.Restore(nil)
		return nil
	}

	var projects []workspace.Project
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		log.Printf("Warning: ignoring malformed workspace data: %v", err)
		ws.Restore(nil)
		return nil
	}
	ws.Restore(valid(projects))
	return nil
}

// valid drops entries that cannot be addressed: projects or files without
// an id.
func valid(projects []workspace.Project) []workspace.Project {
	out := make([]workspace.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		files := make([]workspace.File, 0, len(p.Files))
		for _, f := range p.Files {
			if f.ID != "" {
				files = append(files, f)
			}
		}
		p.Files = files
		out = append(out, p)
	}
	return out
}

func storageErr(op string, err error) error {
	if apperrors.Is(err, apperrors.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperrors.NewStorage(op, err)
}
