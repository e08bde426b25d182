package ops

import (
	"context"

	"github.com/gatepad/gatepad/internal/errors"
	"github.com/gatepad/gatepad/internal/persist"
)

// Prefs returns the stored UI preferences.
func (s *Session) Prefs(ctx context.Context) (*persist.Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.persist.Prefs(ctx)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPrefsInput contains parameters for the SetPrefs operation. Nil fields
// are left unchanged.
type SetPrefsInput struct {
	Theme            *string
	SidebarWidth     *int
	SidebarCollapsed *bool
}

// SetPrefs stores the given preferences and returns the full set. The
// sidebar width is clamped to its allowed range.
func (s *Session) SetPrefs(ctx context.Context, input SetPrefsInput) (*persist.Prefs, error) {
	var theme persist.Theme
	if input.Theme != nil {
		t, err := persist.ParseTheme(*input.Theme)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		theme = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Theme != nil {
		if err := s.persist.SetTheme(ctx, theme); err != nil {
			return nil, err
		}
	}
	if input.SidebarWidth != nil {
		if _, err := s.persist.SetSidebarWidth(ctx, *input.SidebarWidth); err != nil {
			return nil, err
		}
	}
	if input.SidebarCollapsed != nil {
		if err := s.persist.SetSidebarCollapsed(ctx, *input.SidebarCollapsed); err != nil {
			return nil, err
		}
	}

	p, err := s.persist.Prefs(ctx)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
