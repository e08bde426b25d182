package persist

import (
	"context"
	"fmt"
	"strconv"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Sidebar width bounds in pixels.
const (
	DefaultSidebarWidth = 280
	MinSidebarWidth     = 240
	MaxSidebarWidth     = 420
)

// Prefs are the persisted UI preferences.
type Prefs struct {
	Theme            Theme `json:"theme"`
	SidebarWidth     int   `json:"sidebar_width"`
	SidebarCollapsed bool  `json:"sidebar_collapsed"`
}

// ParseTheme accepts "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (want dark or light)", s)
}

// ClampSidebarWidth bounds w to [MinSidebarWidth, MaxSidebarWidth].
func ClampSidebarWidth(w int) int {
	return min(MaxSidebarWidth, max(MinSidebarWidth, w))
}

// DefaultPrefs returns a dark theme with the default width and an expanded
// sidebar.
func DefaultPrefs() Prefs {
	return Prefs{Theme: ThemeDark, SidebarWidth: DefaultSidebarWidth}
}

// Prefs reads the stored preferences. Missing or unreadable values fall
// back to DefaultPrefs.
func (a *Adapter) Prefs(ctx context.Context) (Prefs, error) {
	p := DefaultPrefs()

	if v, ok, err := a.store.Get(ctx, ThemeKey); err != nil {
		return p, storageErr("read theme", err)
	} else if ok {
		if t, err := ParseTheme(v); err == nil {
			p.Theme = t
		}
	}

	if v, ok, err := a.store.Get(ctx, SidebarWidthKey); err != nil {
		return p, storageErr("read sidebar width", err)
	} else if ok {
		if w, err := strconv.Atoi(v); err == nil {
			p.SidebarWidth = ClampSidebarWidth(w)
		}
	}

	if v, ok, err := a.store.Get(ctx, SidebarCollapsedKey); err != nil {
		return p, storageErr("read sidebar state", err)
	} else if ok {
		p.SidebarCollapsed = v == "true"
	}

	return p, nil
}

// SetTheme stores the theme.
func (a *Adapter) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return a.set(ctx, ThemeKey, string(t))
}

// SetSidebarWidth stores w clamped to the allowed range and returns the
// stored value.
func (a *Adapter) SetSidebarWidth(ctx context.Context, w int) (int, error) {
	w = ClampSidebarWidth(w)
	return w, a.set(ctx, SidebarWidthKey, strconv.Itoa(w))
}

// SetSidebarCollapsed stores the sidebar state.
func (a *Adapter) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	return a.set(ctx, SidebarCollapsedKey, strconv.FormatBool(collapsed))
}

func (a *Adapter) set(ctx context.Context, key, value string) error {
	if err := a.store.Set(ctx, key, value); err != nil {
		return storageErr("write "+key, err)
	}
	return nil
}
