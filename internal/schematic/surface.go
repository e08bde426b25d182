package schematic

import "image/color"

// Font selects one of the two text tiers.
type Font int

const (
	FontBody Font = iota
	FontTitle
)

// Align is the horizontal text anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline is the vertical text anchor.
type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineMiddle
	BaselineTop
)

// Pen describes a stroke. A non-empty Dash alternates on/off lengths.
type Pen struct {
	Color color.RGBA
	Width float64
	Dash  []float64
}

// TextStyle describes how a string is placed.
type TextStyle struct {
	Font     Font
	Color    color.RGBA
	Align    Align
	Baseline Baseline
}

// Surface is a drawing target. Implementations are expected to clip
// anything outside their bounds.
type Surface interface {
	// Size reports the drawable area in pixels.
	Size() (width, height float64)
	Clear(bg color.RGBA)
	Stroke(p *Path, pen Pen)
	Fill(p *Path, c color.RGBA)
	Text(s string, at Point, style TextStyle)
}

// Palette is the fixed colour scheme of every schematic.
type Palette struct {
	Background color.RGBA
	Stroke     color.RGBA
	Text       color.RGBA
	Label      color.RGBA
	Accent     color.RGBA
	Panel      color.RGBA
	Caption    color.RGBA
	GateName   color.RGBA
}

// DefaultPalette is the dark scheme used by the editor.
var DefaultPalette = Palette{
	Background: hex(0x0f172a),
	Stroke:     hex(0x38bdf8),
	Text:       hex(0xe2e8f0),
	Label:      hex(0x94a3b8),
	Accent:     hex(0x22d3ee),
	Panel:      hex(0x1e293b),
	Caption:    hex(0x64748b),
	GateName:   hex(0x3b82f6),
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
