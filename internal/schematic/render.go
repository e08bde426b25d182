// Package schematic draws a stylised diagram for each circuit category onto
// an abstract Surface. Every template is procedural and positioned relative
// to the canvas centre; rendering holds no state between calls.
package schematic

import (
	"strings"

	"github.com/gatepad/gatepad/internal/verilog"
)

const (
	// MinWidth and MinHeight are the smallest canvas on which every template
	// stays fully inside the drawable area.
	MinWidth  = 640
	MinHeight = 360

	// MaxWidth and MaxHeight bound the canvas so a raster stays within a
	// few tens of megabytes.
	MaxWidth  = 4096
	MaxHeight = 4096

	// Caption is drawn under every title.
	Caption = "Auto-generated logic diagram"
)

type drawFunc func(c *canvas)

var templates = map[verilog.Category]drawFunc{
	verilog.And:            drawAnd,
	verilog.Or:             drawOr,
	verilog.Not:            drawNot,
	verilog.Nand:           drawNand,
	verilog.Nor:            drawNor,
	verilog.Xor:            drawXor,
	verilog.Xnor:           drawXnor,
	verilog.HalfAdder:      drawHalfAdder,
	verilog.FullAdder:      drawFullAdder,
	verilog.ALU:            drawALU,
	verilog.Comparator2Bit: drawComparator2Bit,
	verilog.Comparator4Bit: drawComparator4Bit,
	verilog.Encoder4to2:    drawEncoder4to2,
	verilog.Decoder2to4:    drawDecoder2to4,
	verilog.Decoder1to4:    drawDecoder1to4,
	verilog.Mux2to1:        drawMux2to1,
	verilog.Mux4to1:        drawMux4to1,
	verilog.DFlipFlop:      drawDFlipFlop,
	verilog.DLatch:         drawDLatch,
	verilog.SRLatch:        drawSRLatch,
	verilog.JKFlipFlop:     drawJKFlipFlop,
	verilog.TFlipFlop:      drawTFlipFlop,
	verilog.Counter4Bit:    drawCounter4Bit,
	verilog.CounterUpDown:  drawCounterUpDown,
	verilog.FSM:            drawFSM,
}

// HasTemplate reports whether c has a dedicated drawing. Categories without
// one render the placeholder.
func HasTemplate(c verilog.Category) bool {
	_, ok := templates[c]
	return ok
}

// Render clears s and draws the title block plus the template for c,
// centred on the surface. Calling it twice with the same arguments produces
// the same frame.
func Render(s Surface, c verilog.Category) {
	RenderWith(s, c, DefaultPalette)
}

// RenderWith is Render with an explicit palette.
func RenderWith(s Surface, c verilog.Category, p Palette) {
	w, h := s.Size()
	cv := &canvas{s: s, p: p, x: w / 2, y: h / 2}

	s.Clear(p.Background)
	drawTitle(cv, w/2, c.DisplayName())

	if t, ok := templates[c]; ok {
		t(cv)
		return
	}
	drawPlaceholder(cv)
}

func drawTitle(c *canvas, cx float64, title string) {
	c.s.Text(title, Pt(cx, 36), TextStyle{Font: FontTitle, Color: c.p.Text, Align: AlignCenter, Baseline: BaselineTop})
	c.s.Text(Caption, Pt(cx, 60), TextStyle{Font: FontBody, Color: c.p.Caption, Align: AlignCenter, Baseline: BaselineTop})
}

// drawPlaceholder explains what to type and lists every supported circuit.
func drawPlaceholder(c *canvas) {
	x, y := c.x, c.y
	c.text("Write Verilog code to see circuit diagram", x, y-20, FontTitle, AlignCenter, BaselineMiddle)
	c.label("Supported circuits:", x, y+14, AlignCenter)
	for i, line := range supportedLines(72) {
		c.label(line, x, y+36+float64(i)*20, AlignCenter)
	}
}

// supportedLines wraps the supported circuit names into lines of at most
// width characters.
func supportedLines(width int) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	for _, cat := range verilog.Supported() {
		name := cat.DisplayName()
		if cur.Len() > 0 && cur.Len()+2+len(name) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(", ")
		}
		cur.WriteString(name)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
