// Package diagram keeps a schematic preview in step with the editor text:
// every text change or resize reclassifies the source and redraws.
package diagram

import (
	"bytes"
	"io"

	"github.com/gatepad/gatepad/internal/schematic"
	"github.com/gatepad/gatepad/internal/verilog"
)

// Source is the editor text the preview follows.
type Source interface {
	Text() string
	Subscribe(fn func(text string)) (unsubscribe func())
}

// Controller owns the preview surface. It is not safe for concurrent use;
// it runs in the same event context as its Source.
type Controller struct {
	src         Source
	unsubscribe func()

	width, height float64
	category      verilog.Category
	frame         *schematic.Recorder
	renders       int
}

// New binds a controller to src and draws the current text once.
func New(src Source, width, height float64) *Controller {
	c := &Controller{src: src}
	c.width, c.height = fitSize(width, height)
	c.unsubscribe = src.Subscribe(c.onText)
	c.onText(src.Text())
	return c
}

// Draw classifies code and renders it onto a fresh recording of the given
// size. Sizes below the schematic minimum are raised to it.
func Draw(code string, width, height float64) (verilog.Category, *schematic.Recorder) {
	width, height = fitSize(width, height)
	cat := verilog.Classify(code)
	rec := schematic.NewRecorder(width, height)
	schematic.Render(rec, cat)
	return cat, rec
}

func (c *Controller) onText(text string) {
	c.category, c.frame = Draw(text, c.width, c.height)
	c.renders++
}

// Resize changes the surface to the new layout box and redraws.
func (c *Controller) Resize(width, height float64) {
	c.width, c.height = fitSize(width, height)
	c.onText(c.src.Text())
}

// Close detaches the controller from its source. Later text changes no
// longer redraw.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Category is the classification of the last drawn text.
func (c *Controller) Category() verilog.Category { return c.category }

// Size is the current surface size.
func (c *Controller) Size() (float64, float64) { return c.width, c.height }

// Renders counts redraws since New.
func (c *Controller) Renders() int { return c.renders }

// Frame returns the drawing commands of the current frame.
func (c *Controller) Frame() []schematic.Op { return c.frame.Ops() }

// WritePNG encodes the current frame as a PNG image.
func (c *Controller) WritePNG(w io.Writer) error {
	return EncodePNG(w, c.frame)
}

// WriteSVG encodes the current frame as an SVG document.
func (c *Controller) WriteSVG(w io.Writer) error {
	return EncodeSVG(w, c.frame)
}

// EncodePNG replays rec onto a raster and writes it as PNG.
func EncodePNG(w io.Writer, rec *schematic.Recorder) error {
	width, height := rec.Size()
	r := schematic.NewRaster(int(width), int(height))
	rec.Replay(r)
	return r.EncodePNG(w)
}

// EncodeSVG replays rec onto an SVG document and writes it.
func EncodeSVG(w io.Writer, rec *schematic.Recorder) error {
	width, height := rec.Size()
	s := schematic.NewSVG(width, height)
	rec.Replay(s)
	_, err := s.WriteTo(w)
	return err
}

// PNGBytes is EncodePNG into memory.
func PNGBytes(rec *schematic.Recorder) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fitSize(width, height float64) (float64, float64) {
	width = min(max(width, schematic.MinWidth), schematic.MaxWidth)
	height = min(max(height, schematic.MinHeight), schematic.MaxHeight)
	return width, height
}
