package schematic

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Raster is a Surface backed by an RGBA image. Strokes and fills are
// anti-aliased polygons; text uses fixed bitmap faces.
type Raster struct {
	img   *image.RGBA
	faces map[Font]font.Face
}

// NewRaster allocates a width x height image.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		faces: map[Font]font.Face{
			FontBody:  basicfont.Face7x13,
			FontTitle: inconsolata.Bold8x16,
		},
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Clear(bg color.RGBA) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (r *Raster) Stroke(p *Path, pen Pen) {
	hw := pen.Width / 2
	if hw <= 0 {
		hw = 0.5
	}
	z := r.rasterizer()
	for _, sp := range p.Flatten() {
		pts := sp.Points
		if sp.Closed && len(pts) > 0 {
			pts = append(append([]Point(nil), pts...), pts[0])
		}
		for _, run := range dashRuns(pts, pen.Dash) {
			for i := 0; i+1 < len(run); i++ {
				addSegmentQuad(z, run[i], run[i+1], hw)
			}
			for _, pt := range run {
				addDisc(z, pt, hw)
			}
		}
	}
	z.Draw(r.img, r.img.Bounds(), image.NewUniform(pen.Color), image.Point{})
}

func (r *Raster) Fill(p *Path, c color.RGBA) {
	z := r.rasterizer()
	for _, sp := range p.Flatten() {
		if len(sp.Points) < 3 {
			continue
		}
		z.MoveTo(f32(sp.Points[0]))
		for _, pt := range sp.Points[1:] {
			z.LineTo(f32(pt))
		}
		z.ClosePath()
	}
	z.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Raster) Text(s string, at Point, style TextStyle) {
	face := r.faces[style.Font]
	s = rasterText.Replace(s)
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(style.Color), Face: face}

	x := at.X
	width := float64(d.MeasureString(s)) / 64
	switch style.Align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}

	m := face.Metrics()
	ascent, descent := float64(m.Ascent)/64, float64(m.Descent)/64
	y := at.Y
	switch style.Baseline {
	case BaselineMiddle:
		y += (ascent - descent) / 2
	case BaselineTop:
		y += ascent
	}

	d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
	d.DrawString(s)
}

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) rasterizer() *vector.Rasterizer {
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

// rasterText maps glyphs missing from the bitmap faces to ASCII.
var rasterText = strings.NewReplacer(
	"→", "->",
	"₀", "0", "₁", "1", "₂", "2",
	"Q̅", "/Q",
	"±", "+/-",
)

func f32(p Point) (float32, float32) { return float32(p.X), float32(p.Y) }

// addSegmentQuad adds the rectangle covering a thick segment. Every quad
// and disc is wound the same way so overlaps accumulate instead of cancel.
func addSegmentQuad(z *vector.Rasterizer, a, b Point, hw float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	z.MoveTo(f32(Pt(a.X+nx, a.Y+ny)))
	z.LineTo(f32(Pt(b.X+nx, b.Y+ny)))
	z.LineTo(f32(Pt(b.X-nx, b.Y-ny)))
	z.LineTo(f32(Pt(a.X-nx, a.Y-ny)))
	z.ClosePath()
}

// addDisc adds a round join/cap of radius r at c.
func addDisc(z *vector.Rasterizer, c Point, r float64) {
	const n = 12
	z.MoveTo(f32(Pt(c.X+r, c.Y)))
	for i := 1; i < n; i++ {
		a := -2 * math.Pi * float64(i) / n
		z.LineTo(f32(Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))))
	}
	z.ClosePath()
}

// dashRuns splits a polyline into the "on" runs of pattern. An empty
// pattern returns the polyline unchanged.
func dashRuns(pts []Point, pattern []float64) [][]Point {
	if len(pattern) == 0 || len(pts) < 2 {
		return [][]Point{pts}
	}
	total := 0.0
	for _, v := range pattern {
		total += v
	}
	if total <= 0 {
		return [][]Point{pts}
	}

	var (
		runs   [][]Point
		run    = []Point{pts[0]}
		idx    int
		remain = pattern[0]
		on     = true
	)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		segLen := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for segLen-pos > remain {
			pos += remain
			t := pos / segLen
			cut := Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
			if on {
				run = append(run, cut)
				runs = append(runs, run)
				run = nil
			} else {
				run = []Point{cut}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			remain = pattern[idx]
		}
		remain -= segLen - pos
		if on {
			run = append(run, b)
		}
	}
	if on && len(run) > 1 {
		runs = append(runs, run)
	}
	return runs
}
