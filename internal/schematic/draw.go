package schematic

import "math"

const (
	// ConnectorRadius is the radius of the filled pin dots.
	ConnectorRadius = 3.5
	// LineWidth is the stroke width of wires and outlines.
	LineWidth = 2.5
	// BubbleRadius is the radius of inversion bubbles.
	BubbleRadius = 5
)

// canvas carries the surface, palette and diagram centre through a
// template. All template coordinates are offsets from (x, y).
type canvas struct {
	s    Surface
	p    Palette
	x, y float64
}

func (c *canvas) pen() Pen { return Pen{Color: c.p.Stroke, Width: LineWidth} }

func (c *canvas) dashedPen() Pen {
	return Pen{Color: c.p.Label, Width: 1.5, Dash: []float64{6, 4}}
}

func (c *canvas) stroke(p *Path) { c.s.Stroke(p, c.pen()) }

// wire strokes a polyline through the given points.
func (c *canvas) wire(pts ...Point) { c.stroke(Polyline(pts...)) }

func (c *canvas) line(x1, y1, x2, y2 float64) { c.stroke(Line(x1, y1, x2, y2)) }

func (c *canvas) dashed(x1, y1, x2, y2 float64) { c.s.Stroke(Line(x1, y1, x2, y2), c.dashedPen()) }

// block fills a shape with the panel colour and outlines it.
func (c *canvas) block(p *Path) {
	c.s.Fill(p, c.p.Panel)
	c.stroke(p)
}

func (c *canvas) connector(x, y float64) {
	c.s.Fill(Circle(x, y, ConnectorRadius), c.p.Accent)
}

func (c *canvas) bubble(x, y float64) {
	c.s.Fill(Circle(x, y, BubbleRadius), c.p.Background)
	c.stroke(Circle(x, y, BubbleRadius))
}

func (c *canvas) text(s string, x, y float64, f Font, a Align, base Baseline) {
	c.s.Text(s, Pt(x, y), TextStyle{Font: f, Color: c.p.Text, Align: a, Baseline: base})
}

// label draws a pin or signal name in the secondary colour.
func (c *canvas) label(s string, x, y float64, a Align) {
	c.s.Text(s, Pt(x, y), TextStyle{Font: FontBody, Color: c.p.Label, Align: a, Baseline: BaselineMiddle})
}

// name draws a centred block or gate name.
func (c *canvas) name(s string, x, y float64) {
	c.s.Text(s, Pt(x, y), TextStyle{Font: FontTitle, Color: c.p.GateName, Align: AlignCenter, Baseline: BaselineMiddle})
}

// note draws a centred secondary line inside a block.
func (c *canvas) note(s string, x, y float64) {
	c.s.Text(s, Pt(x, y), TextStyle{Font: FontBody, Color: c.p.Caption, Align: AlignCenter, Baseline: BaselineMiddle})
}

// pinIn draws an input wire from x0 to x1 at y with its dot and a name
// left of the dot.
func (c *canvas) pinIn(name string, x0, x1, y float64) {
	c.line(x0, y, x1, y)
	c.connector(x0, y)
	c.label(name, x0-10, y, AlignRight)
}

// pinOut draws an output wire from x0 to x1 at y with its dot and a name
// right of the dot.
func (c *canvas) pinOut(name string, x0, x1, y float64) {
	c.line(x0, y, x1, y)
	c.connector(x1, y)
	c.label(name, x1+10, y, AlignLeft)
}

// pinUp draws a select-style input entering a block from below.
func (c *canvas) pinUp(name string, x, y0, y1 float64) {
	c.line(x, y0, x, y1)
	c.connector(x, y0)
	c.label(name, x-8, y0, AlignRight)
}

// junction marks a wire tap.
func (c *canvas) junction(x, y float64) { c.connector(x, y) }

// clock draws the edge-trigger wedge on a block's left edge at y.
func (c *canvas) clock(left, y float64) {
	c.stroke(Polyline(Pt(left, y-10), Pt(left+16, y), Pt(left, y+10)))
}

// arrowHead fills a small triangle pointing at tip, coming from from.
func (c *canvas) arrowHead(tip, from Point) {
	a := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	const l, w = 10, 0.45
	c.s.Fill(Polygon(
		tip,
		Pt(tip.X-l*math.Cos(a-w), tip.Y-l*math.Sin(a-w)),
		Pt(tip.X-l*math.Cos(a+w), tip.Y-l*math.Sin(a+w)),
	), c.p.Stroke)
}

// andBody is the D-shaped AND outline: flat back at left, 40px straight
// run, then a semicircle of radius 30. The nose is at left+70.
func andBody(left, y float64) *Path {
	return NewPath().
		MoveTo(left, y-30).
		LineTo(left+40, y-30).
		Arc(left+40, y, 30, -math.Pi/2, math.Pi/2).
		LineTo(left, y+30).
		Close()
}

// orBody is the curved OR outline with its concave back at left. The nose
// is at left+80; inputs meet the back around left+4.
func orBody(left, y float64) *Path {
	return NewPath().
		MoveTo(left, y-30).
		QuadTo(left+30, y-30, left+80, y).
		QuadTo(left+30, y+30, left, y+30).
		QuadTo(left+12, y, left, y-30).
		Close()
}

// xorBack is the extra input curve drawn behind an OR body for XOR/XNOR.
func xorBack(left, y float64) *Path {
	return NewPath().MoveTo(left-10, y-30).QuadTo(left+2, y, left-10, y+30)
}

// hexagon returns a rectangle centred on (cx, cy) with its corners cut
// by k.
func hexagon(cx, cy, w, h, k float64) *Path {
	l, r, t, b := cx-w/2, cx+w/2, cy-h/2, cy+h/2
	return Polygon(
		Pt(l+k, t), Pt(r-k, t), Pt(r, t+k), Pt(r, b-k),
		Pt(r-k, b), Pt(l+k, b), Pt(l, b-k), Pt(l, t+k),
	)
}

// boxAt returns a rectangle centred on (cx, cy).
func boxAt(cx, cy, w, h float64) *Path {
	return Rect(cx-w/2, cy-h/2, w, h)
}

// rim returns the point on a circle of radius r around from, facing to.
func rim(from, to Point, r float64) Point {
	dx, dy := to.X-from.X, to.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return from
	}
	return Pt(from.X+dx/l*r, from.Y+dy/l*r)
}
