package schematic

import "math"

// Point is a position in canvas pixels; y grows downward.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// SegKind identifies a path segment.
type SegKind int

const (
	SegMove SegKind = iota
	SegLine
	SegQuad
	SegCubic
	SegArc
	SegClose
)

// Segment is one path instruction. Pts holds the end point last
// (Move/Line use Pts[0], Quad uses Pts[0..1], Cubic uses Pts[0..2]).
// Arc uses Center, Radius and the Start/End angles in radians, measured
// clockwise from +x as on a y-down canvas.
type Segment struct {
	Kind   SegKind
	Pts    [3]Point
	Center Point
	Radius float64
	Start  float64
	End    float64
}

// Path is a sequence of subpaths built with MoveTo/LineTo/... calls.
type Path struct {
	Segs []Segment
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

func (p *Path) MoveTo(x, y float64) *Path {
	p.Segs = append(p.Segs, Segment{Kind: SegMove, Pts: [3]Point{Pt(x, y)}})
	return p
}

func (p *Path) LineTo(x, y float64) *Path {
	p.Segs = append(p.Segs, Segment{Kind: SegLine, Pts: [3]Point{Pt(x, y)}})
	return p
}

func (p *Path) QuadTo(cx, cy, x, y float64) *Path {
	p.Segs = append(p.Segs, Segment{Kind: SegQuad, Pts: [3]Point{Pt(cx, cy), Pt(x, y)}})
	return p
}

func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	p.Segs = append(p.Segs, Segment{Kind: SegCubic, Pts: [3]Point{Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y)}})
	return p
}

// Arc appends a clockwise circular arc. Like a 2D canvas, a line joins the
// current point to the arc start; without a current point the arc starts a
// new subpath. An end angle below start wraps by a full turn.
func (p *Path) Arc(cx, cy, r, start, end float64) *Path {
	for end < start {
		end += 2 * math.Pi
	}
	p.Segs = append(p.Segs, Segment{Kind: SegArc, Center: Pt(cx, cy), Radius: r, Start: start, End: end})
	return p
}

func (p *Path) Close() *Path {
	p.Segs = append(p.Segs, Segment{Kind: SegClose})
	return p
}

// Clone returns a deep copy.
func (p *Path) Clone() *Path {
	out := &Path{Segs: make([]Segment, len(p.Segs))}
	copy(out.Segs, p.Segs)
	return out
}

// Line returns a single straight segment.
func Line(x1, y1, x2, y2 float64) *Path {
	return NewPath().MoveTo(x1, y1).LineTo(x2, y2)
}

// Polyline returns an open path through pts.
func Polyline(pts ...Point) *Path {
	p := NewPath()
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	return p
}

// Polygon returns a closed path through pts.
func Polygon(pts ...Point) *Path {
	return Polyline(pts...).Close()
}

// Rect returns a closed rectangle with top-left (x, y).
func Rect(x, y, w, h float64) *Path {
	return Polygon(Pt(x, y), Pt(x+w, y), Pt(x+w, y+h), Pt(x, y+h))
}

// RoundRect returns a closed rectangle with corner radius r.
func RoundRect(x, y, w, h, r float64) *Path {
	r = math.Min(r, math.Min(w, h)/2)
	return NewPath().
		Arc(x+w-r, y+r, r, -math.Pi/2, 0).
		Arc(x+w-r, y+h-r, r, 0, math.Pi/2).
		Arc(x+r, y+h-r, r, math.Pi/2, math.Pi).
		Arc(x+r, y+r, r, math.Pi, 3*math.Pi/2).
		Close()
}

// Circle returns a closed full circle.
func Circle(cx, cy, r float64) *Path {
	return NewPath().Arc(cx, cy, r, 0, 2*math.Pi).Close()
}

// Subpath is a flattened run of points.
type Subpath struct {
	Points []Point
	Closed bool
}

// Flatten converts curves and arcs to line segments.
func (p *Path) Flatten() []Subpath {
	var (
		out     []Subpath
		cur     *Subpath
		pos     Point
		hasPos  bool
		subFrom Point
	)
	start := func(pt Point) {
		out = append(out, Subpath{Points: []Point{pt}})
		cur = &out[len(out)-1]
		subFrom = pt
	}
	add := func(pt Point) {
		if cur == nil {
			start(pos)
		}
		cur.Points = append(cur.Points, pt)
	}

	for _, s := range p.Segs {
		switch s.Kind {
		case SegMove:
			start(s.Pts[0])
			pos, hasPos = s.Pts[0], true
		case SegLine:
			if !hasPos {
				start(s.Pts[0])
			} else {
				add(s.Pts[0])
			}
			pos, hasPos = s.Pts[0], true
		case SegQuad:
			if !hasPos {
				start(s.Pts[1])
			} else {
				for i := 1; i <= curveSteps; i++ {
					add(quadAt(pos, s.Pts[0], s.Pts[1], float64(i)/curveSteps))
				}
			}
			pos, hasPos = s.Pts[1], true
		case SegCubic:
			if !hasPos {
				start(s.Pts[2])
			} else {
				for i := 1; i <= curveSteps; i++ {
					add(cubicAt(pos, s.Pts[0], s.Pts[1], s.Pts[2], float64(i)/curveSteps))
				}
			}
			pos, hasPos = s.Pts[2], true
		case SegArc:
			first := arcPoint(s.Center, s.Radius, s.Start)
			if !hasPos {
				start(first)
			} else {
				add(first)
			}
			n := arcSteps(s.Radius, s.End-s.Start)
			for i := 1; i <= n; i++ {
				a := s.Start + (s.End-s.Start)*float64(i)/float64(n)
				add(arcPoint(s.Center, s.Radius, a))
			}
			pos, hasPos = arcPoint(s.Center, s.Radius, s.End), true
		case SegClose:
			if cur != nil {
				cur.Closed = true
				cur = nil
				pos = subFrom
			}
		}
	}
	return out
}

// Bounds returns the bounding box of the flattened path.
func (p *Path) Bounds() (lo, hi Point) {
	first := true
	for _, sp := range p.Flatten() {
		for _, pt := range sp.Points {
			if first {
				lo, hi = pt, pt
				first = false
				continue
			}
			lo.X, lo.Y = math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y)
			hi.X, hi.Y = math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y)
		}
	}
	return lo, hi
}

const curveSteps = 16

func quadAt(p0, c, p1 Point, t float64) Point {
	u := 1 - t
	return Pt(u*u*p0.X+2*u*t*c.X+t*t*p1.X, u*u*p0.Y+2*u*t*c.Y+t*t*p1.Y)
}

func cubicAt(p0, c1, c2, p1 Point, t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Pt(a*p0.X+b*c1.X+c*c2.X+d*p1.X, a*p0.Y+b*c1.Y+c*c2.Y+d*p1.Y)
}

func arcPoint(c Point, r, a float64) Point {
	return Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
}

func arcSteps(r, sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep) * r / 3))
	if n < 8 {
		n = 8
	}
	return n
}
