package schematic

import "image/color"

// OpKind identifies a recorded drawing call.
type OpKind string

const (
	OpClear  OpKind = "clear"
	OpStroke OpKind = "stroke"
	OpFill   OpKind = "fill"
	OpText   OpKind = "text"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  OpKind     `json:"kind"`
	Path  *Path      `json:"path,omitempty"`
	Pen   Pen        `json:"pen"`
	Color color.RGBA `json:"color"`
	Text  string     `json:"text,omitempty"`
	At    Point      `json:"at"`
	Style TextStyle  `json:"style"`
}

// Recorder is a Surface that keeps every call as data. A recording can be
// inspected, compared or replayed onto another Surface.
type Recorder struct {
	width, height float64
	ops           []Op
}

// NewRecorder returns an empty recording of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) Size() (float64, float64) { return r.width, r.height }

// Clear drops everything recorded so far, so a redraw fully replaces the
// previous frame.
func (r *Recorder) Clear(bg color.RGBA) {
	r.ops = append(r.ops[:0], Op{Kind: OpClear, Color: bg})
}

func (r *Recorder) Stroke(p *Path, pen Pen) {
	if pen.Dash != nil {
		pen.Dash = append([]float64(nil), pen.Dash...)
	}
	r.ops = append(r.ops, Op{Kind: OpStroke, Path: p.Clone(), Pen: pen})
}

func (r *Recorder) Fill(p *Path, c color.RGBA) {
	r.ops = append(r.ops, Op{Kind: OpFill, Path: p.Clone(), Color: c})
}

func (r *Recorder) Text(s string, at Point, style TextStyle) {
	r.ops = append(r.ops, Op{Kind: OpText, Text: s, At: at, Style: style})
}

// Ops returns the recorded calls.
func (r *Recorder) Ops() []Op {
	return r.ops
}

// Texts returns every drawn string in drawing order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Replay issues the recorded calls against s.
func (r *Recorder) Replay(s Surface) {
	for _, op := range r.ops {
		switch op.Kind {
		case OpClear:
			s.Clear(op.Color)
		case OpStroke:
			s.Stroke(op.Path, op.Pen)
		case OpFill:
			s.Fill(op.Path, op.Color)
		case OpText:
			s.Text(op.Text, op.At, op.Style)
		}
	}
}
