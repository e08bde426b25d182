package schematic

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// SVG is a Surface that builds a standalone SVG document. Elements are
// written as they are drawn; the document header is added by WriteTo.
type SVG struct {
	width, height float64
	body          bytes.Buffer
	canvas        *svg.SVG
}

// NewSVG returns an empty document of the given size.
func NewSVG(width, height float64) *SVG {
	s := &SVG{width: width, height: height}
	s.canvas = svg.New(&s.body)
	return s
}

func (s *SVG) Size() (float64, float64) { return s.width, s.height }

// Clear discards previous content and paints the background.
func (s *SVG) Clear(bg color.RGBA) {
	s.body.Reset()
	s.canvas.Rect(0, 0, px(s.width), px(s.height), attr("fill", rgb(bg)))
}

func (s *SVG) Stroke(p *Path, pen Pen) {
	attrs := []string{
		`fill="none"`,
		attr("stroke", rgb(pen.Color)),
		attr("stroke-width", num(pen.Width)),
		`stroke-linecap="round"`,
		`stroke-linejoin="round"`,
	}
	if len(pen.Dash) > 0 {
		parts := make([]string, len(pen.Dash))
		for i, v := range pen.Dash {
			parts[i] = num(v)
		}
		attrs = append(attrs, attr("stroke-dasharray", strings.Join(parts, " ")))
	}
	s.canvas.Path(pathData(p), attrs...)
}

func (s *SVG) Fill(p *Path, c color.RGBA) {
	s.canvas.Path(pathData(p), attr("fill", rgb(c)))
}

func (s *SVG) Text(text string, at Point, style TextStyle) {
	size, weight := "13", "400"
	if style.Font == FontTitle {
		size, weight = "20", "600"
	}
	anchor := map[Align]string{AlignLeft: "start", AlignCenter: "middle", AlignRight: "end"}[style.Align]
	baseline := map[Baseline]string{
		BaselineAlphabetic: "alphabetic",
		BaselineMiddle:     "middle",
		BaselineTop:        "hanging",
	}[style.Baseline]

	s.canvas.Text(px(at.X), px(at.Y), text,
		attr("fill", rgb(style.Color)),
		`font-family="Inter, system-ui, sans-serif"`,
		attr("font-size", size),
		attr("font-weight", weight),
		attr("text-anchor", anchor),
		attr("dominant-baseline", baseline),
	)
}

// WriteTo writes the complete document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var doc bytes.Buffer
	out := svg.New(&doc)
	width, height := px(s.width), px(s.height)
	out.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	doc.Write(s.body.Bytes())
	out.End()
	n, err := w.Write(doc.Bytes())
	return int64(n), err
}

// Bytes returns the complete document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.Bytes()
}

// pathData converts a path to SVG path syntax. Arcs become elliptical arc
// commands; a full turn is split in two halves since a single arc cannot
// start and end on the same point.
func pathData(p *Path) string {
	var (
		b      strings.Builder
		hasPos bool
	)
	cmd := func(c string, pts ...Point) {
		b.WriteString(c)
		for _, pt := range pts {
			b.WriteString(" " + num(pt.X) + " " + num(pt.Y))
		}
		b.WriteByte(' ')
	}
	for _, s := range p.Segs {
		switch s.Kind {
		case SegMove:
			cmd("M", s.Pts[0])
			hasPos = true
		case SegLine:
			cmd(moveOrLine(hasPos, "L"), s.Pts[0])
			hasPos = true
		case SegQuad:
			if hasPos {
				cmd("Q", s.Pts[0], s.Pts[1])
			} else {
				cmd("M", s.Pts[1])
			}
			hasPos = true
		case SegCubic:
			if hasPos {
				cmd("C", s.Pts[0], s.Pts[1], s.Pts[2])
			} else {
				cmd("M", s.Pts[2])
			}
			hasPos = true
		case SegArc:
			cmd(moveOrLine(hasPos, "L"), arcPoint(s.Center, s.Radius, s.Start))
			hasPos = true
			sweep := s.End - s.Start
			if sweep >= 2*math.Pi-1e-9 {
				mid := s.Start + math.Pi
				arcCmd(&b, s.Radius, false, arcPoint(s.Center, s.Radius, mid))
				arcCmd(&b, s.Radius, false, arcPoint(s.Center, s.Radius, s.End))
				continue
			}
			arcCmd(&b, s.Radius, sweep > math.Pi, arcPoint(s.Center, s.Radius, s.End))
		case SegClose:
			b.WriteString("Z ")
		}
	}
	return strings.TrimSpace(b.String())
}

func moveOrLine(hasPos bool, c string) string {
	if hasPos {
		return c
	}
	return "M"
}

func arcCmd(b *strings.Builder, r float64, large bool, end Point) {
	largeFlag := "0"
	if large {
		largeFlag = "1"
	}
	fmt.Fprintf(b, "A %s %s 0 %s 1 %s %s ", num(r), num(r), largeFlag, num(end.X), num(end.Y))
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func px(v float64) int {
	return int(math.Round(v))
}

func attr(name, value string) string {
	return name + `="` + value + `"`
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
