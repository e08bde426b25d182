package schematic

import "math"

// flipFlop draws a rectangular storage element centred on the canvas with
// inputs on the left and Q/Q̅ on the right. Inputs named CLK get the
// edge-trigger wedge.
func flipFlop(c *canvas, w, h float64, title, subtitle string, inputs []pin, qOffset float64) {
	x, y := c.x, c.y
	left, right := x-w/2, x+w/2

	c.block(boxAt(x, y, w, h))
	c.name(title, x, y-10)
	c.note(subtitle, x, y+16)

	for _, in := range inputs {
		c.pinIn(in.name, left-110, left, y+in.dy)
		if in.name == "CLK" {
			c.clock(left, y+in.dy)
		}
	}
	c.pinOut("Q", right, right+110, y-qOffset)
	c.pinOut("Q̅", right, right+110, y+qOffset)
}

type pin struct {
	name string
	dy   float64
}

func drawDFlipFlop(c *canvas) {
	flipFlop(c, 220, 160, "DFF", "Positive edge triggered",
		[]pin{{"D", -40}, {"CLK", 40}}, 40)
}

func drawDLatch(c *canvas) {
	flipFlop(c, 220, 140, "D Latch", "Level sensitive",
		[]pin{{"D", -35}, {"EN", 35}}, 20)
}

func drawJKFlipFlop(c *canvas) {
	flipFlop(c, 240, 170, "JK FF", "J=K=1 toggles",
		[]pin{{"J", -50}, {"CLK", 0}, {"K", 50}}, 45)
}

func drawTFlipFlop(c *canvas) {
	flipFlop(c, 220, 150, "T FF", "Toggle on clock",
		[]pin{{"T", -30}, {"CLK", 30}}, 25)
}

func drawSRLatch(c *canvas) {
	x, y := c.x, c.y
	left, right := x-115, x+115

	c.block(boxAt(x, y, 230, 150))
	c.name("SR Latch", x, y-52)
	c.note("Cross-coupled NOR", x, y+56)

	// Feedback paths between the two NOR stages.
	c.dashed(x-60, y-30, x+60, y+30)
	c.dashed(x-60, y+30, x+60, y-30)

	c.pinIn("S", left-110, left, y-40)
	c.pinIn("R", left-110, left, y+40)
	c.pinOut("Q", right, right+110, y-40)
	c.pinOut("Q̅", right, right+110, y+40)
}

func drawCounter4Bit(c *canvas) {
	x, y := c.x, c.y
	left, right := x-180, x+180

	c.block(boxAt(x, y, 360, 150))
	c.label("Count[3:0]", x, y-58, AlignCenter)

	// Four bit cells, MSB first.
	for i := 0; i < 4; i++ {
		cellX := x - 170 + float64(i)*90
		c.stroke(Rect(cellX, y-40, 70, 50))
		c.name("Q"+string(rune('3'-i)), cellX+35, y-15)
	}
	c.note("binary up-count on each clock edge", x, y+42)

	c.pinIn("RST", left-80, left, y-40)
	c.pinIn("CLK", left-80, left, y+40)
	c.clock(left, y+40)
	c.pinOut("Count[3:0]", right, right+80, y)
}

func drawCounterUpDown(c *canvas) {
	x, y := c.x, c.y
	left, right := x-180, x+180

	c.block(boxAt(x, y, 360, 170))
	c.label("4-bit", x, y-68, AlignCenter)

	c.stroke(Rect(x-100, y-30, 80, 60))
	c.name("±1", x-60, y)
	c.stroke(Rect(x+20, y-30, 130, 60))
	c.name("Register", x+85, y-8)
	c.note("Count[3:0]", x+85, y+14)
	c.line(x-20, y, x+20, y)
	c.arrowHead(Pt(x+20, y), Pt(x-20, y))

	// Direction control feeds the adder.
	c.dashed(left, y-50, x-100, y-15)
	c.dashed(left, y, x-100, y+15)
	c.dashed(left, y+50, x+85, y+30)

	c.pinIn("Up", left-80, left, y-50)
	c.pinIn("Down", left-80, left, y)
	c.pinIn("CLK", left-80, left, y+50)
	c.clock(left, y+50)
	c.pinOut("Count[3:0]", right, right+80, y)
}

func drawFSM(c *canvas) {
	x, y := c.x, c.y
	const r = 40
	s0, s1, s2 := Pt(x-180, y), Pt(x, y-40), Pt(x+180, y)

	// S0 -> S1 -> S2 along straight edges.
	for _, e := range [][2]Point{{s0, s1}, {s1, s2}} {
		from, to := rim(e[0], e[1], r), rim(e[1], e[0], r)
		c.line(from.X, from.Y, to.X, to.Y)
		c.arrowHead(to, from)
	}
	c.label("input=1", x-90, y-40, AlignCenter)
	c.label("input=0", x+90, y-40, AlignCenter)

	// S1 holds on input=1.
	loop := Pt(x, y-85)
	c.stroke(NewPath().Arc(loop.X, loop.Y, 18, 0.75*math.Pi, 2.25*math.Pi))
	end := Pt(loop.X+18*math.Cos(2.25*math.Pi), loop.Y+18*math.Sin(2.25*math.Pi))
	c.arrowHead(end, Pt(end.X+4, end.Y-8))
	c.label("input=1", x+26, y-100, AlignLeft)

	// S2 returns to S0 on input=0 along the bottom.
	c.stroke(NewPath().MoveTo(x+160, y+35).CubicTo(x+80, y+110, x-80, y+110, x-160, y+35))
	c.arrowHead(Pt(x-160, y+35), Pt(x-140, y+58))
	c.label("input=0", x, y+100, AlignCenter)

	// Asynchronous reset enters S0.
	resetTip := rim(s0, Pt(x-240, y-70), r)
	c.stroke(NewPath().MoveTo(x-250, y-90).CubicTo(x-235, y-80, x-225, y-60, resetTip.X, resetTip.Y))
	c.arrowHead(resetTip, Pt(x-225, y-60))
	c.label("reset", x-250, y-102, AlignCenter)

	for i, s := range []Point{s0, s1, s2} {
		c.block(Circle(s.X, s.Y, r))
		c.name("S"+string(rune('0'+i)), s.X, s.Y)
	}
	c.label("start", s0.X, s0.Y+r+16, AlignCenter)
}
