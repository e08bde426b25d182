package schematic

func drawHalfAdder(c *canvas) {
	x, y := c.x, c.y
	top, bot := y-45, y+45

	c.pinIn("A", x-160, x-56, top-20)
	c.pinIn("B", x-160, x-56, top+20)

	// A and B fan out to the AND gate below.
	c.junction(x-120, top-20)
	c.wire(Pt(x-120, top-20), Pt(x-120, bot-20), Pt(x-40, bot-20))
	c.junction(x-100, top+20)
	c.wire(Pt(x-100, top+20), Pt(x-100, bot+20), Pt(x-40, bot+20))

	c.stroke(xorBack(x-50, top))
	c.block(orBody(x-50, top))
	c.name("XOR", x-15, top)
	c.block(andBody(x-40, bot))
	c.name("AND", x-10, bot)

	c.pinOut("Sum", x+30, x+120, top)
	c.pinOut("Carry", x+30, x+120, bot)
}

func drawFullAdder(c *canvas) {
	x, y := c.x, c.y

	// Two half adders in a row, carries merged by an OR gate.
	c.block(RoundRect(x-230, y-72, 140, 84, 16))
	c.name("Half Adder", x-160, y-40)
	c.note("stage 1", x-160, y-16)
	c.block(RoundRect(x-40, y-72, 140, 84, 16))
	c.name("Half Adder", x+30, y-40)
	c.note("stage 2", x+30, y-16)

	c.pinIn("A", x-270, x-230, y-50)
	c.pinIn("B", x-270, x-230, y-10)
	c.pinIn("Cin", x-270, x-70, y+100)
	c.wire(Pt(x-70, y+100), Pt(x-70, y-10), Pt(x-40, y-10))

	c.line(x-90, y-50, x-40, y-50)
	c.label("sum₁", x-65, y-62, AlignCenter)

	c.wire(Pt(x-90, y-10), Pt(x-80, y-10), Pt(x-80, y+40), Pt(x+144, y+40))
	c.label("c₁", x+60, y+30, AlignCenter)
	c.wire(Pt(x+100, y-10), Pt(x+115, y-10), Pt(x+115, y+80), Pt(x+144, y+80))
	c.label("c₂", x+125, y+20, AlignLeft)

	c.block(orBody(x+140, y+60))
	c.name("OR", x+175, y+60)

	c.pinOut("Sum", x+100, x+250, y-50)
	c.pinOut("Cout", x+220, x+250, y+60)
}

func drawALU(c *canvas) {
	x, y := c.x, c.y

	c.block(Polygon(
		Pt(x-100, y-105), Pt(x+100, y-55), Pt(x+100, y+55), Pt(x-100, y+105),
		Pt(x-100, y+25), Pt(x-70, y), Pt(x-100, y-25),
	))

	for i, op := range []string{"ADD", "SUB", "AND/OR"} {
		top := y - 62 + float64(i)*32
		c.s.Stroke(Rect(x-30, top, 70, 24), c.dashedPen())
		c.note(op, x+5, top+12)
	}
	c.name("ALU", x+20, y+48)

	c.pinIn("A[3:0]", x-180, x-100, y-65)
	c.pinIn("B[3:0]", x-180, x-100, y+65)
	c.pinUp("Op[1:0]", x, y+130, y+80)

	c.pinOut("Result[3:0]", x+100, x+180, y-30)
	c.pinOut("Carry", x+100, x+180, y)
	c.pinOut("Zero", x+100, x+180, y+30)
}

func drawComparator2Bit(c *canvas) {
	x, y := c.x, c.y

	c.block(boxAt(x-120, y-55, 140, 90))
	c.name("MSB", x-120, y-66)
	c.note("A1 vs B1", x-120, y-40)
	c.block(boxAt(x-120, y+55, 140, 90))
	c.name("LSB", x-120, y+44)
	c.note("A0 vs B0", x-120, y+70)
	c.block(boxAt(x+90, y, 140, 90))
	c.name("Decision", x+90, y-10)
	c.note("MSB decides first", x+90, y+16)

	c.pinIn("A1", x-250, x-190, y-75)
	c.pinIn("B1", x-250, x-190, y-35)
	c.pinIn("A0", x-250, x-190, y+35)
	c.pinIn("B0", x-250, x-190, y+75)

	c.wire(Pt(x-50, y-55), Pt(x-15, y-55), Pt(x-15, y-20), Pt(x+20, y-20))
	c.label("G₁ E₁ L₁", x-45, y-66, AlignLeft)
	c.wire(Pt(x-50, y+55), Pt(x-15, y+55), Pt(x-15, y+20), Pt(x+20, y+20))
	c.label("G₀ E₀ L₀", x-45, y+66, AlignLeft)

	c.pinOut("A>B", x+160, x+220, y-25)
	c.pinOut("A=B", x+160, x+220, y)
	c.pinOut("A<B", x+160, x+220, y+25)
}

func drawComparator4Bit(c *canvas) {
	x, y := c.x, c.y

	c.block(boxAt(x, y, 200, 200))
	c.name("COMPARE", x, y-12)
	c.note("4-bit magnitude", x, y+14)

	inputs := []string{"A3", "A2", "A1", "A0", "B3", "B2", "B1", "B0"}
	for i, name := range inputs {
		c.pinIn(name, x-170, x-100, y-84+float64(i)*24)
	}

	c.pinOut("A>B", x+100, x+170, y-40)
	c.pinOut("A=B", x+100, x+170, y)
	c.pinOut("A<B", x+100, x+170, y+40)
}
