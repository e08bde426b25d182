package schematic

func drawEncoder4to2(c *canvas) {
	x, y := c.x, c.y

	c.block(boxAt(x, y, 120, 160))
	c.name("Priority", x, y-22)
	c.name("Encoder", x, y-2)
	c.note("4→2, D3 highest", x, y+24)

	for i, name := range []string{"D3", "D2", "D1", "D0"} {
		c.pinIn(name, x-140, x-60, y-60+float64(i)*40)
	}
	c.pinOut("Y1", x+60, x+140, y-40)
	c.pinOut("Y0", x+60, x+140, y)
	c.pinOut("V", x+60, x+140, y+40)
}

func drawDecoder2to4(c *canvas) {
	x, y := c.x, c.y

	c.block(hexagon(x, y, 220, 180, 20))
	c.name("Decoder", x, y-10)
	c.note("2→4, one-hot", x, y+16)

	c.pinIn("A1", x-180, x-110, y-40)
	c.pinIn("A0", x-180, x-110, y)
	c.pinIn("Enable", x-180, x-110, y+40)

	for i, name := range []string{"Y0", "Y1", "Y2", "Y3"} {
		c.pinOut(name, x+110, x+180, y-60+float64(i)*40)
	}
}

func drawDecoder1to4(c *canvas) {
	x, y := c.x, c.y

	c.block(hexagon(x, y, 200, 170, 20))
	c.name("DEMUX", x, y-14)
	c.note("1→4", x, y+10)

	c.pinIn("Enable", x-170, x-100, y)
	c.pinUp("S1", x-30, y+130, y+85)
	c.pinUp("S0", x+30, y+130, y+85)

	for i, name := range []string{"Y0", "Y1", "Y2", "Y3"} {
		c.pinOut(name, x+100, x+170, y-54+float64(i)*36)
	}
}

func drawMux2to1(c *canvas) {
	x, y := c.x, c.y

	// Trapezoid: tall input side, short output side.
	c.block(Polygon(Pt(x-60, y-90), Pt(x+60, y-50), Pt(x+60, y+50), Pt(x-60, y+90)))
	c.name("MUX", x, y-10)
	c.note("2:1", x, y+14)

	c.pinIn("I0", x-150, x-60, y-45)
	c.pinIn("I1", x-150, x-60, y+45)
	c.pinUp("S", x, y+130, y+70)
	c.label("0", x-48, y-45, AlignLeft)
	c.label("1", x-48, y+45, AlignLeft)

	c.pinOut("Y", x+60, x+150, y)
}

func drawMux4to1(c *canvas) {
	x, y := c.x, c.y

	c.block(Polygon(Pt(x-70, y-120), Pt(x+70, y-70), Pt(x+70, y+70), Pt(x-70, y+120)))
	c.name("MUX", x, y-10)
	c.note("4:1", x, y+14)

	for i, name := range []string{"I0", "I1", "I2", "I3"} {
		yy := y - 84 + float64(i)*56
		c.pinIn(name, x-160, x-70, yy)
		c.label(string(rune('0'+i)), x-58, yy, AlignLeft)
	}

	// Select lines meet the slanted bottom edge.
	c.pinUp("S1", x-25, y+135, y+104)
	c.pinUp("S0", x+25, y+135, y+86)

	c.dashed(x, y-95, x, y-118)
	c.label("EN", x+8, y-112, AlignLeft)

	c.pinOut("Y", x+70, x+160, y)
}
