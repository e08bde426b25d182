package schematic

// Two-input gates share one layout: inputs A and B at y∓20 entering from
// x-80, the body between x-50 and x+30, and output Y running to x+70 plus
// any bubble offset.

func drawAnd(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-80, x-40, y-20)
	c.pinIn("B", x-80, x-40, y+20)
	c.block(andBody(x-40, y))
	c.pinOut("Y", x+30, x+70, y)
	c.name("AND", x-10, y)
}

func drawNand(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-80, x-40, y-20)
	c.pinIn("B", x-80, x-40, y+20)
	c.block(andBody(x-40, y))
	c.bubble(x+35, y)
	c.pinOut("Y", x+40, x+80, y)
	c.name("NAND", x-10, y)
}

func drawOr(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-80, x-46, y-20)
	c.pinIn("B", x-80, x-46, y+20)
	c.block(orBody(x-50, y))
	c.pinOut("Y", x+30, x+70, y)
	c.name("OR", x-15, y)
}

func drawNor(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-80, x-46, y-20)
	c.pinIn("B", x-80, x-46, y+20)
	c.block(orBody(x-50, y))
	c.bubble(x+35, y)
	c.pinOut("Y", x+40, x+80, y)
	c.name("NOR", x-15, y)
}

func drawXor(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-90, x-56, y-20)
	c.pinIn("B", x-90, x-56, y+20)
	c.stroke(xorBack(x-50, y))
	c.block(orBody(x-50, y))
	c.pinOut("Y", x+30, x+70, y)
	c.name("XOR", x-15, y)
}

func drawXnor(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-90, x-56, y-20)
	c.pinIn("B", x-90, x-56, y+20)
	c.stroke(xorBack(x-50, y))
	c.block(orBody(x-50, y))
	c.bubble(x+35, y)
	c.pinOut("Y", x+40, x+80, y)
	c.name("XNOR", x-15, y)
}

func drawNot(c *canvas) {
	x, y := c.x, c.y
	c.pinIn("A", x-80, x-40, y)
	c.block(Polygon(Pt(x-40, y-25), Pt(x+10, y), Pt(x-40, y+25)))
	c.bubble(x+15, y)
	c.pinOut("Y", x+20, x+70, y)
	c.name("NOT", x-24, y)
}
