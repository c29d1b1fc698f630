package viz

import (
	"strings"
)

// Canvas rasterizes the scene view. Each terminal cell is a braille
// pattern two dots wide and four dots tall, so a WxH canvas spans
// (W*2)x(H*4) dots. A rune overlay sits above the dot layer: scene
// glyphs (markers, arrow heads) claim whole cells and stay visible
// inside dense wireframes.
type Canvas struct {
	Width, Height int // in cells
	cells         []rune
	marks         []rune
}

const blankBraille = 0x2800

// dotBit returns the braille bit for a dot within its cell. Dots 1-6
// fill the top three rows column-major; dots 7 and 8 share the bottom
// row.
func dotBit(x, y int) rune {
	sx, sy := x&1, y&3
	if sy == 3 {
		return 0x40 << sx
	}
	return 1 << (sy + 3*sx)
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		cells:  make([]rune, w*h),
		marks:  make([]rune, w*h),
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, false
	}
	return row*c.Width + col, true
}

// Set lights the dot at (x, y) in dot coordinates. Out-of-range dots
// are ignored.
func (c *Canvas) Set(x, y int) {
	if i, ok := c.cell(x, y); ok {
		c.cells[i] |= dotBit(x, y)
	}
}

// Unset clears the dot at (x, y).
func (c *Canvas) Unset(x, y int) {
	if i, ok := c.cell(x, y); ok {
		c.cells[i] &^= dotBit(x, y)
	}
}

// Dot reports whether the dot at (x, y) is lit.
func (c *Canvas) Dot(x, y int) bool {
	i, ok := c.cell(x, y)
	return ok && c.cells[i]&dotBit(x, y) != 0
}

// Mark places a glyph on the cell containing dot (x, y). A zero glyph
// clears the overlay for that cell.
func (c *Canvas) Mark(x, y int, glyph rune) {
	if i, ok := c.cell(x, y); ok {
		c.marks[i] = glyph
	}
}

// Clear resets both layers.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blankBraille
		c.marks[i] = 0
	}
}

// DrawLine lights the dots on the Bresenham line between two points.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// EachDot visits every lit dot in dot coordinates, top-left first.
func (c *Canvas) EachDot(fn func(x, y int)) {
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			bits := c.cells[row*c.Width+col] &^ blankBraille
			if bits == 0 {
				continue
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 2; x++ {
					if bits&dotBit(x, y) != 0 {
						fn(col*2+x, row*4+y)
					}
				}
			}
		}
	}
}

// EachMark visits every overlay glyph in cell coordinates.
func (c *Canvas) EachMark(fn func(col, row int, glyph rune)) {
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if g := c.marks[row*c.Width+col]; g != 0 {
				fn(col, row, g)
			}
		}
	}
}

// String renders the canvas, overlay glyphs winning over braille cells.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if g := c.marks[row*c.Width+col]; g != 0 {
				b.WriteRune(g)
			} else {
				b.WriteRune(c.cells[row*c.Width+col])
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
