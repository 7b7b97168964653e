package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille cells hold 2x4 dots, numbered
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// from the blank pattern at U+2800.
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid addressed in dots: Width*2 by Height*4.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set turns on the dot at (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] = (c.Grid[row][col] &^ bit) | brailleBlank
	}
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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

// Blob draws a 3x3 dot square centred on (x, y).
func (c *Canvas) Blob(x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport is the rectangle of the flow plane shown on a canvas, y up.
type Viewport struct {
	Min, Max r2.Vec
}

// DefaultViewport covers the default flow grid domain.
var DefaultViewport = Viewport{Min: r2.Vec{X: -2, Y: -2}, Max: r2.Vec{X: 2, Y: 2}}

// Project maps p to dot coordinates on c. ok is false when p is outside the
// viewport.
func (v Viewport) Project(c *Canvas, p r2.Vec) (x, y int, ok bool) {
	w, h := c.Dots()
	fx := (p.X - v.Min.X) / (v.Max.X - v.Min.X)
	fy := (p.Y - v.Min.Y) / (v.Max.Y - v.Min.Y)
	if !(fx >= 0 && fx <= 1 && fy >= 0 && fy <= 1) {
		return 0, 0, false
	}
	x = int(math.Round(fx * float64(w-1)))
	y = h - 1 - int(math.Round(fy*float64(h-1)))
	return x, y, true
}

// Contains reports whether p lies inside the viewport.
func (v Viewport) Contains(p r2.Vec) bool {
	return p.X >= v.Min.X && p.X <= v.Max.X && p.Y >= v.Min.Y && p.Y <= v.Max.Y
}

// Include grows the viewport to contain p with a tenth of its span as
// margin.
func (v Viewport) Include(p r2.Vec) Viewport {
	if v.Contains(p) || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return v
	}
	mx := 0.1 * (v.Max.X - v.Min.X)
	my := 0.1 * (v.Max.Y - v.Min.Y)
	if p.X < v.Min.X {
		v.Min.X = p.X - mx
	}
	if p.X > v.Max.X {
		v.Max.X = p.X + mx
	}
	if p.Y < v.Min.Y {
		v.Min.Y = p.Y - my
	}
	if p.Y > v.Max.Y {
		v.Max.Y = p.Y + my
	}
	return v
}

// DrawPath joins consecutive points inside the viewport with lines.
func (c *Canvas) DrawPath(v Viewport, points []r2.Vec) {
	px, py, prev := 0, 0, false
	for _, p := range points {
		x, y, ok := v.Project(c, p)
		if ok && prev {
			c.DrawLine(px, py, x, y)
		} else if ok {
			c.Set(x, y)
		}
		px, py, prev = x, y, ok
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
