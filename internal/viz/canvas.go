package viz

import (
	"math"
	"strings"
)

// Braille patterns have 2x4 dots per cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// starting at U+2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

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
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Set sets the dot at (x, y) in dot coordinates, which span
// (2 Width) x (4 Height). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is set.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// DrawLine draws a line with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Polyline is a curve in model coordinates.
type Polyline struct {
	X, Y []float64
}

// Plot draws curves on a w x h cell canvas, scaled uniformly to fit. Model
// y points up, so rows are flipped.
func Plot(w, h int, curves ...Polyline) *Canvas {
	c := NewCanvas(w, h)
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, p := range curves {
		for i := range p.X {
			xmin, xmax = math.Min(xmin, p.X[i]), math.Max(xmax, p.X[i])
			ymin, ymax = math.Min(ymin, p.Y[i]), math.Max(ymax, p.Y[i])
		}
	}
	if math.IsInf(xmin, 0) {
		return c
	}

	dw, dh := float64(2*w-1), float64(4*h-1)
	scale := math.Inf(1)
	if xmax > xmin {
		scale = dw / (xmax - xmin)
	}
	if ymax > ymin {
		scale = math.Min(scale, dh/(ymax-ymin))
	}
	if math.IsInf(scale, 0) {
		scale = 1
	}
	px := func(x float64) int { return int(math.Round((x - xmin) * scale)) }
	py := func(y float64) int { return int(math.Round(dh - (y-ymin)*scale)) }

	for _, p := range curves {
		for i := 1; i < len(p.X); i++ {
			c.DrawLine(px(p.X[i-1]), py(p.Y[i-1]), px(p.X[i]), py(p.Y[i]))
		}
		if len(p.X) == 1 {
			c.Set(px(p.X[0]), py(p.Y[0]))
		}
	}
	return c
}

// Mirror returns the curve reflected at the x axis, in reverse order.
func (p Polyline) Mirror() Polyline {
	n := len(p.X)
	m := Polyline{X: make([]float64, n), Y: make([]float64, n)}
	for i := range n {
		m.X[i], m.Y[i] = p.X[n-1-i], -p.Y[n-1-i]
	}
	return m
}
