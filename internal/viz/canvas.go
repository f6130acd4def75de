package viz

import (
	"math"
	"strings"
)

// Braille cell dot bits, 2 columns x 4 rows:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille pixel grid of Width x Height cells, i.e.
// (2·Width) x (4·Height) dots, addressed in world coordinates through the
// window set by SetWindow.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	xmin, xmax, ymin, ymax float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		xmax:   1,
		ymax:   1,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// SetWindow maps the world rectangle [xmin,xmax]x[ymin,ymax] onto the canvas.
// Degenerate ranges are widened so every point still lands on the grid.
func (c *Canvas) SetWindow(xmin, xmax, ymin, ymax float64) {
	if xmax-xmin <= 0 {
		xmin, xmax = xmin-1, xmax+1
	}
	if ymax-ymin <= 0 {
		ymin, ymax = ymin-1, ymax+1
	}
	c.xmin, c.xmax, c.ymin, c.ymax = xmin, xmax, ymin, ymax
}

func (c *Canvas) dots() (int, int) { return c.Width * 2, c.Height * 4 }

// toDot converts world coordinates to dot coordinates, y growing downwards.
func (c *Canvas) toDot(x, y float64) (int, int) {
	w, h := c.dots()
	px := (x - c.xmin) / (c.xmax - c.xmin) * float64(w-1)
	py := (c.ymax - y) / (c.ymax - c.ymin) * float64(h-1)
	return int(math.Round(px)), int(math.Round(py))
}

// Set lights the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a dot-space line using Bresenham's algorithm.
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

// Line draws a segment between two world points.
func (c *Canvas) Line(x0, y0, x1, y1 float64) {
	a, b := c.toDot(x0, y0)
	p, q := c.toDot(x1, y1)
	c.DrawLine(a, b, p, q)
}

// Polygon draws the closed outline through the world points xs, ys.
func (c *Canvas) Polygon(xs, ys []float64) {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		c.Line(xs[i], ys[i], xs[j], ys[j])
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

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
