package viz

import (
	"strings"

	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// 4x4 ordered dither thresholds, scaled to (0,1).
var bayer = [4][4]float64{
	{0.5 / 16, 8.5 / 16, 2.5 / 16, 10.5 / 16},
	{12.5 / 16, 4.5 / 16, 14.5 / 16, 6.5 / 16},
	{3.5 / 16, 11.5 / 16, 1.5 / 16, 9.5 / 16},
	{15.5 / 16, 7.5 / 16, 13.5 / 16, 5.5 / 16},
}

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
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set lights a dot at sub-pixel (x, y). The canvas is (Width*2) x
// (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Dots returns the number of lit sub-pixels.
func (c *Canvas) Dots() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - 0x2800; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

// Dither draws buf's luminance with ordered dithering, lit dots for bright
// pixels. The image is stretched to the full canvas.
func (c *Canvas) Dither(buf imaging.Buffer) {
	cw, ch := c.Width*2, c.Height*4
	if buf.Width == 0 || buf.Height == 0 || len(buf.Data) != buf.Len() {
		return
	}
	for y := 0; y < ch; y++ {
		v := (float64(y) + 0.5) / float64(ch)
		for x := 0; x < cw; x++ {
			u := (float64(x) + 0.5) / float64(cw)
			r, g, b := buf.RGB(u, v)
			if imaging.Luma(r, g, b) > bayer[y%4][x%4] {
				c.Set(x, y)
			}
		}
	}
}

// Outline draws the closed edge path of every polygon in g.
func (c *Canvas) Outline(g geom.Gene) {
	cw, ch := float64(c.Width*2-1), float64(c.Height*4-1)
	for _, p := range g {
		n := len(p.Vertices)
		for i := 0; i < n; i++ {
			a, b := p.Vertices[i], p.Vertices[(i+1)%n]
			c.DrawLine(int(a.X*cw+0.5), int(a.Y*ch+0.5), int(b.X*cw+0.5), int(b.Y*ch+0.5))
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
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
