package viz

import (
	"math"
	"strings"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/vec"
)

// Braille cells are 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
const brailleBase = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid of Width x Height cells, addressed in dots
// (Width*2 x Height*4).
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

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
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

// frame maps a world rectangle onto the canvas dots, y up.
type frame struct {
	minX, minY, scale float64
	dotsX, dotsY      int
}

func newFrame(c *Canvas, minX, maxX, minY, maxY float64) frame {
	dotsX, dotsY := c.Width*2, c.Height*4
	scale := math.Min(float64(dotsX-1)/(maxX-minX), float64(dotsY-1)/(maxY-minY))
	return frame{minX: minX, minY: minY, scale: scale, dotsX: dotsX, dotsY: dotsY}
}

func (f frame) dot(x, y float64) (int, int) {
	px := int(math.Round((x - f.minX) * f.scale))
	py := f.dotsY - 1 - int(math.Round((y-f.minY)*f.scale))
	return px, py
}

// CrossSection draws the poloidal (R, z) cross-section of positions together
// with the confinement boundary of dev. Diverged rows (dev.Sentinel) and
// positions without a finite radius are skipped.
func CrossSection(positions []vec.Vector3, dev field.Device, w, h int) *Canvas {
	c := NewCanvas(w, h)
	margin := dev.MinorRadius * 1.1
	f := newFrame(c,
		dev.MajorRadius-margin, dev.MajorRadius+margin,
		-margin, margin)

	const boundaryDots = 180
	for i := 0; i < boundaryDots; i++ {
		theta := 2 * math.Pi * float64(i) / boundaryDots
		c.Set(f.dot(dev.MajorRadius+dev.MinorRadius*math.Cos(theta), dev.MinorRadius*math.Sin(theta)))
	}

	sentinel := dev.Sentinel()
	for _, p := range positions {
		if p == sentinel || !p.IsFinite() {
			continue
		}
		c.Set(f.dot(math.Hypot(p.X, p.Y), p.Z))
	}
	return c
}
