package viz

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/vec"
)

// Projection selects the plane a snapshot is drawn in.
type Projection string

const (
	// Poloidal plots major radius R against z, folding all toroidal angles.
	Poloidal Projection = "rz"
	// TopDown plots x against y.
	TopDown Projection = "xy"
)

func ParseProjection(s string) (Projection, error) {
	switch Projection(s) {
	case Poloidal, TopDown:
		return Projection(s), nil
	}
	return "", fmt.Errorf("unknown projection: %s (want rz or xy)", s)
}

// RenderCrossSection writes a scatter plot of positions with the
// confinement boundary of dev. Diverged rows are left out. The image format
// follows the extension of path (png, svg, pdf, ...).
func RenderCrossSection(path string, positions []vec.Vector3, dev field.Device, proj Projection, title string) error {
	pts, err := project(positions, dev, proj)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title

	switch proj {
	case Poloidal:
		p.X.Label.Text = "R (m)"
		p.Y.Label.Text = "z (m)"
		if err := addBoundary(p, "boundary", dev.MajorRadius, 0, dev.MinorRadius); err != nil {
			return err
		}
	case TopDown:
		p.X.Label.Text = "x (m)"
		p.Y.Label.Text = "y (m)"
		if err := addBoundary(p, "inner wall", 0, 0, dev.MajorRadius-dev.MinorRadius); err != nil {
			return err
		}
		if err := addBoundary(p, "outer wall", 0, 0, dev.MajorRadius+dev.MinorRadius); err != nil {
			return err
		}
	}

	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(1)
		s.GlyphStyle.Color = color.RGBA{R: 0, G: 120, B: 200, A: 255}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("particles (%d)", len(pts)), s)
	}

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// project maps the confined positions into the plane of proj.
func project(positions []vec.Vector3, dev field.Device, proj Projection) (plotter.XYs, error) {
	if _, err := ParseProjection(string(proj)); err != nil {
		return nil, err
	}
	sentinel := dev.Sentinel()
	pts := make(plotter.XYs, 0, len(positions))
	for _, v := range positions {
		if v == sentinel || !v.IsFinite() {
			continue
		}
		if proj == Poloidal {
			pts = append(pts, plotter.XY{X: math.Hypot(v.X, v.Y), Y: v.Z})
		} else {
			pts = append(pts, plotter.XY{X: v.X, Y: v.Y})
		}
	}
	return pts, nil
}

func addBoundary(p *plot.Plot, name string, cx, cy, r float64) error {
	const n = 256
	ring := make(plotter.XYs, n+1)
	for i := 0; i <= n; i++ {
		theta := 2 * math.Pi * float64(i) / n
		ring[i].X = cx + r*math.Cos(theta)
		ring[i].Y = cy + r*math.Sin(theta)
	}
	line, err := plotter.NewLine(ring)
	if err != nil {
		return err
	}
	line.LineStyle.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
