package field

import (
	"math"

	"github.com/san-kum/solctra/internal/vec"
)

// Device holds the physical constants of a toroidal confinement device.
type Device struct {
	MinorRadius  float64 `yaml:"minor_radius" json:"minor_radius"`
	MajorRadius  float64 `yaml:"major_radius" json:"major_radius"`
	Permeability float64 `yaml:"permeability" json:"permeability"`
	Current      float64 `yaml:"current" json:"current"`
}

// SCR1 returns the constants of the SCR-1 stellarator.
func SCR1() Device {
	return Device{
		MinorRadius:  0.0944165,
		MajorRadius:  0.2381,
		Permeability: 1.2566e-06,
		Current:      -4350.0,
	}
}

// Prefactor is the Biot-Savart constant mu0*I/(4*pi).
func (d Device) Prefactor() float64 {
	return (d.Permeability * d.Current) / (4.0 * math.Pi)
}

// AxisPoint projects p onto the magnetic axis circle in the z = 0 plane.
// Points on the z axis have no defined projection and yield NaN.
func (d Device) AxisPoint(p vec.Vector3) vec.Vector3 {
	planar := vec.New(p.X, p.Y, 0)
	norm := planar.Norm()
	return vec.New(d.MajorRadius*planar.X/norm, d.MajorRadius*planar.Y/norm, 0)
}

// AxisOffset is the distance from p to its projection on the magnetic axis.
func (d Device) AxisOffset(p vec.Vector3) float64 {
	return p.Distance(d.AxisPoint(p))
}

// Contains reports whether p lies inside the confinement torus. Comparisons
// involving NaN report true so that degenerate positions are not frozen.
func (d Device) Contains(p vec.Vector3) bool {
	return !(d.AxisOffset(p) > d.MinorRadius)
}

// Sentinel is the position written out for particles that left the device.
func (d Device) Sentinel() vec.Vector3 {
	return vec.New(d.MinorRadius, d.MinorRadius, d.MinorRadius)
}
