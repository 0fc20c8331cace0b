package integrators

import (
	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/vec"
)

// FieldSource yields the magnetic field at a point.
type FieldSource interface {
	At(p vec.Vector3) vec.Vector3
}

// Integrator advances a position along the field direction by one step.
// Implementations hold no mutable state and may be shared across goroutines.
type Integrator interface {
	Name() string
	Advance(src FieldSource, p vec.Vector3, h float64) vec.Vector3
}

// Step advances p and applies the containment policy of dev. The second
// result is false when the new position lies outside the confinement torus,
// in which case the particle is to be frozen.
func Step(integ Integrator, src FieldSource, dev field.Device, p vec.Vector3, h float64) (vec.Vector3, bool) {
	next := integ.Advance(src, p, h)
	if !dev.Contains(next) {
		return dev.Sentinel(), false
	}
	return next, true
}

// direction scales the field at p to length h.
func direction(src FieldSource, p vec.Vector3, h float64) vec.Vector3 {
	b := src.At(p)
	norm := b.Norm()
	return vec.New((b.X/norm)*h, (b.Y/norm)*h, (b.Z/norm)*h)
}
