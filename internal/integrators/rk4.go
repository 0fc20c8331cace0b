package integrators

import "github.com/san-kum/solctra/internal/vec"

// RK4 is a classic four-stage Runge-Kutta scheme applied to the field
// direction: every stage is normalised to unit length before being scaled by
// the step, so each stage moves exactly h along the local field line.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Advance(src FieldSource, p vec.Vector3, h float64) vec.Vector3 {
	k1 := direction(src, p, h)
	p1 := vec.New(k1.X/2.0+p.X, k1.Y/2.0+p.Y, k1.Z/2.0+p.Z)

	k2 := direction(src, p1, h)
	p2 := vec.New(k2.X/2.0+p.X, k2.Y/2.0+p.Y, k2.Z/2.0+p.Z)

	k3 := direction(src, p2, h)
	p3 := vec.New(k3.X+p.X, k3.Y+p.Y, k3.Z+p.Z)

	k4 := direction(src, p3, h)

	return vec.New(
		p.X+(k1.X+2.0*k2.X+2.0*k3.X+k4.X)/6.0,
		p.Y+(k1.Y+2.0*k2.Y+2.0*k3.Y+k4.Y)/6.0,
		p.Z+(k1.Z+2.0*k2.Z+2.0*k3.Z+k4.Z)/6.0,
	)
}
