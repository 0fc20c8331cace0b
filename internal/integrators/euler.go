package integrators

import "github.com/san-kum/solctra/internal/vec"

// Euler takes a single step of length h along the field direction at p.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Advance(src FieldSource, p vec.Vector3, h float64) vec.Vector3 {
	return p.Add(direction(src, p, h))
}
