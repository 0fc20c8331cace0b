package field

import (
	"fmt"

	"github.com/san-kum/solctra/internal/coil"
	"github.com/san-kum/solctra/internal/vec"
)

// Evaluator computes the magnetic field of a preprocessed coil set. It is
// read-only after construction and safe for concurrent use.
type Evaluator struct {
	coils     coil.Set
	geometry  []coil.Geometry
	prefactor float64
	segments  int
}

// NewEvaluator pairs a coil set with its precomputed geometry.
func NewEvaluator(dev Device, coils coil.Set, geometry []coil.Geometry) (*Evaluator, error) {
	if len(coils) != len(geometry) {
		return nil, fmt.Errorf("field: %d coils but %d geometries", len(coils), len(geometry))
	}
	for i := range coils {
		if geometry[i].Len() != coils[i].Segments() {
			return nil, fmt.Errorf("field: coil %d has %d segments but geometry has %d",
				i, coils[i].Segments(), geometry[i].Len())
		}
	}
	return &Evaluator{
		coils:     coils,
		geometry:  geometry,
		prefactor: dev.Prefactor(),
		segments:  coils.Segments(),
	}, nil
}

// Segments returns the number of wire segments summed per evaluation.
func (e *Evaluator) Segments() int { return e.segments }

// At returns the net field at p, summing every segment of every coil in set
// order. Each segment is a straight finite filament; the closed-form line
// integral weight is
//
//	c = 2 L (|ri| + |rf|) / (|ri| |rf| ((|ri| + |rf|)^2 - L^2))
//
// where ri, rf point from the segment endpoints to p and L is the segment
// length. The contribution is (k t) x (c ri).
func (e *Evaluator) At(p vec.Vector3) vec.Vector3 {
	k := e.prefactor
	var bx, by, bz float64

	for ci, c := range e.coils {
		g := e.geometry[ci]
		for i := 0; i < len(c)-1; i++ {
			rmi := p.Displacement(c[i])
			rmf := p.Displacement(c[i+1])

			ux := k * g.Tangent[i].X
			uy := k * g.Tangent[i].Y
			uz := k * g.Tangent[i].Z

			l := g.Length[i]
			ri := rmi.Norm()
			rf := rmf.Norm()
			sum := ri + rf
			coef := ((2.0 * l * sum) / (ri * rf)) * (1.0 / (sum*sum - l*l))

			vx := rmi.X * coef
			vy := rmi.Y * coef
			vz := rmi.Z * coef

			bx += uy*vz - uz*vy
			by += uz*vx - ux*vz
			bz += ux*vy - uy*vx
		}
	}

	return vec.New(bx, by, bz)
}
