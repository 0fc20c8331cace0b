package coil

import (
	"errors"
	"fmt"

	"github.com/san-kum/solctra/internal/vec"
)

var (
	// ErrTooFewPoints indicates a coil with fewer than two sampled points.
	ErrTooFewPoints = errors.New("coil: need at least two points")

	// ErrZeroLengthSegment indicates two consecutive coil points coincide.
	ErrZeroLengthSegment = errors.New("coil: zero-length segment")
)

// SegmentError locates a degenerate segment inside a coil set.
type SegmentError struct {
	Coil    int
	Segment int
	Wrapped error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("coil %d segment %d: %v", e.Coil, e.Segment, e.Wrapped)
}

func (e *SegmentError) Unwrap() error {
	return e.Wrapped
}

// Coil is the sampled path of one wire loop.
type Coil []vec.Vector3

// Set is the ordered collection of coils. Order is the load order and fixes
// the field summation order.
type Set []Coil

// Segments returns the number of straight segments in the coil.
func (c Coil) Segments() int {
	if len(c) < 2 {
		return 0
	}
	return len(c) - 1
}

// Segments returns the total segment count across all coils.
func (s Set) Segments() int {
	n := 0
	for _, c := range s {
		n += c.Segments()
	}
	return n
}

// Geometry holds the per-segment displacement vectors and unit tangents of a
// single coil. Displacement[i] = coil[i+1] - coil[i].
type Geometry struct {
	Displacement []vec.Vector3
	Tangent      []vec.Vector3
	// Length caches the displacement norms.
	Length []float64
}

func (g Geometry) Len() int { return len(g.Displacement) }

// ComputeGeometry derives the segment geometry of one coil. It rejects coils
// with fewer than two points or with coincident consecutive points.
func ComputeGeometry(c Coil) (Geometry, error) {
	if len(c) < 2 {
		return Geometry{}, ErrTooFewPoints
	}

	n := len(c) - 1
	g := Geometry{
		Displacement: make([]vec.Vector3, n),
		Tangent:      make([]vec.Vector3, n),
		Length:       make([]float64, n),
	}

	for i := 0; i < n; i++ {
		d := c[i+1].Displacement(c[i])
		norm := d.Norm()
		if norm == 0 {
			return Geometry{}, &SegmentError{Segment: i, Wrapped: ErrZeroLengthSegment}
		}
		g.Displacement[i] = d
		g.Tangent[i] = d.Unit()
		g.Length[i] = norm
	}

	return g, nil
}

// Preprocess computes the geometry of every coil, preserving set order.
func Preprocess(s Set) ([]Geometry, error) {
	out := make([]Geometry, len(s))
	for i, c := range s {
		g, err := ComputeGeometry(c)
		if err != nil {
			var segErr *SegmentError
			if errors.As(err, &segErr) {
				segErr.Coil = i
				return nil, segErr
			}
			return nil, &SegmentError{Coil: i, Segment: -1, Wrapped: err}
		}
		out[i] = g
	}
	return out, nil
}
