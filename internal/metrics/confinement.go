package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/tracer"
	"github.com/san-kum/solctra/internal/vec"
)

// Sample summarises particle confinement at one step. Offsets are distances
// from the magnetic axis circle and cover active particles only.
type Sample struct {
	Step       int
	Active     int
	Diverged   int
	MeanOffset float64
	StdOffset  float64
	MaxOffset  float64
}

func (s Sample) Total() int { return s.Active + s.Diverged }

// Survival is the fraction of particles still confined.
func (s Sample) Survival() float64 {
	if s.Total() == 0 {
		return 1.0
	}
	return float64(s.Active) / float64(s.Total())
}

// Analyze computes a Sample from a live particle set.
func Analyze(dev field.Device, step int, particles tracer.ParticleSet) Sample {
	offsets := make([]float64, 0, len(particles))
	for _, p := range particles {
		if p.Active() {
			offsets = append(offsets, dev.AxisOffset(p.Position))
		}
	}
	s := summarize(offsets)
	s.Step = step
	s.Active = len(offsets)
	s.Diverged = len(particles) - s.Active
	return s
}

// FromPositions computes a Sample from written snapshot rows, where diverged
// particles appear as the device sentinel.
func FromPositions(dev field.Device, step int, positions []vec.Vector3) Sample {
	sentinel := dev.Sentinel()
	offsets := make([]float64, 0, len(positions))
	for _, p := range positions {
		if p != sentinel {
			offsets = append(offsets, dev.AxisOffset(p))
		}
	}
	s := summarize(offsets)
	s.Step = step
	s.Active = len(offsets)
	s.Diverged = len(positions) - s.Active
	return s
}

// summarize ignores non-finite offsets (particles on the z axis).
func summarize(offsets []float64) Sample {
	finite := offsets[:0:0]
	for _, o := range offsets {
		if !math.IsNaN(o) && !math.IsInf(o, 0) {
			finite = append(finite, o)
		}
	}

	var s Sample
	switch len(finite) {
	case 0:
		return s
	case 1:
		s.MeanOffset = finite[0]
	default:
		s.MeanOffset, s.StdOffset = stat.MeanStdDev(finite, nil)
	}
	s.MaxOffset = floats.Max(finite)
	return s
}
