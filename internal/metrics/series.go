package metrics

import (
	"fmt"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/storage"
)

// FromStore computes one Sample per snapshot found in st.
func FromStore(st *storage.Store, dev field.Device) ([]Sample, error) {
	steps, err := st.Snapshots()
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no snapshots in %s", st.Dir())
	}

	samples := make([]Sample, 0, len(steps))
	for _, step := range steps {
		positions, err := st.LoadSnapshot(step)
		if err != nil {
			return nil, err
		}
		samples = append(samples, FromPositions(dev, step, positions))
	}
	return samples, nil
}

// Series extracts one value per sample.
func Series(samples []Sample, fn func(Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = fn(s)
	}
	return out
}

func ActiveCount(s Sample) float64 { return float64(s.Active) }

func MeanOffset(s Sample) float64 { return s.MeanOffset }

func MaxOffset(s Sample) float64 { return s.MaxOffset }
