package metrics

import (
	"sync"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/tracer"
)

// Recorder is a tracer.Observer that keeps a confinement Sample every
// interval steps.
type Recorder struct {
	name     string
	device   field.Device
	interval int

	mu      sync.Mutex
	samples []Sample
}

func NewRecorder(dev field.Device, interval int) *Recorder {
	if interval <= 0 {
		interval = 1
	}
	return &Recorder{
		name:     "confinement",
		device:   dev,
		interval: interval,
	}
}

func (r *Recorder) Name() string {
	return r.name
}

func (r *Recorder) OnStep(step int, particles tracer.ParticleSet) {
	if step%r.interval != 0 {
		return
	}
	s := Analyze(r.device, step, particles)

	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

// Samples returns a copy of the recorded samples in step order.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Value is the survival fraction of the latest sample.
func (r *Recorder) Value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return 1.0
	}
	return r.samples[len(r.samples)-1].Survival()
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.samples = nil
	r.mu.Unlock()
}
