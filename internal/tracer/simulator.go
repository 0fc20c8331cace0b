package tracer

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/integrators"
)

// minChunk keeps tiny particle sets on the calling goroutine.
const minChunk = 8

type Simulator struct {
	device     field.Device
	src        integrators.FieldSource
	integrator integrators.Integrator
	observers  []Observer
	logger     *log.Logger
}

func New(dev field.Device, src integrators.FieldSource, integ integrators.Integrator) *Simulator {
	return &Simulator{
		device:     dev,
		src:        src,
		integrator: integ,
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard, "", 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run advances particles in place for cfg.Steps steps. Step 0 is written to
// sink before the loop; afterwards a snapshot is written whenever the step
// is a multiple of cfg.WriteFrequency. A sink error or context cancellation
// stops the run; particles then hold the state of the last completed step.
func (s *Simulator) Run(ctx context.Context, particles ParticleSet, cfg Config, sink Sink) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(particles) == 0 {
		return nil, ErrNoParticles
	}

	result := &Result{
		Snapshots:  make([]int, 0, cfg.Steps/cfg.WriteFrequency+1),
		DivergedAt: make(map[int]int),
	}
	divergedAt := make([]int, len(particles))

	s.logger.Printf("tracing %d particles for %d steps (h=%g, %s)",
		len(particles), cfg.Steps, cfg.StepSize, s.integrator.Name())

	if err := s.snapshot(sink, 0, particles, result); err != nil {
		s.finish(particles, divergedAt, result)
		return result, err
	}

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			s.finish(particles, divergedAt, result)
			return result, ctx.Err()
		default:
		}

		s.advance(particles, cfg, step, divergedAt)
		result.StepsTaken++

		for _, obs := range s.observers {
			obs.OnStep(step, particles)
		}

		if step%cfg.WriteFrequency == 0 {
			if err := s.snapshot(sink, step, particles, result); err != nil {
				s.finish(particles, divergedAt, result)
				return result, err
			}
		}
	}

	s.finish(particles, divergedAt, result)
	s.logger.Printf("finished: %d active, %d diverged", result.Active, result.Diverged)
	return result, nil
}

func (s *Simulator) advance(particles ParticleSet, cfg Config, step int, divergedAt []int) {
	ParallelFor(len(particles), cfg.Workers, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &particles[i]
			if !p.Active() {
				continue
			}
			next, ok := integrators.Step(s.integrator, s.src, s.device, p.Position, cfg.StepSize)
			if !ok {
				p.Status = Diverged
				divergedAt[i] = step
			}
			p.Position = next
		}
	})
}

func (s *Simulator) snapshot(sink Sink, step int, particles ParticleSet, result *Result) error {
	snap := Snapshot{Step: step, Particles: particles, Sentinel: s.device.Sentinel()}
	if err := sink.WriteSnapshot(snap); err != nil {
		return &SnapshotError{Step: step, Wrapped: err}
	}
	result.Snapshots = append(result.Snapshots, step)
	s.logger.Printf("snapshot %d written (%d active)", step, particles.ActiveCount())
	return nil
}

func (s *Simulator) finish(particles ParticleSet, divergedAt []int, result *Result) {
	result.Active = particles.ActiveCount()
	result.Diverged = len(particles) - result.Active
	for i, step := range divergedAt {
		if step > 0 {
			result.DivergedAt[i] = step
		}
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.StepSize <= 0 {
		return fmt.Errorf("%w: step size must be positive, got %g", ErrInvalidConfig, cfg.StepSize)
	}
	if cfg.WriteFrequency <= 0 {
		return fmt.Errorf("%w: write frequency must be positive, got %d", ErrInvalidConfig, cfg.WriteFrequency)
	}
	return nil
}
