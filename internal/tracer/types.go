package tracer

import (
	"fmt"
	"runtime"

	"github.com/san-kum/solctra/internal/vec"
)

// Status is the integration state of a particle.
type Status uint8

const (
	// Active particles are advanced every step.
	Active Status = iota
	// Diverged particles left the confinement volume and are frozen.
	Diverged
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Diverged:
		return "diverged"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

type Particle struct {
	Position vec.Vector3
	Status   Status
}

func NewParticle(p vec.Vector3) Particle {
	return Particle{Position: p, Status: Active}
}

func (p Particle) Active() bool { return p.Status == Active }

// ParticleSet is ordered; the order defines snapshot row order and never
// changes during a run.
type ParticleSet []Particle

func NewParticleSet(positions []vec.Vector3) ParticleSet {
	s := make(ParticleSet, len(positions))
	for i, p := range positions {
		s[i] = NewParticle(p)
	}
	return s
}

func (s ParticleSet) ActiveCount() int {
	n := 0
	for _, p := range s {
		if p.Active() {
			n++
		}
	}
	return n
}

// Positions returns the particle positions, substituting sentinel for
// diverged particles.
func (s ParticleSet) Positions(sentinel vec.Vector3) []vec.Vector3 {
	out := make([]vec.Vector3, len(s))
	for i, p := range s {
		if p.Active() {
			out[i] = p.Position
		} else {
			out[i] = sentinel
		}
	}
	return out
}

// Snapshot is the state of every particle after a step. Particles is only
// valid for the duration of the Sink call.
type Snapshot struct {
	Step      int
	Particles ParticleSet
	Sentinel  vec.Vector3
}

// Position returns the output position of particle i.
func (s Snapshot) Position(i int) vec.Vector3 {
	if s.Particles[i].Active() {
		return s.Particles[i].Position
	}
	return s.Sentinel
}

func (s Snapshot) Len() int { return len(s.Particles) }

// Sink receives snapshots. An error aborts the run.
type Sink interface {
	WriteSnapshot(s Snapshot) error
}

// Observer is notified after every step, before any snapshot is written.
type Observer interface {
	OnStep(step int, particles ParticleSet)
}

type Config struct {
	Steps          int
	StepSize       float64
	WriteFrequency int
	// Workers bounds the goroutines advancing particles; zero means NumCPU.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Steps:          10000,
		StepSize:       0.001,
		WriteFrequency: 10,
		Workers:        runtime.NumCPU(),
	}
}

type Result struct {
	StepsTaken int
	// Snapshots lists the steps handed to the sink, in order.
	Snapshots []int
	Active    int
	Diverged  int
	// DivergedAt maps particle index to the step it left the device.
	DivergedAt map[int]int
}
