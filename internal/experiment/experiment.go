package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/san-kum/solctra/internal/coil"
	"github.com/san-kum/solctra/internal/config"
	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/integrators"
	"github.com/san-kum/solctra/internal/metrics"
	"github.com/san-kum/solctra/internal/storage"
	"github.com/san-kum/solctra/internal/tracer"
)

const configEcho = "config.yaml"

// Field is a loaded coil set ready for evaluation.
type Field struct {
	Coils     coil.Set
	Names     []string
	Evaluator *field.Evaluator
}

// LoadField reads the coil directory and precomputes segment geometry for dev.
func LoadField(dir string, dev field.Device) (*Field, error) {
	set, names, err := storage.ReadCoilDir(dir)
	if err != nil {
		return nil, err
	}
	geometry, err := coil.Preprocess(set)
	if err != nil {
		var segErr *coil.SegmentError
		if errors.As(err, &segErr) && segErr.Coil >= 0 && segErr.Coil < len(names) {
			path := filepath.Join(dir, names[segErr.Coil])
			if segErr.Segment < 0 {
				return nil, fmt.Errorf("%s: %w", path, segErr.Wrapped)
			}
			return nil, fmt.Errorf("%s: segment %d: %w", path, segErr.Segment, segErr.Wrapped)
		}
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	eval, err := field.NewEvaluator(dev, set, geometry)
	if err != nil {
		return nil, err
	}
	return &Field{Coils: set, Names: names, Evaluator: eval}, nil
}

// Experiment assembles one tracing run from a configuration: coils, particles,
// integrator, output store and driver.
type Experiment struct {
	cfg        *config.Config
	logger     *log.Logger
	field      *Field
	integrator integrators.Integrator
	particles  tracer.ParticleSet
	store      *storage.Store
	simulator  *tracer.Simulator
	recorder   *metrics.Recorder
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
	}
}

func (e *Experiment) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Setup validates the configuration and loads every input. Nothing is
// written until Run.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	integ, err := NewRegistry().GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	f, err := LoadField(e.cfg.ResourcePath, e.cfg.Device)
	if err != nil {
		return err
	}
	e.logger.Printf("loaded %d coils (%d segments) from %s",
		len(f.Coils), f.Evaluator.Segments(), e.cfg.ResourcePath)

	positions, err := storage.ReadPoints(e.cfg.ParticlesFile, e.cfg.NumParticles)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return fmt.Errorf("%s: %w", e.cfg.ParticlesFile, tracer.ErrNoParticles)
	}
	e.logger.Printf("loaded %d particles from %s", len(positions), e.cfg.ParticlesFile)

	e.field = f
	e.integrator = integ
	e.particles = tracer.NewParticleSet(positions)
	e.store = storage.New(e.cfg.Output)
	e.store.SetCompress(e.cfg.Compress)
	e.simulator = tracer.New(e.cfg.Device, f.Evaluator, integ)
	e.simulator.SetLogger(e.logger)
	e.recorder = metrics.NewRecorder(e.cfg.Device, e.cfg.WriteFrequency)
	e.simulator.AddObserver(e.recorder)
	return nil
}

// Run creates the output directory, traces the particles and records the run
// metadata and effective configuration next to the snapshots. Metadata is
// written even when the run stops early.
func (e *Experiment) Run(ctx context.Context) (*tracer.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	if err := e.store.Init(); err != nil {
		return nil, err
	}

	start := time.Now()
	e.recorder.Reset()
	result, runErr := e.simulator.Run(ctx, e.particles, e.cfg.TracerConfig(), e.store)
	if result == nil {
		return nil, runErr
	}
	if samples := e.recorder.Samples(); len(samples) > 0 {
		last := samples[len(samples)-1]
		e.logger.Printf("step %d: survival %.3f, mean offset %.6f m", last.Step, last.Survival(), last.MeanOffset)
	}

	meta := storage.RunMetadata{
		ID:             storage.NewRunID(start),
		Timestamp:      start.UTC(),
		Device:         e.cfg.Device,
		Integrator:     e.integrator.Name(),
		Steps:          e.cfg.Steps,
		StepSize:       e.cfg.StepSize,
		WriteFrequency: e.cfg.WriteFrequency,
		Workers:        e.cfg.Workers,
		Coils:          e.field.Names,
		Segments:       e.field.Evaluator.Segments(),
		Particles:      len(e.particles),
		StepsTaken:     result.StepsTaken,
		Active:         result.Active,
		Diverged:       result.Diverged,
		Snapshots:      result.Snapshots,
		Elapsed:        time.Since(start).String(),
	}

	err := errors.Join(
		runErr,
		e.store.SaveMetadata(meta),
		config.Save(filepath.Join(e.store.Dir(), configEcho), e.cfg),
	)
	return result, err
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *tracer.Simulator {
	return e.simulator
}

// Confinement returns the recorder sampling confinement statistics at every
// write step.
func (e *Experiment) Confinement() *metrics.Recorder { return e.recorder }

func (e *Experiment) Particles() tracer.ParticleSet { return e.particles }

func (e *Experiment) Store() *storage.Store { return e.store }

func (e *Experiment) Field() *Field { return e.field }
