package tracer_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/solctra/internal/coil"
	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/integrators"
	"github.com/san-kum/solctra/internal/metrics"
	"github.com/san-kum/solctra/internal/tracer"
	"github.com/san-kum/solctra/internal/vec"
)

type uniformField struct{ b vec.Vector3 }

func (u uniformField) At(p vec.Vector3) vec.Vector3 { return u.b }

type recordingSink struct {
	steps     []int
	positions map[int][]vec.Vector3
	failAt    int
	err       error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{positions: make(map[int][]vec.Vector3), failAt: -1}
}

func (r *recordingSink) WriteSnapshot(s tracer.Snapshot) error {
	if s.Step == r.failAt {
		return r.err
	}
	r.steps = append(r.steps, s.Step)
	rows := make([]vec.Vector3, s.Len())
	for i := range rows {
		rows[i] = s.Position(i)
	}
	r.positions[s.Step] = rows
	return nil
}

type stepCounter struct{ steps []int }

func (c *stepCounter) OnStep(step int, particles tracer.ParticleSet) {
	c.steps = append(c.steps, step)
}

func torusEvaluator(dev field.Device) *field.Evaluator {
	set := coil.Torus(dev.MajorRadius, 0.12, 12, 72)
	geom, err := coil.Preprocess(set)
	Expect(err).NotTo(HaveOccurred())
	eval, err := field.NewEvaluator(dev, set, geom)
	Expect(err).NotTo(HaveOccurred())
	return eval
}

func ringOfParticles(dev field.Device, n int) tracer.ParticleSet {
	positions := make([]vec.Vector3, n)
	for i := range positions {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r := dev.MajorRadius + 0.04*math.Cos(3*phi)
		positions[i] = vec.New(r*math.Cos(phi), r*math.Sin(phi), 0.03*math.Sin(5*phi))
	}
	return tracer.NewParticleSet(positions)
}

var _ = Describe("Simulator", func() {
	var (
		dev  field.Device
		ctx  context.Context
		sink *recordingSink
	)

	BeforeEach(func() {
		dev = field.SCR1()
		ctx = context.Background()
		sink = newRecordingSink()
	})

	Describe("snapshot cadence", func() {
		It("writes step zero and every multiple of the write frequency", func() {
			particles := ringOfParticles(dev, 5)
			initial := particles.Positions(dev.Sentinel())
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())

			res, err := sim.Run(ctx, particles, tracer.Config{Steps: 10, StepSize: 0.001, WriteFrequency: 3}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(sink.steps).To(Equal([]int{0, 3, 6, 9}))
			Expect(res.Snapshots).To(Equal([]int{0, 3, 6, 9}))
			Expect(res.StepsTaken).To(Equal(10))
			Expect(sink.positions[0]).To(Equal(initial))
		})

		It("keeps the particle count and order constant", func() {
			particles := ringOfParticles(dev, 17)
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())

			_, err := sim.Run(ctx, particles, tracer.Config{Steps: 6, StepSize: 0.002, WriteFrequency: 1}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(particles).To(HaveLen(17))
			for _, step := range sink.steps {
				Expect(sink.positions[step]).To(HaveLen(17))
			}
			// Particle 0 starts on the x axis and stays in its own row.
			Expect(sink.positions[6][0].X).To(BeNumerically(">", 0.2))
		})

		It("writes only step zero when there are no steps", func() {
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())
			res, err := sim.Run(ctx, ringOfParticles(dev, 3), tracer.Config{Steps: 0, StepSize: 0.01, WriteFrequency: 5}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(sink.steps).To(Equal([]int{0}))
			Expect(res.StepsTaken).To(BeZero())
		})
	})

	Describe("divergence", func() {
		It("freezes escaping particles at the sentinel for the rest of the run", func() {
			particles := tracer.NewParticleSet([]vec.Vector3{
				vec.New(dev.MajorRadius, 0, 0.08),
				vec.New(dev.MajorRadius, 0, -0.05),
			})
			sim := tracer.New(dev, uniformField{b: vec.New(0, 0, 1)}, integrators.NewRK4())

			res, err := sim.Run(ctx, particles, tracer.Config{Steps: 10, StepSize: 0.01, WriteFrequency: 1}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Active).To(Equal(1))
			Expect(res.Diverged).To(Equal(1))
			Expect(res.DivergedAt).To(Equal(map[int]int{0: 2}))

			Expect(sink.positions[1][0].Z).To(BeNumerically("~", 0.09, 1e-12))
			for step := 2; step <= 10; step++ {
				Expect(sink.positions[step][0]).To(Equal(dev.Sentinel()), "step %d", step)
			}
			Expect(particles[0].Status).To(Equal(tracer.Diverged))
			Expect(particles[1].Active()).To(BeTrue())
			Expect(sink.positions[10][1].Z).To(BeNumerically("~", 0.05, 1e-12))
		})

		It("never integrates a diverged particle again", func() {
			particles := tracer.ParticleSet{
				{Position: vec.New(1, 2, 3), Status: tracer.Diverged},
			}
			sim := tracer.New(dev, uniformField{b: vec.New(1, 0, 0)}, integrators.NewRK4())

			_, err := sim.Run(ctx, particles, tracer.Config{Steps: 4, StepSize: 0.01, WriteFrequency: 2}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(particles[0].Position).To(Equal(vec.New(1, 2, 3)))
			Expect(sink.positions[4][0]).To(Equal(dev.Sentinel()))
		})
	})

	Describe("determinism", func() {
		It("produces identical snapshots for any worker count", func() {
			eval := torusEvaluator(dev)
			cfg := tracer.Config{Steps: 5, StepSize: 0.005, WriteFrequency: 5}

			serial := newRecordingSink()
			cfg.Workers = 1
			_, err := tracer.New(dev, eval, integrators.NewRK4()).Run(ctx, ringOfParticles(dev, 40), cfg, serial)
			Expect(err).NotTo(HaveOccurred())

			parallel := newRecordingSink()
			cfg.Workers = 8
			_, err = tracer.New(dev, eval, integrators.NewRK4()).Run(ctx, ringOfParticles(dev, 40), cfg, parallel)
			Expect(err).NotTo(HaveOccurred())

			Expect(parallel.positions).To(Equal(serial.positions))
		})
	})

	Describe("failures", func() {
		It("aborts when the sink fails", func() {
			sink.failAt = 4
			sink.err = errors.New("disk full")
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())

			res, err := sim.Run(ctx, ringOfParticles(dev, 3), tracer.Config{Steps: 10, StepSize: 0.001, WriteFrequency: 2}, sink)

			Expect(err).To(MatchError(sink.err))
			var snapErr *tracer.SnapshotError
			Expect(errors.As(err, &snapErr)).To(BeTrue())
			Expect(snapErr.Step).To(Equal(4))
			Expect(res.StepsTaken).To(Equal(4))
			Expect(sink.steps).To(Equal([]int{0, 2}))
		})

		It("reports particle counts when the first snapshot fails", func() {
			sink.failAt = 0
			sink.err = errors.New("read-only file system")
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())

			res, err := sim.Run(ctx, ringOfParticles(dev, 3), tracer.Config{Steps: 10, StepSize: 0.001, WriteFrequency: 2}, sink)

			Expect(err).To(MatchError(sink.err))
			Expect(res.StepsTaken).To(BeZero())
			Expect(res.Active).To(Equal(3))
			Expect(res.Diverged).To(BeZero())
			Expect(sink.steps).To(BeEmpty())
		})

		It("stops on context cancellation", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())

			res, err := sim.Run(cancelled, ringOfParticles(dev, 3), tracer.Config{Steps: 10, StepSize: 0.001, WriteFrequency: 2}, sink)

			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(BeZero())
			Expect(sink.steps).To(Equal([]int{0}))
		})

		DescribeTable("rejects invalid configuration",
			func(cfg tracer.Config) {
				sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())
				_, err := sim.Run(ctx, ringOfParticles(dev, 2), cfg, sink)
				Expect(err).To(MatchError(tracer.ErrInvalidConfig))
				Expect(sink.steps).To(BeEmpty())
			},
			Entry("negative steps", tracer.Config{Steps: -1, StepSize: 0.01, WriteFrequency: 1}),
			Entry("zero step size", tracer.Config{Steps: 1, StepSize: 0, WriteFrequency: 1}),
			Entry("negative step size", tracer.Config{Steps: 1, StepSize: -0.01, WriteFrequency: 1}),
			Entry("zero write frequency", tracer.Config{Steps: 1, StepSize: 0.01, WriteFrequency: 0}),
		)

		It("rejects an empty particle set", func() {
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())
			_, err := sim.Run(ctx, nil, tracer.Config{Steps: 1, StepSize: 0.01, WriteFrequency: 1}, sink)
			Expect(err).To(MatchError(tracer.ErrNoParticles))
		})
	})

	Describe("observers", func() {
		It("are notified once per step", func() {
			counter := &stepCounter{}
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewEuler())
			sim.AddObserver(counter)

			_, err := sim.Run(ctx, ringOfParticles(dev, 2), tracer.Config{Steps: 5, StepSize: 0.001, WriteFrequency: 10}, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(counter.steps).To(Equal([]int{1, 2, 3, 4, 5}))
		})

		It("feed confinement metrics", func() {
			recorder := metrics.NewRecorder(dev, 2)
			sim := tracer.New(dev, torusEvaluator(dev), integrators.NewRK4())
			sim.AddObserver(recorder)

			_, err := sim.Run(ctx, ringOfParticles(dev, 4), tracer.Config{Steps: 6, StepSize: 0.001, WriteFrequency: 3}, sink)

			Expect(err).NotTo(HaveOccurred())
			samples := recorder.Samples()
			Expect(samples).To(HaveLen(3))
			Expect(samples[2].Step).To(Equal(6))
			Expect(samples[2].Active).To(Equal(4))
			Expect(samples[2].MaxOffset).To(BeNumerically("<", dev.MinorRadius))
		})
	})
})
