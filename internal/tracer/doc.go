// Package tracer advances a set of particles along the field lines of a coil
// set and hands periodic snapshots to an output sink.
//
// The package builds on the lower-level numerical packages:
//
//   - [Particle]: position plus an explicit active/diverged state
//   - [ParticleSet]: fixed-size, ordered particle array
//   - [Simulator]: the outer timestep loop
//   - [Sink]: receives a [Snapshot] at step 0 and every write-frequency steps
//   - [Observer]: per-step hook used for progress reporting and metrics
//
// # Example
//
//	eval, _ := field.NewEvaluator(dev, coils, geometry)
//	s := tracer.New(dev, eval, integrators.NewRK4())
//	res, err := s.Run(ctx, particles, cfg, sink)
//
// # Concurrency
//
// Within a step every active particle is independent, so the Simulator
// partitions the particle set into disjoint index ranges and advances them
// on cfg.Workers goroutines. The coil set and its geometry are shared
// read-only. Snapshots are taken only after every particle of the step has
// been updated, and results do not depend on the worker count.
package tracer
