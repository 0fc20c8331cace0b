package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/solctra/internal/config"
	"github.com/san-kum/solctra/internal/experiment"
	"github.com/san-kum/solctra/internal/metrics"
	"github.com/san-kum/solctra/internal/tracer"
	"github.com/san-kum/solctra/internal/viz"
)

// resolveConfig layers the run configuration: defaults or the config file,
// then the preset, then flags given on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("resource-path") || cfg.ResourcePath == "" {
		cfg.ResourcePath = resourcePath
	}
	if flags.Changed("particles-file") || cfg.ParticlesFile == "" {
		cfg.ParticlesFile = particlesFile
	}
	if flags.Changed("output") || cfg.Output == "" {
		cfg.Output = output
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("step-size") {
		cfg.StepSize = stepSize
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("magprof") {
		cfg.MagProf = magProf
	}
	if flags.Changed("num-particles") {
		cfg.NumParticles = numParticles
	}
	if flags.Changed("phi-angle") {
		cfg.PhiAngle = phiAngle
	}
	if flags.Changed("dimension") {
		cfg.Dimension = dimension
	}
	if flags.Changed("write-frequency") {
		cfg.WriteFrequency = writeFrequency
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("compress") {
		cfg.Compress = compress
	}

	return cfg, cfg.Validate()
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger()
	logger.Printf("config: %+v", *cfg)

	exp := experiment.New(cfg)
	if !live {
		exp.SetLogger(logger)
	}
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("tracing %d particles for %d steps...\n", len(exp.Particles()), cfg.Steps)
	start := time.Now()

	var result *tracer.Result
	if live {
		result, err = runLive(ctx, exp, cfg)
	} else {
		result, err = exp.Run(ctx)
	}
	if result != nil {
		printSummary(result, cfg, exp.Confinement().Samples(), time.Since(start))
	}
	return err
}

func runLive(ctx context.Context, exp *experiment.Experiment, cfg *config.Config) (*tracer.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := viz.NewProgress("solctra", cfg.Steps, len(exp.Particles()), cancel)
	p := tea.NewProgram(model)

	every := cfg.Steps / 200
	exp.GetSimulator().AddObserver(viz.NewFeed(p, every))

	type outcome struct {
		result *tracer.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := exp.Run(ctx)
		p.Send(viz.DoneMsg{Result: res, Err: err})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	out := <-done
	return out.result, out.err
}

func printSummary(result *tracer.Result, cfg *config.Config, samples []metrics.Sample, elapsed time.Duration) {
	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, elapsed)
	fmt.Printf("output: %s\n", cfg.Output)
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	fmt.Printf("active: %d\n", result.Active)
	fmt.Printf("diverged: %d\n", result.Diverged)
	if len(samples) == 0 {
		return
	}
	last := samples[len(samples)-1]
	fmt.Printf("survival: %.3f (step %d)\n", last.Survival(), last.Step)
	fmt.Printf("mean offset: %.6f m\n", last.MeanOffset)
	if len(samples) > 1 {
		fmt.Println(viz.Sparkline(metrics.Series(samples, metrics.ActiveCount), 0, float64(last.Total()), 40))
	}
}
