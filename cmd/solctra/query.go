package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/solctra/internal/coil"
	"github.com/san-kum/solctra/internal/config"
	"github.com/san-kum/solctra/internal/experiment"
	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/integrators"
	"github.com/san-kum/solctra/internal/storage"
	"github.com/san-kum/solctra/internal/vec"
)

func parsePoint(args []string) (vec.Vector3, error) {
	var c [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return vec.Vector3{}, fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		c[i] = v
	}
	return vec.New(c[0], c[1], c[2]), nil
}

func presetDevice() (field.Device, error) {
	if preset == "" {
		return field.SCR1(), nil
	}
	p := config.GetPreset(preset)
	if p == nil {
		return field.Device{}, fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownPreset, preset, config.ListPresets())
	}
	return p.Device, nil
}

func loadField() (*experiment.Field, field.Device, error) {
	dev, err := presetDevice()
	if err != nil {
		return nil, dev, err
	}
	f, err := experiment.LoadField(resourcePath, dev)
	if err != nil {
		return nil, dev, err
	}
	newLogger().Printf("loaded %d coils (%d segments)", len(f.Coils), f.Evaluator.Segments())
	return f, dev, nil
}

func queryField(cmd *cobra.Command, args []string) error {
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	f, dev, err := loadField()
	if err != nil {
		return err
	}

	b := f.Evaluator.At(p)
	fmt.Printf("B:        %s T\n", b)
	fmt.Printf("|B|:      %g T\n", b.Norm())
	fmt.Printf("offset:   %g m\n", dev.AxisOffset(p))
	fmt.Printf("confined: %v\n", dev.Contains(p))
	return nil
}

func stepPoint(cmd *cobra.Command, args []string) error {
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	if stepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %g", stepSize)
	}
	integ, err := experiment.NewRegistry().GetIntegrator(integrator)
	if err != nil {
		return err
	}
	f, dev, err := loadField()
	if err != nil {
		return err
	}

	next, ok := integrators.Step(integ, f.Evaluator, dev, p, stepSize)
	if !ok {
		fmt.Printf("diverged (%s)\n", next)
		return nil
	}
	fmt.Println(next)
	return nil
}

// generateCoils writes evenly spaced circular coils around the device axis.
func generateCoils(cmd *cobra.Command, args []string) error {
	dir := args[0]
	dev, err := presetDevice()
	if err != nil {
		return err
	}
	if coilCount < 1 || coilSamples < 3 {
		return fmt.Errorf("need at least 1 coil with 3 samples, got %d coils with %d samples", coilCount, coilSamples)
	}

	set := coil.Torus(dev.MajorRadius, coilRadius, coilCount, coilSamples)
	if err := storage.WriteCoilDir(dir, set); err != nil {
		return err
	}
	fmt.Printf("wrote %d coils to %s\n", len(set), dir)

	if particleCount <= 0 {
		return nil
	}

	// particles evenly spread along the outboard mid-plane inside the device
	points := make([]vec.Vector3, particleCount)
	span := 0.9 * dev.MinorRadius
	for i := range points {
		r := dev.MajorRadius + span*float64(i)/float64(particleCount)
		points[i] = vec.New(r, 0, 0)
	}
	path := generatedParticlesPath(dir, particlesFile)
	if err := storage.WritePoints(path, points); err != nil {
		return err
	}
	fmt.Printf("wrote %d particles to %s\n", len(points), path)
	return nil
}

// generatedParticlesPath places the particle file beside the coil directory,
// never inside it, where it would load as another coil.
func generatedParticlesPath(dir, override string) string {
	if override != "" {
		return override
	}
	return filepath.Clean(dir) + "_particles.csv"
}
