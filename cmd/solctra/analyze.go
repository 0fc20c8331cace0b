package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/solctra/internal/config"
	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/metrics"
	"github.com/san-kum/solctra/internal/storage"
	"github.com/san-kum/solctra/internal/viz"
)

// runDevice returns the device recorded with a run, falling back to SCR-1
// for directories written without metadata.
func runDevice(st *storage.Store) (field.Device, error) {
	meta, err := st.LoadMetadata()
	if errors.Is(err, fs.ErrNotExist) {
		return field.SCR1(), nil
	}
	if err != nil {
		return field.Device{}, err
	}
	return meta.Device, nil
}

func loadSamples(dir string) ([]metrics.Sample, error) {
	st := storage.New(dir)
	dev, err := runDevice(st)
	if err != nil {
		return nil, err
	}
	return metrics.FromStore(st, dev)
}

func showStats(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTIVE\tDIVERGED\tSURVIVAL\tMEAN OFFSET\tSTD OFFSET\tMAX OFFSET")
	for _, s := range samples {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%.6f\t%.6f\t%.6f\n",
			s.Step, s.Active, s.Diverged, s.Survival(), s.MeanOffset, s.StdOffset, s.MaxOffset)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	first, last := samples[0].Step, samples[len(samples)-1].Step
	fmt.Printf("%d snapshots, steps %d to %d\n\n", len(samples), first, last)

	fmt.Println(viz.PlotSeries(metrics.Series(samples, metrics.ActiveCount), "active particles", 10, 80))
	fmt.Println()
	fmt.Println(viz.PlotSeries(metrics.Series(samples, metrics.MeanOffset), "mean axis offset (m)", 10, 80))
	fmt.Println()
	fmt.Println(viz.PlotSeries(metrics.Series(samples, metrics.MaxOffset), "max axis offset (m)", 10, 80))
	return nil
}

func renderSnapshot(cmd *cobra.Command, args []string) error {
	st := storage.New(args[0])
	dev, err := runDevice(st)
	if err != nil {
		return err
	}
	proj, err := viz.ParseProjection(projection)
	if err != nil {
		return err
	}

	step := snapStep
	if step < 0 {
		steps, err := st.Snapshots()
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			return fmt.Errorf("no snapshots in %s", st.Dir())
		}
		step = steps[len(steps)-1]
	}

	positions, err := st.LoadSnapshot(step)
	if err != nil {
		return err
	}
	sample := metrics.FromPositions(dev, step, positions)

	if imageOut != "" {
		title := fmt.Sprintf("step %d: %d active, %d diverged", step, sample.Active, sample.Diverged)
		if err := viz.RenderCrossSection(imageOut, positions, dev, proj, title); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", imageOut)
		return nil
	}

	if proj != viz.Poloidal {
		return fmt.Errorf("terminal rendering supports the rz projection only; use --image for %s", proj)
	}
	fmt.Print(viz.CrossSection(positions, dev, 60, 30))
	fmt.Printf("step %d: %d active, %d diverged\n", step, sample.Active, sample.Diverged)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMINOR\tMAJOR\tCURRENT\tSTEPS\tSTEP SIZE\tWRITE FREQ\tINTEGRATOR")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%d\t%g\t%d\t%s\n",
			name, p.Device.MinorRadius, p.Device.MajorRadius, p.Device.Current,
			p.Steps, p.StepSize, p.WriteFrequency, p.Integrator)
	}
	return w.Flush()
}
