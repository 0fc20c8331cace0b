package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/solctra/internal/config"
)

var (
	resourcePath   string
	particlesFile  string
	output         string
	steps          int
	stepSize       float64
	precision      int
	length         int
	mode           int
	magProf        int
	numParticles   int
	phiAngle       int
	dimension      int
	writeFrequency int
	workers        int
	integrator     string
	compress       bool
	// Config file and preset
	configFile string
	preset     string
	// Live progress view
	live    bool
	verbose bool
	// Post-processing
	projection string
	snapStep   int
	imageOut   string
	// Coil generation
	coilCount     int
	coilSamples   int
	coilRadius    float64
	particleCount int
)

// main registers the solctra commands and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "solctra",
		Short:        "magnetic field line tracer for toroidal confinement devices",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "trace particles through the coil field and write snapshots",
		Args:  cobra.NoArgs,
		RunE:  runTrace,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress")

	fieldCmd := &cobra.Command{
		Use:   "field x y z",
		Short: "evaluate the magnetic field at a point",
		Args:  cobra.ExactArgs(3),
		RunE:  queryField,
	}
	addFieldFlags(fieldCmd)

	stepCmd := &cobra.Command{
		Use:   "step x y z",
		Short: "advance a single point by one integrator step",
		Args:  cobra.ExactArgs(3),
		RunE:  stepPoint,
	}
	addFieldFlags(stepCmd)
	stepCmd.Flags().Float64Var(&stepSize, "step-size", config.DefaultStepSize, "size of time step")
	stepCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")

	generateCmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "write a synthetic toroidal coil set and particle file",
		Args:  cobra.ExactArgs(1),
		RunE:  generateCoils,
	}
	generateCmd.Flags().IntVar(&coilCount, "coils", 12, "number of coils")
	generateCmd.Flags().IntVar(&coilSamples, "samples", 360, "points per coil")
	generateCmd.Flags().Float64Var(&coilRadius, "coil-radius", 0.12, "coil radius (m)")
	generateCmd.Flags().IntVar(&particleCount, "particles", 0, "also write this many particles on the mid-plane")
	generateCmd.Flags().StringVarP(&particlesFile, "particles-file", "p", "", "particle file to write (default: <dir>_particles.csv)")
	generateCmd.Flags().StringVar(&preset, "preset", "", "device preset")

	statsCmd := &cobra.Command{
		Use:   "stats [output_dir]",
		Short: "confinement statistics per snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  showStats,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [output_dir]",
		Short: "plot confinement over the run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [output_dir]",
		Short: "draw a snapshot cross-section",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSnapshot,
	}
	renderCmd.Flags().IntVar(&snapStep, "step", -1, "snapshot step (default: last)")
	renderCmd.Flags().StringVar(&projection, "projection", "rz", "projection (rz, xy)")
	renderCmd.Flags().StringVar(&imageOut, "image", "", "write an image (png, svg, pdf) instead of terminal output")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available device presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, fieldCmd, stepCmd, generateCmd, statsCmd, plotCmd, renderCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&resourcePath, "resource-path", "r", "", "path to resource folder")
	f.StringVarP(&particlesFile, "particles-file", "p", "", "particles file")
	f.StringVarP(&output, "output", "o", "", "output directory")
	f.IntVar(&steps, "steps", def.Steps, "total simulation steps")
	f.Float64Var(&stepSize, "step-size", def.StepSize, "size of time step")
	f.IntVar(&precision, "precision", def.Precision, "precision to use")
	f.IntVar(&length, "length", def.Length, "total particles to use")
	f.IntVar(&mode, "mode", def.Mode, "mode to run")
	f.IntVar(&magProf, "magprof", def.MagProf, "magnetic profile")
	f.IntVar(&numParticles, "num-particles", def.NumParticles, "maximum particles to load (0: all)")
	f.IntVar(&phiAngle, "phi-angle", def.PhiAngle, "phi angle")
	f.IntVar(&dimension, "dimension", def.Dimension, "dimension")
	f.IntVarP(&writeFrequency, "write-frequency", "w", def.WriteFrequency, "how often to write output files")
	f.IntVar(&workers, "workers", def.Workers, "worker goroutines (0: one per CPU)")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator (rk4, euler)")
	f.BoolVar(&compress, "compress", def.Compress, "gzip snapshot files")
	f.StringVar(&configFile, "config", "", "config file path (yaml, ini)")
	f.StringVar(&preset, "preset", "", "use device preset")
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&resourcePath, "resource-path", "r", "", "path to resource folder")
	cmd.Flags().StringVar(&preset, "preset", "", "device preset")
	cmd.MarkFlagRequired("resource-path")
}

func newLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "solctra: ", log.LstdFlags)
}
