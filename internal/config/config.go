package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/tracer"
)

const (
	DefaultSteps          = 10000
	DefaultStepSize       = 0.001
	DefaultWriteFrequency = 10
	DefaultPrecision      = 5
	DefaultLength         = 1
	DefaultMode           = 1
	DefaultDimension      = 1
	DefaultIntegrator     = "rk4"
)

var (
	ErrUnknownFormat = errors.New("config: unknown config file format")
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid value")
)

// Config is the flat run parameter set. Precision, Length, Mode, MagProf,
// PhiAngle and Dimension are accepted and recorded but do not affect the
// tracer.
type Config struct {
	ResourcePath   string       `yaml:"resource_path"`
	ParticlesFile  string       `yaml:"particles_file"`
	Output         string       `yaml:"output"`
	Steps          int          `yaml:"steps"`
	StepSize       float64      `yaml:"step_size"`
	WriteFrequency int          `yaml:"write_frequency"`
	NumParticles   int          `yaml:"num_particles"`
	Workers        int          `yaml:"workers"`
	Integrator     string       `yaml:"integrator"`
	Compress       bool         `yaml:"compress"`
	Precision      int          `yaml:"precision"`
	Length         int          `yaml:"length"`
	Mode           int          `yaml:"mode"`
	MagProf        int          `yaml:"magprof"`
	PhiAngle       int          `yaml:"phi_angle"`
	Dimension      int          `yaml:"dimension"`
	Device         field.Device `yaml:"device"`
}

func DefaultConfig() *Config {
	return &Config{
		Steps:          DefaultSteps,
		StepSize:       DefaultStepSize,
		WriteFrequency: DefaultWriteFrequency,
		Integrator:     DefaultIntegrator,
		Precision:      DefaultPrecision,
		Length:         DefaultLength,
		Mode:           DefaultMode,
		Dimension:      DefaultDimension,
		Device:         field.SCR1(),
	}
}

// Load reads a config file, choosing the decoder from the extension:
// .yaml/.yml for YAML, .ini/.gcfg/.cfg for git-config style files with
// [run] and [device] sections. Unset keys keep their defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".ini", ".gcfg", ".cfg":
		return loadGcfg(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

type gcfgFile struct {
	Run struct {
		ResourcePath   string `gcfg:"resource-path"`
		ParticlesFile  string `gcfg:"particles-file"`
		Output         string
		Steps          int
		StepSize       float64 `gcfg:"step-size"`
		WriteFrequency int     `gcfg:"write-frequency"`
		NumParticles   int     `gcfg:"num-particles"`
		Workers        int
		Integrator     string
		Compress       bool
		Precision      int
		Length         int
		Mode           int
		MagProf        int
		PhiAngle       int `gcfg:"phi-angle"`
		Dimension      int
	}
	Device struct {
		MinorRadius  float64 `gcfg:"minor-radius"`
		MajorRadius  float64 `gcfg:"major-radius"`
		Permeability float64
		Current      float64
	}
}

func loadGcfg(path string) (*Config, error) {
	var f gcfgFile
	def := DefaultConfig()
	f.Run.Steps = def.Steps
	f.Run.StepSize = def.StepSize
	f.Run.WriteFrequency = def.WriteFrequency
	f.Run.Integrator = def.Integrator
	f.Run.Precision = def.Precision
	f.Run.Length = def.Length
	f.Run.Mode = def.Mode
	f.Run.Dimension = def.Dimension
	f.Device.MinorRadius = def.Device.MinorRadius
	f.Device.MajorRadius = def.Device.MajorRadius
	f.Device.Permeability = def.Device.Permeability
	f.Device.Current = def.Device.Current

	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Config{
		ResourcePath:   f.Run.ResourcePath,
		ParticlesFile:  f.Run.ParticlesFile,
		Output:         f.Run.Output,
		Steps:          f.Run.Steps,
		StepSize:       f.Run.StepSize,
		WriteFrequency: f.Run.WriteFrequency,
		NumParticles:   f.Run.NumParticles,
		Workers:        f.Run.Workers,
		Integrator:     f.Run.Integrator,
		Compress:       f.Run.Compress,
		Precision:      f.Run.Precision,
		Length:         f.Run.Length,
		Mode:           f.Run.Mode,
		MagProf:        f.Run.MagProf,
		PhiAngle:       f.Run.PhiAngle,
		Dimension:      f.Run.Dimension,
		Device: field.Device{
			MinorRadius:  f.Device.MinorRadius,
			MajorRadius:  f.Device.MajorRadius,
			Permeability: f.Device.Permeability,
			Current:      f.Device.Current,
		},
	}, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the tracer needs before any work starts.
func (c *Config) Validate() error {
	switch {
	case c.ResourcePath == "":
		return fmt.Errorf("%w: resource path is required", ErrInvalid)
	case c.ParticlesFile == "":
		return fmt.Errorf("%w: particles file is required", ErrInvalid)
	case c.Output == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalid)
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalid, c.Steps)
	case c.StepSize <= 0:
		return fmt.Errorf("%w: step size must be positive, got %g", ErrInvalid, c.StepSize)
	case c.WriteFrequency <= 0:
		return fmt.Errorf("%w: write frequency must be positive, got %d", ErrInvalid, c.WriteFrequency)
	case c.NumParticles < 0:
		return fmt.Errorf("%w: particle cap must be non-negative, got %d", ErrInvalid, c.NumParticles)
	case c.Device.MinorRadius <= 0 || c.Device.MajorRadius <= 0:
		return fmt.Errorf("%w: device radii must be positive", ErrInvalid)
	case c.Device.MinorRadius >= c.Device.MajorRadius:
		return fmt.Errorf("%w: minor radius %g must be below major radius %g",
			ErrInvalid, c.Device.MinorRadius, c.Device.MajorRadius)
	}
	return nil
}

func (c *Config) TracerConfig() tracer.Config {
	return tracer.Config{
		Steps:          c.Steps,
		StepSize:       c.StepSize,
		WriteFrequency: c.WriteFrequency,
		Workers:        c.Workers,
	}
}
