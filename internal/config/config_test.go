package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/san-kum/solctra/internal/field"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ResourcePath = "resources"
	cfg.ParticlesFile = "particles.csv"
	cfg.Output = "out"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Steps != 10000 {
		t.Errorf("expected 10000 steps, got %d", cfg.Steps)
	}
	if cfg.StepSize != 0.001 {
		t.Errorf("expected step size 0.001, got %g", cfg.StepSize)
	}
	if cfg.WriteFrequency != 10 {
		t.Errorf("expected write frequency 10, got %d", cfg.WriteFrequency)
	}
	if cfg.Device != field.SCR1() {
		t.Errorf("expected SCR-1 device, got %+v", cfg.Device)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected rk4, got %s", cfg.Integrator)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
resource_path: resources/coils
particles_file: particles.csv
output: out
steps: 250
write_frequency: 25
compress: true
device:
  current: 4350
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ResourcePath != "resources/coils" || cfg.Steps != 250 || cfg.WriteFrequency != 25 || !cfg.Compress {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.StepSize != DefaultStepSize {
		t.Errorf("unset step size should keep default, got %g", cfg.StepSize)
	}
	if cfg.Device.Current != 4350 || cfg.Device.MajorRadius != field.SCR1().MajorRadius {
		t.Errorf("unexpected device: %+v", cfg.Device)
	}
}

func TestLoadGcfg(t *testing.T) {
	path := writeConfig(t, "run.ini", `
[run]
resource-path = resources/coils
particles-file = particles.csv
output = out
steps = 40
step-size = 0.01
write-frequency = 4
num-particles = 100
integrator = euler

[device]
minor-radius = 0.05
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Steps != 40 || cfg.StepSize != 0.01 || cfg.WriteFrequency != 4 || cfg.NumParticles != 100 {
		t.Errorf("unexpected run section: %+v", cfg)
	}
	if cfg.Integrator != "euler" {
		t.Errorf("expected euler, got %s", cfg.Integrator)
	}
	if cfg.Device.MinorRadius != 0.05 || cfg.Device.MajorRadius != field.SCR1().MajorRadius {
		t.Errorf("unexpected device: %+v", cfg.Device)
	}
	if cfg.Precision != DefaultPrecision || cfg.Mode != DefaultMode {
		t.Errorf("unset keys should keep defaults: %+v", cfg)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeConfig(t, "run.toml", "steps = 1\n")
	if _, err := Load(path); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.NumParticles = 12
	cfg.Workers = 3
	path := filepath.Join(t.TempDir(), "saved.yaml")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero steps", func(c *Config) { c.Steps = 0 }, true},
		{"missing resources", func(c *Config) { c.ResourcePath = "" }, false},
		{"missing particles", func(c *Config) { c.ParticlesFile = "" }, false},
		{"missing output", func(c *Config) { c.Output = "" }, false},
		{"negative steps", func(c *Config) { c.Steps = -1 }, false},
		{"zero step size", func(c *Config) { c.StepSize = 0 }, false},
		{"zero write frequency", func(c *Config) { c.WriteFrequency = 0 }, false},
		{"negative cap", func(c *Config) { c.NumParticles = -5 }, false},
		{"minor above major", func(c *Config) { c.Device.MinorRadius = 1 }, false},
		{"zero radius", func(c *Config) { c.Device.MajorRadius = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestTracerConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 2
	tc := cfg.TracerConfig()
	if tc.Steps != cfg.Steps || tc.StepSize != cfg.StepSize || tc.WriteFrequency != cfg.WriteFrequency || tc.Workers != 2 {
		t.Errorf("unexpected tracer config %+v", tc)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("scr1-reversed")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Device.Current != -field.SCR1().Current {
		t.Errorf("expected reversed current, got %g", p.Device.Current)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ApplyPreset("scr1-quick"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if cfg.Steps != 1000 || cfg.StepSize != 0.01 || cfg.WriteFrequency != 100 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.ResourcePath != "resources" {
		t.Error("preset should not touch paths")
	}

	if err := cfg.ApplyPreset("missing"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}
