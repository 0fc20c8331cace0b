package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/solctra/internal/field"
)

// Preset bundles a device with integration settings.
type Preset struct {
	Device         field.Device
	Steps          int
	StepSize       float64
	WriteFrequency int
	Integrator     string
}

func reversed(d field.Device) field.Device {
	d.Current = -d.Current
	return d
}

var Presets = map[string]Preset{
	"scr1": {
		Device: field.SCR1(), Steps: 10000, StepSize: 0.001, WriteFrequency: 10, Integrator: "rk4",
	},
	"scr1-quick": {
		Device: field.SCR1(), Steps: 1000, StepSize: 0.01, WriteFrequency: 100, Integrator: "rk4",
	},
	"scr1-reversed": {
		Device: reversed(field.SCR1()), Steps: 10000, StepSize: 0.001, WriteFrequency: 10, Integrator: "rk4",
	},
	"scr1-euler": {
		Device: field.SCR1(), Steps: 10000, StepSize: 0.0005, WriteFrequency: 20, Integrator: "euler",
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overwrites the device and integration settings of c.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	c.Device = p.Device
	c.Steps = p.Steps
	c.StepSize = p.StepSize
	c.WriteFrequency = p.WriteFrequency
	c.Integrator = p.Integrator
	return nil
}
