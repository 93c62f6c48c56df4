package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/itohio/thermtable/pkg/thermistor"
)

// Preset is a named beta-model thermistor.
type Preset struct {
	Name        string
	Description string
	R0          float64 // Resistance at T0 (ohms)
	T0          float64 // °C
	Beta        float64 // K
}

// Presets lists common 3D printer thermistors.
var Presets = map[string]Preset{
	"epcos-100k": {
		Name:        "epcos-100k",
		Description: "EPCOS 100K B57560G104F",
		R0:          100000,
		T0:          25,
		Beta:        4092,
	},
	"ntc-100k-3950": {
		Name:        "ntc-100k-3950",
		Description: "Generic 100K NTC, beta 3950",
		R0:          100000,
		T0:          25,
		Beta:        3950,
	},
	"semitec-104gt2": {
		Name:        "semitec-104gt2",
		Description: "ATC Semitec 104GT-2",
		R0:          100000,
		T0:          25,
		Beta:        4267,
	},
	"honeywell-100k": {
		Name:        "honeywell-100k",
		Description: "Honeywell 100K 135-104LAG-J01",
		R0:          100000,
		T0:          25,
		Beta:        3974,
	},
	"epcos-10k": {
		Name:        "epcos-10k",
		Description: "EPCOS 10K B57550G103J",
		R0:          10000,
		T0:          25,
		Beta:        3435,
	},
}

// LookupPreset returns a preset by name, ignoring case.
func LookupPreset(name string) (Preset, error) {
	if p, ok := Presets[name]; ok {
		return p, nil
	}
	for key, p := range Presets {
		if strings.EqualFold(key, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: unknown thermistor preset %q", thermistor.ErrInvalidParameter, name)
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
