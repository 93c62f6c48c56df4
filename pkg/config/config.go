package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/thermtable/pkg/table"
	"github.com/itohio/thermtable/pkg/thermistor"
)

// DefaultT0 is the reference temperature thermistors are usually rated at.
const DefaultT0 = 25.0

// Config represents the application configuration.
type Config struct {
	Thermistor     ThermistorConfig     `yaml:"thermistor"`
	VoltageDivider VoltageDividerConfig `yaml:"voltage_divider"`
	ADC            ADCConfig            `yaml:"adc"`
	Table          TableConfig          `yaml:"table"`
	Serial         SerialConfig         `yaml:"serial"`
	Monitor        MonitorConfig        `yaml:"monitor"`
}

// ThermistorConfig describes the sensor. Explicit values override the preset.
type ThermistorConfig struct {
	Preset string   `yaml:"preset"`
	R0     float64  `yaml:"r0"`           // Resistance at T0 (ohms)
	T0     *float64 `yaml:"t0,omitempty"` // Temperature at R0 (°C), preset or 25 when unset
	Beta   float64  `yaml:"beta"`         // Beta coefficient (K)
}

// VoltageDividerConfig contains voltage divider configuration.
type VoltageDividerConfig struct {
	R1  float64 `yaml:"r1"` // Optional low-side resistor (ohms), 0 = none
	R2  float64 `yaml:"r2"` // High-side pullup (ohms)
	VCC float64 `yaml:"vcc"`
}

// ADCConfig contains converter parameters.
type ADCConfig struct {
	VRef   float64 `yaml:"vref"`
	Steps  int     `yaml:"steps"`   // Number of codes, 1024 for a 10-bit ADC
	MaxADC int     `yaml:"max_adc"` // Highest code sampled without R1, 0 = steps-1
}

// TableConfig contains lookup table generation parameters.
type TableConfig struct {
	Points     int    `yaml:"points"`
	Name       string `yaml:"name"`
	Oversample string `yaml:"oversample"`
	Progmem    bool   `yaml:"progmem"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MonitorConfig contains live monitoring parameters.
type MonitorConfig struct {
	AverageSamples int        `yaml:"average_samples"` // Number of codes to average (0 = disabled)
	Mock           MockConfig `yaml:"mock"`
}

// MockConfig contains mock ADC source configuration.
type MockConfig struct {
	StartTemperature float64       `yaml:"start_temperature"` // °C
	EndTemperature   float64       `yaml:"end_temperature"`   // °C
	RampPeriod       time.Duration `yaml:"ramp_period"`       // Time to go from start to end
	SampleRate       time.Duration `yaml:"sample_rate"`
	Noise            int           `yaml:"noise"` // Peak noise in ADC codes
}

// Default returns a default configuration: an EPCOS 100K thermistor on a
// 4.7K pullup read by a 10-bit ADC.
func Default() *Config {
	return &Config{
		Thermistor: ThermistorConfig{
			Preset: "epcos-100k",
		},
		VoltageDivider: VoltageDividerConfig{
			R2:  4700,
			VCC: thermistor.DefaultVoltage,
		},
		ADC: ADCConfig{
			VRef:  thermistor.DefaultVoltage,
			Steps: thermistor.DefaultSteps,
		},
		Table: TableConfig{
			Points:     20,
			Oversample: table.DefaultOversample,
		},
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Monitor: MonitorConfig{
			AverageSamples: 0,
			Mock: MockConfig{
				StartTemperature: 25,
				EndTemperature:   250,
				RampPeriod:       60 * time.Second,
				SampleRate:       100 * time.Millisecond,
				Noise:            2,
			},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Parameters resolves the preset and explicit values into model parameters.
func (c *Config) Parameters() (thermistor.Parameters, error) {
	p := thermistor.Parameters{
		R0:    c.Thermistor.R0,
		T0:    DefaultT0,
		Beta:  c.Thermistor.Beta,
		R1:    c.VoltageDivider.R1,
		R2:    c.VoltageDivider.R2,
		VADC:  c.ADC.VRef,
		VCC:   c.VoltageDivider.VCC,
		Steps: c.ADC.Steps,
	}

	if c.Thermistor.Preset != "" {
		preset, err := LookupPreset(c.Thermistor.Preset)
		if err != nil {
			return thermistor.Parameters{}, err
		}
		if p.R0 == 0 {
			p.R0 = preset.R0
		}
		if p.Beta == 0 {
			p.Beta = preset.Beta
		}
		p.T0 = preset.T0
	}

	if c.Thermistor.T0 != nil {
		p.T0 = *c.Thermistor.T0
	}

	return p, nil
}

// Model builds a thermistor model from the configuration.
func (c *Config) Model() (*thermistor.Model, error) {
	p, err := c.Parameters()
	if err != nil {
		return nil, err
	}
	return thermistor.New(p)
}

// MaxADC returns the highest ADC code to sample for m: the divider saturation
// point when there is a low-side resistor, the configured ceiling otherwise.
func (c *Config) MaxADC(m *thermistor.Model) int {
	if m.Parameters().R1 > 0 || c.ADC.MaxADC == 0 {
		return m.MaxADC()
	}
	return c.ADC.MaxADC
}

// ensureDefaults ensures that all required fields have default values if missing.
// Divider resistors and thermistor constants are left alone: zero is either
// meaningful (R1) or a missing value the model must reject.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.VoltageDivider.VCC == 0 {
		c.VoltageDivider.VCC = def.VoltageDivider.VCC
	}

	if c.ADC.VRef == 0 {
		c.ADC.VRef = def.ADC.VRef
	}
	if c.ADC.Steps == 0 {
		c.ADC.Steps = def.ADC.Steps
	}

	if c.Table.Points == 0 {
		c.Table.Points = def.Table.Points
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Monitor.Mock.SampleRate == 0 {
		c.Monitor.Mock.SampleRate = def.Monitor.Mock.SampleRate
	}
	if c.Monitor.Mock.RampPeriod == 0 {
		c.Monitor.Mock.RampPeriod = def.Monitor.Mock.RampPeriod
	}
}
