package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Beat      BeatConfig      `yaml:"beat"`
	Indicator IndicatorConfig `yaml:"indicator"`
	HRV       HRVConfig       `yaml:"hrv"`
	Report    ReportConfig    `yaml:"report"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains the fixed-rate acquisition parameters.
type SamplingConfig struct {
	RateHz       int `yaml:"rate_hz"`       // analog sampling rate
	RingCapacity int `yaml:"ring_capacity"` // sample ring slots
}

// BeatConfig contains heart-rate estimator parameters.
type BeatConfig struct {
	Window        int `yaml:"window"`          // moving-average window in beats
	Warmup        int `yaml:"warmup"`          // beats before readings are reported
	MinIntervalMS int `yaml:"min_interval_ms"` // refractory floor, 0 = disabled
}

// IndicatorConfig contains the threshold driving the indicator output.
type IndicatorConfig struct {
	Threshold uint16 `yaml:"threshold"`
}

// HRVConfig contains interval analytics parameters.
type HRVConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // interval history window
}

// ReportConfig contains reporter destinations.
type ReportConfig struct {
	CSVPath string `yaml:"csv_path"` // empty = no recording
	Listen  string `yaml:"listen"`   // websocket listen address, empty = disabled
	Batch   int    `yaml:"batch"`    // samples per websocket frame
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	BPM        float64       `yaml:"bpm"`         // simulated heart rate
	Baseline   float64       `yaml:"baseline"`    // ADC counts at rest
	Amplitude  float64       `yaml:"amplitude"`   // pulse height in ADC counts
	NoiseLevel float64       `yaml:"noise_level"` // noise in ADC counts
	SampleRate time.Duration `yaml:"sample_rate"` // interval between samples
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			RateHz:       100, // 10 ms period
			RingCapacity: 64,
		},
		Beat: BeatConfig{
			Window:        5,
			Warmup:        5,
			MinIntervalMS: 0,
		},
		Indicator: IndicatorConfig{
			Threshold: 700,
		},
		HRV: HRVConfig{
			WindowSeconds: 60,
		},
		Report: ReportConfig{
			CSVPath: "",
			Listen:  "",
			Batch:   10,
		},
		Mock: MockConfig{
			BPM:        72,
			Baseline:   1800,
			Amplitude:  1400,
			NoiseLevel: 8,
			SampleRate: 10 * time.Millisecond, // 100 samples per second
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
			// File doesn't exist, return defaults
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

// Validate rejects configurations the pipeline cannot run with. These are
// construction-time fatals, not recoverable conditions.
func (c *Config) Validate() error {
	if c.Sampling.RateHz <= 0 {
		return fmt.Errorf("sampling rate must be positive, got %d Hz", c.Sampling.RateHz)
	}
	if c.Sampling.RingCapacity < 1 {
		return fmt.Errorf("ring capacity must be at least 1, got %d", c.Sampling.RingCapacity)
	}
	if c.Beat.Window < 1 {
		return fmt.Errorf("beat window must be at least 1, got %d", c.Beat.Window)
	}
	if c.Beat.Warmup < 0 {
		return fmt.Errorf("beat warm-up must not be negative, got %d", c.Beat.Warmup)
	}
	if c.Beat.MinIntervalMS < 0 {
		return fmt.Errorf("minimum beat interval must not be negative, got %d ms", c.Beat.MinIntervalMS)
	}
	if c.Indicator.Threshold > 4095 {
		return fmt.Errorf("indicator threshold out of ADC range: %d (max 4095)", c.Indicator.Threshold)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.RateHz == 0 {
		c.Sampling.RateHz = def.Sampling.RateHz
	}
	if c.Sampling.RingCapacity == 0 {
		c.Sampling.RingCapacity = def.Sampling.RingCapacity
	}

	if c.Beat.Window == 0 {
		c.Beat.Window = def.Beat.Window
	}
	if c.Beat.Warmup == 0 {
		c.Beat.Warmup = def.Beat.Warmup
	}

	if c.Indicator.Threshold == 0 {
		c.Indicator.Threshold = def.Indicator.Threshold
	}

	if c.HRV.WindowSeconds == 0 {
		c.HRV.WindowSeconds = def.HRV.WindowSeconds
	}

	if c.Report.Batch == 0 {
		c.Report.Batch = def.Report.Batch
	}

	if c.Mock.BPM == 0 {
		c.Mock.BPM = def.Mock.BPM
	}
	if c.Mock.Baseline == 0 {
		c.Mock.Baseline = def.Mock.Baseline
	}
	if c.Mock.Amplitude == 0 {
		c.Mock.Amplitude = def.Mock.Amplitude
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
