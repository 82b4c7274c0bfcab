// CLAUDE:SUMMARY Defines imgwidths config structs, parses YAML files, applies defaults and validates the run surface.
// Package config handles imgwidths configuration from YAML files and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level imgwidths configuration.
type Config struct {
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`

	ContextsFile   string `yaml:"contexts_file"`
	VariationsFile string `yaml:"variations_file"` // viewport → image width CSV
	DestFile       string `yaml:"dest_file"`       // demand distribution CSV
	SrcsetFile     string `yaml:"srcset_file"`
	ChartFile      string `yaml:"chart_file"` // .png / .svg / .pdf
	DBPath         string `yaml:"db_path"`

	MinViewport int     `yaml:"min_viewport"`
	MaxViewport int     `yaml:"max_viewport"`
	Coverage    float64 `yaml:"coverage"`

	Delay       time.Duration `yaml:"delay"`
	StepTimeout time.Duration `yaml:"step_timeout"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
	Height      int           `yaml:"height"`

	WidthsNumber  int    `yaml:"widths_number"`
	SrcsetPattern string `yaml:"srcset_pattern"`

	Verbose bool `yaml:"verbose"`

	Browser BrowserConfig `yaml:"browser"`
	Sinks   []SinkConfig  `yaml:"sinks"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string   `yaml:"remote"`
	Bin              string   `yaml:"bin"`
	NoSandbox        bool     `yaml:"no_sandbox"`
	Stealth          string   `yaml:"stealth"` // headless | off
	ResourceBlocking []string `yaml:"resource_blocking"`
}

// SinkConfig defines an extra output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Keys absent from the file keep their Default value; an explicit
	// "delay: 0s" disables the settle delay.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// DefaultDelay is the settle time after each viewport change.
const DefaultDelay = 500 * time.Millisecond

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Delay: DefaultDelay}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values. Delay is left alone: zero is a valid
// setting.
func (c *Config) ApplyDefaults() {
	if c.StepTimeout <= 0 {
		c.StepTimeout = 30 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Height <= 0 {
		c.Height = 10000
	}
	if c.WidthsNumber == 0 {
		c.WidthsNumber = 5
	}
	if c.Coverage == 0 {
		c.Coverage = 1
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
}

// Validate checks everything a run needs before Chrome is started.
func (c *Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Selector == "" {
		errs = append(errs, errors.New("selector is required"))
	}
	if c.ContextsFile == "" {
		errs = append(errs, errors.New("contexts_file is required"))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must be >= 0, got %s", c.Delay))
	}
	if c.WidthsNumber < 1 {
		errs = append(errs, fmt.Errorf("widths_number must be >= 1, got %d", c.WidthsNumber))
	}
	if c.MinViewport < 0 || c.MaxViewport < 0 {
		errs = append(errs, errors.New("viewport bounds must be positive"))
	}
	if c.MinViewport > 0 && c.MaxViewport > 0 && c.MinViewport > c.MaxViewport {
		errs = append(errs, fmt.Errorf("min_viewport %d > max_viewport %d", c.MinViewport, c.MaxViewport))
	}
	if c.Coverage < 0 || c.Coverage > 1 {
		errs = append(errs, fmt.Errorf("coverage must be in [0, 1], got %g", c.Coverage))
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("sinks[%d]: webhook needs url", i))
			}
		default:
			errs = append(errs, fmt.Errorf("sinks[%d]: unknown type %q", i, s.Type))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
