package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/secular/internal/integrators"
	"github.com/san-kum/secular/internal/secular"
	"github.com/san-kum/secular/internal/sim"
)

const (
	DefaultTolerance = 1e-13
	DefaultStepper   = "bulirsch-stoer"
	DefaultPrecision = 12
	DefaultWorkers   = "auto"
)

// Config is the run-level configuration. Every task in a run shares it.
type Config struct {
	Tolerance   integrators.Tolerance `yaml:",inline"`
	InitialDt   float64               `yaml:"initial_dt"`
	MaxAttempts int                   `yaml:"max_attempts"`
	Stepper     string                `yaml:"stepper"`
	// StopAIn is the inner semi-major axis (AU) at which a task ends early.
	// Zero disables it.
	StopAIn   float64 `yaml:"stop_a_in"`
	GROuter   bool    `yaml:"gr_outer"`
	Precision int     `yaml:"precision"`
	Workers   string  `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Tolerance:   integrators.Tolerance{Abs: DefaultTolerance, Rel: DefaultTolerance},
		InitialDt:   sim.DefaultInitialDt,
		MaxAttempts: sim.DefaultMaxAttempts,
		Stepper:     DefaultStepper,
		Precision:   DefaultPrecision,
		Workers:     DefaultWorkers,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Tolerance.Validate(); err != nil {
		return err
	}
	if err := c.Sim().Validate(); err != nil {
		return err
	}
	if _, err := integrators.Lookup(c.Stepper); err != nil {
		return err
	}
	if c.StopAIn < 0 {
		return fmt.Errorf("stop_a_in must not be negative, got %g", c.StopAIn)
	}
	if c.Precision < 1 || c.Precision > 17 {
		return fmt.Errorf("precision must be in [1,17], got %d", c.Precision)
	}
	return nil
}

func (c *Config) Sim() sim.Config {
	return sim.Config{InitialDt: c.InitialDt, MaxAttempts: c.MaxAttempts}
}

func (c *Config) Options() secular.Options {
	return secular.Options{GROuter: c.GROuter}
}

func toleranceOf(v float64) integrators.Tolerance {
	return integrators.Tolerance{Abs: v, Rel: v}
}
