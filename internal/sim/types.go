package sim

import (
	"fmt"

	"github.com/san-kum/secular/internal/dynamo"
)

// Status is the state of an integration run.
type Status int

const (
	Running Status = iota
	StepRejected
	Sampling
	MaxIterationAborted
	Finished
)

var statusNames = [...]string{"running", "step-rejected", "sampling", "max-iteration", "finished"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Termination reports whether an accepted state ends the run early.
type Termination func(x dynamo.State, t float64) bool

// Observer sees the initial state and every accepted state.
type Observer interface {
	Observe(x dynamo.State, t float64) error
}

type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Config holds the run-level integration settings.
type Config struct {
	InitialDt   float64
	MaxAttempts int
}

const (
	DefaultInitialDt   = 0.1
	DefaultMaxAttempts = 500
)

func DefaultConfig() Config {
	return Config{InitialDt: DefaultInitialDt, MaxAttempts: DefaultMaxAttempts}
}

func (c Config) Validate() error {
	if !(c.InitialDt > 0) {
		return fmt.Errorf("initial dt must be positive, got %g", c.InitialDt)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

type Result struct {
	Status   Status
	Time     float64
	State    dynamo.State
	Steps    int
	Rejected int
	Stopped  bool
	Metrics  map[string]float64
}
