package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/integrators"
)

// Controller drives a Stepper from t=0 to the end time with bounded
// retries per global step.
type Controller struct {
	stepper   integrators.Stepper
	f         dynamo.Derivative
	cfg       Config
	stop      Termination
	layout    *dynamo.Layout
	observers []Observer
	metrics   []Metric

	status Status
}

func NewController(stepper integrators.Stepper, f dynamo.Derivative, cfg Config) *Controller {
	return &Controller{
		stepper: stepper,
		f:       f,
		cfg:     cfg,
		status:  Running,
	}
}

func (c *Controller) SetTermination(stop Termination) { c.stop = stop }
func (c *Controller) AddObserver(o Observer)          { c.observers = append(c.observers, o) }
func (c *Controller) AddMetric(m Metric)              { c.metrics = append(c.metrics, m) }

// SetLayout makes Run reject initial states whose length does not match l.
func (c *Controller) SetLayout(l dynamo.Layout) { c.layout = &l }

// Status is the state the controller is in or finished in.
func (c *Controller) Status() Status { return c.status }

type resetter interface{ Reset() }

// Run integrates x0 until t ≥ tEnd or the termination predicate fires.
//
// A max-iteration abort is not an error: the Result carries status
// MaxIterationAborted and the last accepted state. Errors are reserved for
// invalid input, a stepper that cannot continue, observer failures and
// context cancellation.
func (c *Controller) Run(ctx context.Context, x0 dynamo.State, tEnd float64) (*Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if c.layout != nil {
		if err := c.layout.Check(x0); err != nil {
			return nil, err
		}
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("%w: initial state", dynamo.ErrInvalidState)
	}
	if r, ok := c.stepper.(resetter); ok {
		r.Reset()
	}
	for _, m := range c.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := c.cfg.InitialDt
	res := &Result{Metrics: make(map[string]float64)}

	fail := func(err error) (*Result, error) {
		c.finish(res, x, t)
		return res, &dynamo.SimulationError{Step: res.Steps, Time: t, State: x.Clone(), Wrapped: err}
	}

	c.status = Sampling
	for _, m := range c.metrics {
		m.Observe(x, t)
	}
	if err := c.notify(x, t); err != nil {
		return fail(err)
	}

	for t < tEnd {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		default:
		}

		c.status = Running
		accepted := false
		for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
			ok, err := c.stepper.TryStep(c.f, x, &t, &dt)
			if err != nil {
				return fail(err)
			}
			if ok {
				accepted = true
				break
			}
			c.status = StepRejected
			res.Rejected++
		}
		if !accepted {
			c.status = MaxIterationAborted
			c.finish(res, x, t)
			return res, nil
		}
		res.Steps++

		if !x.IsValid() {
			return fail(dynamo.ErrInvalidState)
		}

		for _, m := range c.metrics {
			m.Observe(x, t)
		}

		stopped := c.stop != nil && c.stop(x, t)

		c.status = Sampling
		if err := c.notify(x, t); err != nil {
			return fail(err)
		}

		if stopped {
			res.Stopped = true
			break
		}
	}

	c.status = Finished
	c.finish(res, x, t)
	return res, nil
}

func (c *Controller) notify(x dynamo.State, t float64) error {
	var errs []error
	for _, o := range c.observers {
		if err := o.Observe(x, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) finish(res *Result, x dynamo.State, t float64) {
	res.Status = c.status
	res.Time = t
	res.State = x
	for _, m := range c.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}
