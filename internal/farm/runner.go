package farm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/integrators"
	"github.com/san-kum/secular/internal/metrics"
	"github.com/san-kum/secular/internal/secular"
	"github.com/san-kum/secular/internal/sim"
	"github.com/san-kum/secular/internal/storage"
	"github.com/san-kum/secular/internal/task"
)

// Outcome is what one task left behind.
type Outcome struct {
	ID       int
	Title    string
	Status   sim.Status
	Time     float64
	Steps    int
	Rejected int
	Elapsed  time.Duration
	Metrics  map[string]float64
	// Err is set for max-iteration aborts and numeric failures.
	Err error
}

// Runner turns a decoded task into trajectory, last-state and log output.
type Runner struct {
	Store     *storage.Store
	LastState *storage.Sink
	Log       *storage.Sink

	Stepper   integrators.Factory
	Tolerance integrators.Tolerance
	Sim       sim.Config
	Options   secular.Options
	// StopAIn ends a task once the inner semi-major axis drops to it.
	// Zero disables the check.
	StopAIn float64

	Logger *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run integrates t. The returned error is non-nil only for output failures
// and cancellation.
func (r *Runner) Run(ctx context.Context, t *task.Task) (Outcome, error) {
	start := time.Now()
	log := r.logger().With(zap.Int("task", t.ID))
	out := Outcome{ID: t.ID, Title: t.Title(r.Options)}

	if err := r.Log.WriteLine(out.Title); err != nil {
		return out, fmt.Errorf("writing log: %w", err)
	}

	c := t.Constants()
	x0 := t.InitialState()
	ev, err := secular.Dispatch(t.Controller, t.Layout, c, r.Options)
	if err != nil {
		out.Err = err
		return out, nil
	}
	log.Debug("task started",
		zap.String("title", out.Title),
		zap.Strings("terms", ev.Terms()),
		zap.Float64("t_end", t.EndTime),
		zap.Float64("t_lk", c.LKTimescale(t.Inner.A, t.Outer.A, t.Outer.E)))

	ctrl := sim.NewController(r.Stepper(r.Tolerance), ev.Derive, r.Sim)
	ctrl.SetLayout(t.Layout)
	ctrl.SetTermination(sim.StopBelowA(c.InnerACoef(), r.StopAIn))

	ctrl.AddMetric(metrics.NewAngularMomentumDrift(func(x dynamo.State) r3.Vec {
		return c.TotalAngularMomentum(t.Layout, x)
	}))
	ctrl.AddMetric(metrics.NewOrthogonality(dynamo.L1, dynamo.E1))
	if !t.Controller.GW {
		ctrl.AddMetric(metrics.NewScalarDrift("a_in_drift", c.InnerA))
	}

	var traj *storage.Trajectory
	if sim.SamplingOn(t.OutputInterval) {
		traj, err = r.Store.CreateTrajectory(t.ID)
		if err != nil {
			return out, fmt.Errorf("task %d: %w", t.ID, err)
		}
		ctrl.AddObserver(sim.NewSampler(traj, t.OutputInterval))
	}

	res, runErr := ctrl.Run(ctx, x0, t.EndTime)

	if traj != nil {
		if err := traj.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}

	if res != nil {
		out.Status = res.Status
		out.Time = res.Time
		out.Steps = res.Steps
		out.Rejected = res.Rejected
		out.Metrics = res.Metrics
	}
	out.Elapsed = time.Since(start)

	if runErr != nil {
		var simErr *dynamo.SimulationError
		if errors.As(runErr, &simErr) {
			simErr.Task = t.ID
		}
		if !softFailure(runErr) {
			return out, runErr
		}
		out.Err = runErr
		log.Error("task failed", zap.Error(runErr))
		return out, nil
	}

	switch res.Status {
	case sim.MaxIterationAborted:
		out.Err = &dynamo.SimulationError{Task: t.ID, Step: res.Steps, Time: res.Time, State: res.State, Wrapped: dynamo.ErrMaxAttempts}
		if err := r.Log.WriteLine(fmt.Sprintf("%d:Max iteration number reaches!", t.ID)); err != nil {
			return out, fmt.Errorf("writing log: %w", err)
		}
		log.Warn("max iteration reached",
			zap.Float64("time", res.Time),
			zap.Int("steps", res.Steps),
			zap.Int("rejected", res.Rejected))

	case sim.Finished:
		if err := r.LastState.WriteLine(r.Store.FormatRecord(t.ID, res.Time, res.State)); err != nil {
			return out, fmt.Errorf("writing last state: %w", err)
		}
		log.Debug("task finished",
			zap.Float64("time", res.Time),
			zap.Int("steps", res.Steps),
			zap.Int("rejected", res.Rejected),
			zap.Bool("stopped", res.Stopped),
			zap.Any("drift", res.Metrics),
			zap.Duration("elapsed", out.Elapsed))
	}
	return out, nil
}
