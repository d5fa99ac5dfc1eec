package integrators

import (
	"errors"
	"math"

	"github.com/san-kum/secular/internal/dynamo"
)

// Stepper is a controlled one-step method.
//
// TryStep attempts to advance x from *t by *dt. When the step is accepted
// x and *t are advanced in place and *dt holds the suggested next step.
// When it is rejected x and *t are untouched and *dt has been reduced. An
// error is returned only for conditions retrying cannot fix.
type Stepper interface {
	Name() string
	TryStep(f dynamo.Derivative, x dynamo.State, t, dt *float64) (accepted bool, err error)
}

// Tolerance bounds the per-component local error as
// |err_i| ≤ Abs + Rel·max(|x_i|, |x'_i|).
type Tolerance struct {
	Abs float64 `yaml:"abs_tol"`
	Rel float64 `yaml:"rel_tol"`
}

func (tol Tolerance) Validate() error {
	if !(tol.Abs >= 0) || !(tol.Rel >= 0) || tol.Abs+tol.Rel == 0 {
		return errors.New("integrators: tolerances must be non-negative and not both zero")
	}
	return nil
}

// errNorm returns the scaled max-norm of e. Values above 1 mean the step
// misses the tolerance. NaN anywhere yields +Inf.
func (tol Tolerance) errNorm(e, x, xNew dynamo.State) float64 {
	worst := 0.0
	for i := range e {
		sc := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := math.Abs(e[i]) / sc
		if math.IsNaN(r) {
			return math.Inf(1)
		}
		worst = math.Max(worst, r)
	}
	return worst
}

func checkStep(t, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return dynamo.ErrStepTooSmall
	}
	if t+dt == t {
		return dynamo.ErrStepTooSmall
	}
	return nil
}

func ensure(buf *dynamo.State, n int) dynamo.State {
	if len(*buf) != n {
		*buf = make(dynamo.State, n)
	}
	return *buf
}
