package integrators

import (
	"github.com/san-kum/secular/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classic fixed-step Runge-Kutta method. It accepts every
// finite step and never changes dt, which makes it useful for quick looks
// and as a baseline.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) TryStep(f dynamo.Derivative, x dynamo.State, t, dt *float64) (bool, error) {
	h := *dt
	if err := checkStep(*t, h); err != nil {
		return false, err
	}
	r.ensureScratch(len(x))

	f(x, r.k1, *t)

	floats.AddScaledTo(r.scratch, x, h*0.5, r.k1)
	f(r.scratch, r.k2, *t+h*0.5)

	floats.AddScaledTo(r.scratch, x, h*0.5, r.k2)
	f(r.scratch, r.k3, *t+h*0.5)

	floats.AddScaledTo(r.scratch, x, h, r.k3)
	f(r.scratch, r.k4, *t+h)

	floats.AddScaledTo(r.scratch, x, h/6, r.k1)
	floats.AddScaled(r.scratch, h/3, r.k2)
	floats.AddScaled(r.scratch, h/3, r.k3)
	floats.AddScaled(r.scratch, h/6, r.k4)

	if !r.scratch.IsValid() {
		return false, dynamo.ErrInvalidState
	}
	copy(x, r.scratch)
	*t += h
	return true, nil
}
