package integrators

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Dormand-Prince 5(4) tableau.
const (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Dopri5 is the Dormand-Prince embedded pair with first-same-as-last
// reuse of the final stage.
type Dopri5 struct {
	tol      Tolerance
	safety   float64
	minScale float64
	maxScale float64

	k1, k2, k3, k4, k5, k6, k7 dynamo.State
	tmp, xNew, errv            dynamo.State

	// k1 holds f(x, t) for fsalT when fsalOK.
	fsalOK bool
	fsalT  float64
}

func NewDopri5(tol Tolerance) *Dopri5 {
	return &Dopri5{
		tol:      tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (d *Dopri5) Name() string { return "dopri5" }

func (d *Dopri5) alloc(n int) {
	for _, b := range []*dynamo.State{&d.k1, &d.k2, &d.k3, &d.k4, &d.k5, &d.k6, &d.k7, &d.tmp, &d.xNew, &d.errv} {
		if len(*b) != n {
			d.fsalOK = false
		}
		ensure(b, n)
	}
}

// Reset drops the cached first stage. Call it when x is modified outside
// TryStep.
func (d *Dopri5) Reset() { d.fsalOK = false }

func (d *Dopri5) TryStep(f dynamo.Derivative, x dynamo.State, t, dt *float64) (bool, error) {
	h := *dt
	if err := checkStep(*t, h); err != nil {
		return false, err
	}
	d.alloc(len(x))

	if !d.fsalOK || d.fsalT != *t {
		f(x, d.k1, *t)
	}

	floats.AddScaledTo(d.tmp, x, h*b21, d.k1)
	f(d.tmp, d.k2, *t+a2*h)

	floats.AddScaledTo(d.tmp, x, h*b31, d.k1)
	floats.AddScaled(d.tmp, h*b32, d.k2)
	f(d.tmp, d.k3, *t+a3*h)

	floats.AddScaledTo(d.tmp, x, h*b41, d.k1)
	floats.AddScaled(d.tmp, h*b42, d.k2)
	floats.AddScaled(d.tmp, h*b43, d.k3)
	f(d.tmp, d.k4, *t+a4*h)

	floats.AddScaledTo(d.tmp, x, h*b51, d.k1)
	floats.AddScaled(d.tmp, h*b52, d.k2)
	floats.AddScaled(d.tmp, h*b53, d.k3)
	floats.AddScaled(d.tmp, h*b54, d.k4)
	f(d.tmp, d.k5, *t+a5*h)

	floats.AddScaledTo(d.tmp, x, h*b61, d.k1)
	floats.AddScaled(d.tmp, h*b62, d.k2)
	floats.AddScaled(d.tmp, h*b63, d.k3)
	floats.AddScaled(d.tmp, h*b64, d.k4)
	floats.AddScaled(d.tmp, h*b65, d.k5)
	f(d.tmp, d.k6, *t+h)

	floats.AddScaledTo(d.xNew, x, h*c1, d.k1)
	floats.AddScaled(d.xNew, h*c3, d.k3)
	floats.AddScaled(d.xNew, h*c4, d.k4)
	floats.AddScaled(d.xNew, h*c5, d.k5)
	floats.AddScaled(d.xNew, h*c6, d.k6)
	f(d.xNew, d.k7, *t+h)

	floats.ScaleTo(d.errv, h*dc1, d.k1)
	floats.AddScaled(d.errv, h*dc3, d.k3)
	floats.AddScaled(d.errv, h*dc4, d.k4)
	floats.AddScaled(d.errv, h*dc5, d.k5)
	floats.AddScaled(d.errv, h*dc6, d.k6)
	floats.AddScaled(d.errv, h*dc7, d.k7)

	errRatio := d.tol.errNorm(d.errv, x, d.xNew)

	if errRatio > 1 {
		scale := d.minScale
		if !math.IsInf(errRatio, 1) {
			scale = math.Max(d.minScale, d.safety*math.Pow(errRatio, -0.25))
		}
		*dt = h * scale
		return false, nil
	}

	copy(x, d.xNew)
	*t += h
	d.k1, d.k7 = d.k7, d.k1
	d.fsalOK, d.fsalT = true, *t

	scale := d.maxScale
	if errRatio > 0 {
		scale = math.Min(d.maxScale, d.safety*math.Pow(errRatio, -0.2))
	}
	*dt = h * math.Max(scale, 1)
	return true, nil
}
