package integrators

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// BulirschStoer advances with the modified midpoint rule on the step
// sequence 2, 4, 6, … and extrapolates the results to zero substep size.
// A step is accepted at the first column whose error estimate meets the
// tolerance.
type BulirschStoer struct {
	tol      Tolerance
	seq      []int
	safety   float64
	minScale float64
	maxScale float64

	// rows[k][j] is the j-th extrapolation of the k-th midpoint run.
	rows                     [][]dynamo.State
	dxdt, zPrev, zCur, zNext dynamo.State
	deriv, errv              dynamo.State
}

const bsMaxColumns = 8

func NewBulirschStoer(tol Tolerance) *BulirschStoer {
	seq := make([]int, bsMaxColumns)
	for k := range seq {
		seq[k] = 2 * (k + 1)
	}
	return &BulirschStoer{
		tol:      tol,
		seq:      seq,
		safety:   0.94,
		minScale: 0.2,
		maxScale: 4.0,
	}
}

func (b *BulirschStoer) Name() string { return "bulirsch-stoer" }

func (b *BulirschStoer) alloc(n int) {
	if len(b.rows) == len(b.seq) && len(b.dxdt) == n {
		return
	}
	b.rows = make([][]dynamo.State, len(b.seq))
	for k := range b.rows {
		b.rows[k] = make([]dynamo.State, k+1)
		for j := range b.rows[k] {
			b.rows[k][j] = make(dynamo.State, n)
		}
	}
	for _, s := range []*dynamo.State{&b.dxdt, &b.zPrev, &b.zCur, &b.zNext, &b.deriv, &b.errv} {
		ensure(s, n)
	}
}

// midpoint integrates over H with n substeps and writes the result to out.
func (b *BulirschStoer) midpoint(f dynamo.Derivative, x dynamo.State, t, H float64, n int, out dynamo.State) {
	h := H / float64(n)

	copy(b.zPrev, x)
	floats.AddScaledTo(b.zCur, x, h, b.dxdt)

	for m := 1; m < n; m++ {
		f(b.zCur, b.deriv, t+float64(m)*h)
		floats.AddScaledTo(b.zNext, b.zPrev, 2*h, b.deriv)
		b.zPrev, b.zCur, b.zNext = b.zCur, b.zNext, b.zPrev
	}

	f(b.zCur, b.deriv, t+H)
	for i := range out {
		out[i] = 0.5 * (b.zCur[i] + b.zPrev[i] + h*b.deriv[i])
	}
}

func (b *BulirschStoer) extrapolate(k int) {
	cur, prev := b.rows[k], b.rows[k-1]
	for j := 1; j <= k; j++ {
		r := float64(b.seq[k]) / float64(b.seq[k-j])
		den := r*r - 1
		for i := range cur[j] {
			cur[j][i] = cur[j-1][i] + (cur[j-1][i]-prev[j-1][i])/den
		}
	}
}

func (b *BulirschStoer) TryStep(f dynamo.Derivative, x dynamo.State, t, dt *float64) (bool, error) {
	H := *dt
	if err := checkStep(*t, H); err != nil {
		return false, err
	}
	b.alloc(len(x))

	f(x, b.dxdt, *t)

	errRatio := math.Inf(1)
	for k := range b.seq {
		b.midpoint(f, x, *t, H, b.seq[k], b.rows[k][0])
		if k == 0 {
			continue
		}
		b.extrapolate(k)

		best := b.rows[k][k]
		floats.SubTo(b.errv, best, b.rows[k][k-1])
		errRatio = b.tol.errNorm(b.errv, x, best)

		if errRatio <= 1 {
			copy(x, best)
			*t += H
			scale := b.maxScale
			if errRatio > 0 {
				scale = math.Min(b.maxScale, b.safety*math.Pow(errRatio, -1/float64(2*k+1)))
			}
			*dt = H * math.Max(scale, 1)
			return true, nil
		}
	}

	k := len(b.seq) - 1
	scale := b.minScale
	if !math.IsInf(errRatio, 1) {
		scale = math.Max(b.minScale, math.Min(0.5, b.safety*math.Pow(errRatio, -1/float64(2*k+1))))
	}
	*dt = H * scale
	return false, nil
}
