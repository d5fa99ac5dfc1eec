package metrics

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// AngularMomentumDrift tracks the largest |J(t) - J(0)| / |J(0)| of a
// conserved vector J.
type AngularMomentumDrift struct {
	name     string
	total    func(dynamo.State) r3.Vec
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift(total func(dynamo.State) r3.Vec) *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift", total: total}
}

func (m *AngularMomentumDrift) Name() string { return m.name }

func (m *AngularMomentumDrift) Observe(x dynamo.State, t float64) {
	J := m.total(x)
	if m.samples == 0 {
		m.initial = J
	}
	m.samples++

	if n := r3.Norm(m.initial); n > 0 {
		m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(J, m.initial))/n)
	}
}

func (m *AngularMomentumDrift) Value() float64 { return m.maxDrift }

func (m *AngularMomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}

// Orthogonality tracks the largest |L̂·e| of one orbit. The secular
// equations keep e in the orbital plane.
type Orthogonality struct {
	name     string
	l, e     dynamo.Slot
	maxDrift float64
}

func NewOrthogonality(l, e dynamo.Slot) *Orthogonality {
	return &Orthogonality{name: "orthogonality_" + l.String(), l: l, e: e}
}

func (m *Orthogonality) Name() string { return m.name }

func (m *Orthogonality) Observe(x dynamo.State, t float64) {
	L := x.Vec(m.l)
	n := r3.Norm(L)
	if n == 0 {
		return
	}
	m.maxDrift = math.Max(m.maxDrift, math.Abs(r3.Dot(L, x.Vec(m.e)))/n)
}

func (m *Orthogonality) Value() float64 { return m.maxDrift }

func (m *Orthogonality) Reset() { m.maxDrift = 0 }

// ScalarDrift tracks the largest relative change of a scalar invariant,
// e.g. the inner semi-major axis when radiation reaction is off.
type ScalarDrift struct {
	name     string
	f        func(dynamo.State) float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewScalarDrift(name string, f func(dynamo.State) float64) *ScalarDrift {
	return &ScalarDrift{name: name, f: f}
}

func (m *ScalarDrift) Name() string { return m.name }

func (m *ScalarDrift) Observe(x dynamo.State, t float64) {
	v := m.f(x)
	if m.samples == 0 {
		m.initial = v
	}
	m.samples++

	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(v-m.initial)/math.Abs(m.initial))
	}
}

func (m *ScalarDrift) Value() float64 { return m.maxDrift }

func (m *ScalarDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
