package secular

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"gonum.org/v1/gonum/spatial/r3"
)

type triple struct {
	m1, m2, m3   float64
	a1, a2       float64
	e1, e2       float64
	i1, i2       float64 // degrees
	ω1, ω2, Ω    float64 // degrees
	spins        []r3.Vec
	meanAnomaly2 float64 // degrees, single averaging only
}

func (tr triple) state(avg dynamo.Averaging) (dynamo.Layout, dynamo.State) {
	layout := dynamo.Layout{Averaging: avg, Spins: len(tr.spins)}
	x := layout.New()

	i1, i2 := orbit.Deg2rad(tr.i1), orbit.Deg2rad(tr.i2)
	ω1, ω2 := orbit.Deg2rad(tr.ω1), orbit.Deg2rad(tr.ω2)
	Ω1 := orbit.Deg2rad(tr.Ω)
	Ω2 := Ω1 - math.Pi

	l1 := orbit.AngularMomentum(tr.m1, tr.m2, tr.a1) * math.Sqrt(1-tr.e1*tr.e1)
	x.Set(dynamo.L1, r3.Scale(l1, orbit.UnitJ(i1, Ω1)))
	x.Set(dynamo.E1, r3.Scale(tr.e1, orbit.UnitE(i1, ω1, Ω1)))

	if avg == dynamo.Double {
		l2 := orbit.AngularMomentum(tr.m1+tr.m2, tr.m3, tr.a2) * math.Sqrt(1-tr.e2*tr.e2)
		x.Set(dynamo.L2, r3.Scale(l2, orbit.UnitJ(i2, Ω2)))
		x.Set(dynamo.E2, r3.Scale(tr.e2, orbit.UnitE(i2, ω2, Ω2)))
	} else {
		r, v := orbit.StateRV(tr.m1+tr.m2+tr.m3, tr.a2, tr.e2, i2, ω2, Ω2, orbit.Deg2rad(tr.meanAnomaly2))
		x.Set(dynamo.R, r)
		x.Set(dynamo.V, v)
	}

	for n, s := range tr.spins {
		x.Set(layout.Spin(n+1), s)
	}
	return layout, x
}

func referenceTriple() triple {
	return triple{
		m1: 1.2, m2: 0.7, m3: 0.9,
		a1: 1, a2: 25,
		e1: 0.3, e2: 0.4,
		i1: 63, i2: 4,
		ω1: 30, ω2: 110, Ω: 50,
		meanAnomaly2: 75,
	}
}

// angularMomentumRate is d/dt of Constants.TotalAngularMomentum along dxdt.
func angularMomentumRate(c *Constants, layout dynamo.Layout, x, dxdt dynamo.State) r3.Vec {
	rate := dxdt.Vec(dynamo.L1)
	if layout.Averaging == dynamo.Double {
		rate = r3.Add(rate, dxdt.Vec(dynamo.L2))
	} else {
		r, v := x.Vec(dynamo.R), x.Vec(dynamo.V)
		dr, dv := dxdt.Vec(dynamo.R), dxdt.Vec(dynamo.V)
		rate = r3.Add(rate, r3.Scale(c.Mu[outer], r3.Add(r3.Cross(dr, v), r3.Cross(r, dv))))
	}
	for n := 1; n <= layout.Spins; n++ {
		rate = r3.Add(rate, dxdt.Vec(layout.Spin(n)))
	}
	return rate
}

// rk4 integrates with a fixed step and calls visit after every step.
func rk4(f dynamo.Derivative, x dynamo.State, dt float64, steps int, visit func(dynamo.State)) {
	n := len(x)
	k1, k2, k3, k4 := make(dynamo.State, n), make(dynamo.State, n), make(dynamo.State, n), make(dynamo.State, n)
	tmp := make(dynamo.State, n)
	t := 0.0
	for s := 0; s < steps; s++ {
		f(x, k1, t)
		for i := range x {
			tmp[i] = x[i] + 0.5*dt*k1[i]
		}
		f(tmp, k2, t+0.5*dt)
		for i := range x {
			tmp[i] = x[i] + 0.5*dt*k2[i]
		}
		f(tmp, k3, t+0.5*dt)
		for i := range x {
			tmp[i] = x[i] + dt*k3[i]
		}
		f(tmp, k4, t+dt)
		for i := range x {
			x[i] += dt / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
		t += dt
		visit(x)
	}
}
