package task

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"github.com/san-kum/secular/internal/secular"
	"gonum.org/v1/gonum/spatial/r3"
)

// Constants derives the task's physical coefficients.
func (t *Task) Constants() *secular.Constants {
	return secular.NewConstants(t.Controller, t.M1, t.M2, t.M3)
}

// InitialState builds the state vector at t=0.
func (t *Task) InitialState() dynamo.State {
	x := t.Layout.New()

	nodeIn := orbit.Deg2rad(t.Node)
	nodeOut := nodeIn - math.Pi

	iIn, iOut := orbit.Deg2rad(t.Inner.I), orbit.Deg2rad(t.Outer.I)
	wIn, wOut := orbit.Deg2rad(t.Inner.Periapsis), orbit.Deg2rad(t.Outer.Periapsis)

	lIn := orbit.AngularMomentum(t.M1, t.M2, t.Inner.A) * math.Sqrt(1-t.Inner.E*t.Inner.E)
	x.Set(dynamo.L1, r3.Scale(lIn, orbit.UnitJ(iIn, nodeIn)))
	x.Set(dynamo.E1, r3.Scale(t.Inner.E, orbit.UnitE(iIn, wIn, nodeIn)))

	m12 := t.M1 + t.M2
	switch t.Layout.Averaging {
	case dynamo.Double:
		lOut := orbit.AngularMomentum(m12, t.M3, t.Outer.A) * math.Sqrt(1-t.Outer.E*t.Outer.E)
		x.Set(dynamo.L2, r3.Scale(lOut, orbit.UnitJ(iOut, nodeOut)))
		x.Set(dynamo.E2, r3.Scale(t.Outer.E, orbit.UnitE(iOut, wOut, nodeOut)))
	case dynamo.Single:
		r, v := orbit.StateRV(m12+t.M3, t.Outer.A, t.Outer.E, iOut, wOut, nodeOut, orbit.Deg2rad(t.MeanAnomaly))
		x.Set(dynamo.R, r)
		x.Set(dynamo.V, v)
	}

	for n, s := range t.Spins {
		x.Set(t.Layout.Spin(n+1), s)
	}
	return x
}
