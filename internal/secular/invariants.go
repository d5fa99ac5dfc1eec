package secular

import (
	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"gonum.org/v1/gonum/spatial/r3"
)

// TotalAngularMomentum sums the orbital and spin angular momenta held in
// x. Under single averaging the outer orbit contributes μ_out·r×v.
func (c *Constants) TotalAngularMomentum(layout dynamo.Layout, x dynamo.State) r3.Vec {
	total := x.Vec(dynamo.L1)
	if layout.Averaging == dynamo.Double {
		total = r3.Add(total, x.Vec(dynamo.L2))
	} else {
		total = r3.Add(total, r3.Scale(c.Mu[outer], r3.Cross(x.Vec(dynamo.R), x.Vec(dynamo.V))))
	}
	for n := 1; n <= layout.Spins; n++ {
		total = r3.Add(total, x.Vec(layout.Spin(n)))
	}
	return total
}

// InnerA is the inner semi-major axis recovered from (L1, e1).
func (c *Constants) InnerA(x dynamo.State) float64 {
	return orbit.CalcA(c.ACoef[inner], x.Vec(dynamo.L1), x.Vec(dynamo.E1))
}

// InnerACoef converts |L1|²/(1-e1²) into the inner semi-major axis.
func (c *Constants) InnerACoef() float64 { return c.ACoef[inner] }
