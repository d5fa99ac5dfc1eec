package secular

import (
	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"gonum.org/v1/gonum/spatial/r3"
)

// grPrecession rotates e about its own L at GR_coef/a_eff³.
func grPrecession(coef, aCoef float64, lSlot, eSlot dynamo.Slot, x, dxdt dynamo.State) {
	L, e := x.Vec(lSlot), x.Vec(eSlot)
	aEff := orbit.CalcAEff(aCoef, L, e)
	omega := coef / (aEff * aEff * aEff)
	dxdt.Add(eSlot, orbit.CrossWithCoef(omega, L, e))
}

func grInner(c *Constants, x, dxdt dynamo.State) {
	grPrecession(c.GRCoef[inner], c.ACoef[inner], dynamo.L1, dynamo.E1, x, dxdt)
}

func grOuter(c *Constants, x, dxdt dynamo.State) {
	grPrecession(c.GRCoef[outer], c.ACoef[outer], dynamo.L2, dynamo.E2, x, dxdt)
}

// gwRadiation applies the Peters orbit-averaged decay to the inner orbit.
func gwRadiation(c *Constants, x, dxdt dynamo.State) {
	L, e := x.Vec(dynamo.L1), x.Vec(dynamo.E1)
	args := orbit.CalcOrbitArgs(c.ACoef[inner], L, e)

	aEff := args.A * args.J
	aEff2 := aEff * aEff
	aEff4 := aEff2 * aEff2

	lRate := c.GWLCoef / aEff4 / args.J * (1 + 0.875*args.ESqr)
	eRate := c.GWECoef / aEff4 / args.J * (1 + 121.0/304*args.ESqr)

	dxdt.Add(dynamo.L1, r3.Scale(lRate, L))
	dxdt.Add(dynamo.E1, r3.Scale(eRate, e))
}
