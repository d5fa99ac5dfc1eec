package secular

import (
	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"gonum.org/v1/gonum/spatial/r3"
)

// frame is an orbit seen as a gyroscope: its angular momentum, the
// 1/a_eff³ factor of the precession rate, and the two slots that rotate
// rigidly when the orbit precesses.
type frame struct {
	L    r3.Vec
	inv3 float64
	a, b dynamo.Slot
}

// rotate adds Ω×x for both of the frame's slots.
func (f frame) rotate(x, dxdt dynamo.State, omega r3.Vec) {
	dxdt.Add(f.a, r3.Cross(omega, x.Vec(f.a)))
	dxdt.Add(f.b, r3.Cross(omega, x.Vec(f.b)))
}

type frameReader func(c *Constants, x dynamo.State) frame

func innerFrame(c *Constants, x dynamo.State) frame {
	L := x.Vec(dynamo.L1)
	aEff := orbit.CalcAEff(c.ACoef[inner], L, x.Vec(dynamo.E1))
	return frame{L: L, inv3: 1 / (aEff * aEff * aEff), a: dynamo.L1, b: dynamo.E1}
}

func outerFrameDouble(c *Constants, x dynamo.State) frame {
	L := x.Vec(dynamo.L2)
	aEff := orbit.CalcAEff(c.ACoef[outer], L, x.Vec(dynamo.E2))
	return frame{L: L, inv3: 1 / (aEff * aEff * aEff), a: dynamo.L2, b: dynamo.E2}
}

// outerFrameSingle uses the instantaneous separation in place of the
// orbit-averaged a_eff.
func outerFrameSingle(c *Constants, x dynamo.State) frame {
	r, v := x.Vec(dynamo.R), x.Vec(dynamo.V)
	d := r3.Norm(r)
	return frame{
		L:    r3.Scale(c.Mu[outer], r3.Cross(r, v)),
		inv3: 1 / (d * d * d),
		a:    dynamo.R,
		b:    dynamo.V,
	}
}

func outerFrameReader(avg dynamo.Averaging) frameReader {
	if avg == dynamo.Double {
		return outerFrameDouble
	}
	return outerFrameSingle
}

// spinOrbit precesses spin S about the orbit read by orb and applies the
// back-reaction on the orbit, conserving S + L.
func spinOrbit(spin dynamo.Slot, coef float64, orb frameReader) term {
	return func(c *Constants, x, dxdt dynamo.State) {
		f := orb(c, x)
		S := x.Vec(spin)
		rate := coef * f.inv3
		dxdt.Add(spin, orbit.CrossWithCoef(rate, f.L, S))
		f.rotate(x, dxdt, r3.Scale(rate, S))
	}
}

// orbitOrbit precesses the inner orbit about the outer angular momentum
// and the outer orbit about the inner one, conserving L1 + L2.
func orbitOrbit(outerOrb frameReader) term {
	return func(c *Constants, x, dxdt dynamo.State) {
		out := outerOrb(c, x)
		in := innerFrame(c, x)
		rate := c.LL * out.inv3
		in.rotate(x, dxdt, r3.Scale(rate, out.L))
		out.rotate(x, dxdt, r3.Scale(rate, in.L))
	}
}
