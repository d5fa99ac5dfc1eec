package secular

import (
	"math"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"gonum.org/v1/gonum/spatial/r3"
)

// The Lidov-Kozai terms follow from the orbit-averaged interaction
// potential Φ through the vector (Milankovitch) equations
//
//	dL/dt = -(j × ∂Φ/∂j + e × ∂Φ/∂e)
//	de/dt = -(j × ∂Φ/∂e + e × ∂Φ/∂j) / Λ
//
// with j = L/Λ the dimensionless angular momentum and Λ = |L|/sqrt(1-e²).
// Total angular momentum is conserved term by term.

type orbitVecs struct {
	L, e, j r3.Vec
	args    orbit.Args
}

func readOrbit(coef float64, L, e r3.Vec) orbitVecs {
	args := orbit.CalcOrbitArgs(coef, L, e)
	return orbitVecs{L: L, e: e, j: r3.Scale(1/args.L, L), args: args}
}

// acc adds a·v into *dst.
func acc(dst *r3.Vec, a float64, v r3.Vec) {
	dst.X += a * v.X
	dst.Y += a * v.Y
	dst.Z += a * v.Z
}

// milankovitch returns (dL, de) for one orbit given ∂Φ/∂j and ∂Φ/∂e.
func milankovitch(o *orbitVecs, gj, ge r3.Vec) (dL, de r3.Vec) {
	dL = r3.Scale(-1, r3.Add(r3.Cross(o.j, gj), r3.Cross(o.e, ge)))
	de = r3.Scale(-1/o.args.L, r3.Add(r3.Cross(o.j, ge), r3.Cross(o.e, gj)))
	return dL, de
}

// daGrad is ∂Φ/∂(j1, e1, j2, e2) of the double-averaged potential.
type daGrad struct{ j1, e1, j2, e2 r3.Vec }

type daScalars struct {
	s, is3, is5, is7, is9 float64
	p, q                  float64
}

func newDAScalars(in, out *orbitVecs) daScalars {
	s := r3.Norm2(out.j)
	is3 := 1 / (s * math.Sqrt(s))
	is5 := is3 / s
	is7 := is5 / s
	return daScalars{
		s: s, is3: is3, is5: is5, is7: is7, is9: is7 / s,
		p: r3.Dot(in.e, out.j),
		q: r3.Dot(in.j, out.j),
	}
}

// Φ_quad = K[(1-6e1²)|j2|⁻³ - 3(j1·j2)²|j2|⁻⁵ + 15(e1·j2)²|j2|⁻⁵],
// K = G m1 m2 m3 a1² / (8 m12 a2³).
func daQuad(c *Constants, in, out *orbitVecs, d *daScalars, g *daGrad) {
	a1, a2 := in.args.A, out.args.A
	k := c.Quad * a1 * a1 / (8 * a2 * a2 * a2)
	p, q := d.p, d.q

	acc(&g.j1, -6*k*q*d.is5, out.j)

	acc(&g.e1, -12*k*d.is3, in.e)
	acc(&g.e1, 30*k*p*d.is5, out.j)

	acc(&g.j2, k*(-3*(1-6*in.args.ESqr)*d.is5+15*q*q*d.is7-75*p*p*d.is7), out.j)
	acc(&g.j2, -6*k*q*d.is5, in.j)
	acc(&g.j2, 30*k*p*d.is5, in.e)
}

// Φ_oct = K'{(e1·e2)(8e1²-1)|j2|⁻⁵
// + [-35(e1·e2)(e1·j2)² + 5(e1·e2)(j1·j2)² + 10(j1·e2)(e1·j2)(j1·j2)]|j2|⁻⁷},
// K' = 15/64 G m1 m2 m3 (m1-m2) a1³ / (m12² a2⁴).
func daOct(c *Constants, in, out *orbitVecs, d *daScalars, g *daGrad) {
	a1, a2 := in.args.A, out.args.A
	k := 15.0 / 64 * c.Oct * a1 * a1 * a1 / (a2 * a2 * a2 * a2)
	p, q := d.p, d.q
	w := r3.Dot(in.e, out.e)
	v := r3.Dot(in.j, out.e)
	X := 8*in.args.ESqr - 1
	T := -35*w*p*p + 5*w*q*q + 10*v*p*q

	acc(&g.j1, k*d.is7*(10*w*q+10*v*p), out.j)
	acc(&g.j1, k*d.is7*10*p*q, out.e)

	acc(&g.e1, k*d.is5*X+k*d.is7*(5*q*q-35*p*p), out.e)
	acc(&g.e1, k*d.is5*16*w, in.e)
	acc(&g.e1, k*d.is7*(10*v*q-70*w*p), out.j)

	acc(&g.j2, k*(-5*w*X*d.is7-7*T*d.is9), out.j)
	acc(&g.j2, k*d.is7*(10*v*q-70*w*p), in.e)
	acc(&g.j2, k*d.is7*(10*w*q+10*v*p), in.j)

	acc(&g.e2, k*d.is5*X+k*d.is7*(5*q*q-35*p*p), in.e)
	acc(&g.e2, k*d.is7*10*p*q, in.j)
}

func applyDouble(in, out *orbitVecs, g *daGrad, dxdt dynamo.State) {
	dL1, de1 := milankovitch(in, g.j1, g.e1)
	dL2, de2 := milankovitch(out, g.j2, g.e2)
	dxdt.Add(dynamo.L1, dL1)
	dxdt.Add(dynamo.E1, de1)
	dxdt.Add(dynamo.L2, dL2)
	dxdt.Add(dynamo.E2, de2)
}

func readDouble(c *Constants, x dynamo.State) (in, out orbitVecs) {
	in = readOrbit(c.ACoef[inner], x.Vec(dynamo.L1), x.Vec(dynamo.E1))
	out = readOrbit(c.ACoef[outer], x.Vec(dynamo.L2), x.Vec(dynamo.E2))
	return in, out
}

func lkDoubleQuad(c *Constants, x, dxdt dynamo.State) {
	in, out := readDouble(c, x)
	d := newDAScalars(&in, &out)
	var g daGrad
	daQuad(c, &in, &out, &d, &g)
	applyDouble(&in, &out, &g, dxdt)
}

func lkDoubleOct(c *Constants, x, dxdt dynamo.State) {
	in, out := readDouble(c, x)
	d := newDAScalars(&in, &out)
	var g daGrad
	daQuad(c, &in, &out, &d, &g)
	daOct(c, &in, &out, &d, &g)
	applyDouble(&in, &out, &g, dxdt)
}

// Under single averaging the outer slots hold the tertiary's relative
// position r and velocity v, and Φ is averaged over the inner orbit only.

type saGrad struct{ j1, e1, r r3.Vec }

type saScalars struct {
	iR3, iR5, iR7, iR9 float64
	P, Q               float64
}

func newSAScalars(in *orbitVecs, r r3.Vec) saScalars {
	R := r3.Norm2(r)
	iR3 := 1 / (R * math.Sqrt(R))
	iR5 := iR3 / R
	iR7 := iR5 / R
	return saScalars{
		iR3: iR3, iR5: iR5, iR7: iR7, iR9: iR7 / R,
		P: r3.Dot(in.e, r),
		Q: r3.Dot(in.j, r),
	}
}

// Φ_quad = -K[(1-6e1²)|r|⁻³ - 3(j1·r)²|r|⁻⁵ + 15(e1·r)²|r|⁻⁵],
// K = G m1 m2 m3 a1² / (4 m12).
func saQuad(c *Constants, in *orbitVecs, r r3.Vec, d *saScalars, g *saGrad) {
	a1 := in.args.A
	k := c.Quad * a1 * a1 / 4
	P, Q := d.P, d.Q

	acc(&g.j1, 6*k*Q*d.iR5, r)

	acc(&g.e1, 12*k*d.iR3, in.e)
	acc(&g.e1, -30*k*P*d.iR5, r)

	acc(&g.r, -k*(-3*(1-6*in.args.ESqr)*d.iR5+15*Q*Q*d.iR7-75*P*P*d.iR7), r)
	acc(&g.r, 6*k*Q*d.iR5, in.j)
	acc(&g.r, -30*k*P*d.iR5, in.e)
}

// Φ_oct = -K'[(24e1²-3)(e1·r)|r|⁻⁵ - 35(e1·r)³|r|⁻⁷ + 15(e1·r)(j1·r)²|r|⁻⁷],
// K' = 5/16 G m1 m2 m3 (m1-m2) a1³ / m12².
func saOct(c *Constants, in *orbitVecs, r r3.Vec, d *saScalars, g *saGrad) {
	a1 := in.args.A
	k := 5.0 / 16 * c.Oct * a1 * a1 * a1
	P, Q := d.P, d.Q
	Y := 24*in.args.ESqr - 3
	radial := Y*d.iR5 - 105*P*P*d.iR7 + 15*Q*Q*d.iR7

	acc(&g.j1, -k*30*P*Q*d.iR7, r)

	acc(&g.e1, -k*48*P*d.iR5, in.e)
	acc(&g.e1, -k*radial, r)

	acc(&g.r, -k*radial, in.e)
	acc(&g.r, -k*30*P*Q*d.iR7, in.j)
	acc(&g.r, -k*(-5*Y*P*d.iR7+245*P*P*P*d.iR9-105*P*Q*Q*d.iR9), r)
}

func applySingle(c *Constants, in *orbitVecs, r, v r3.Vec, d *saScalars, g *saGrad, dxdt dynamo.State) {
	dL1, de1 := milankovitch(in, g.j1, g.e1)
	dxdt.Add(dynamo.L1, dL1)
	dxdt.Add(dynamo.E1, de1)

	dxdt.Add(dynamo.R, v)
	acc(&g.r, c.KeplerCoef*c.Mu[outer]*d.iR3, r)
	dxdt.Add(dynamo.V, r3.Scale(-1/c.Mu[outer], g.r))
}

func lkSingleQuad(c *Constants, x, dxdt dynamo.State) {
	in := readOrbit(c.ACoef[inner], x.Vec(dynamo.L1), x.Vec(dynamo.E1))
	r, v := x.Vec(dynamo.R), x.Vec(dynamo.V)
	d := newSAScalars(&in, r)
	var g saGrad
	saQuad(c, &in, r, &d, &g)
	applySingle(c, &in, r, v, &d, &g, dxdt)
}

func lkSingleOct(c *Constants, x, dxdt dynamo.State) {
	in := readOrbit(c.ACoef[inner], x.Vec(dynamo.L1), x.Vec(dynamo.E1))
	r, v := x.Vec(dynamo.R), x.Vec(dynamo.V)
	d := newSAScalars(&in, r)
	var g saGrad
	saQuad(c, &in, r, &d, &g)
	saOct(c, &in, r, &d, &g)
	applySingle(c, &in, r, v, &d, &g, dxdt)
}
