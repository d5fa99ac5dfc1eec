package orbit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestUnitVectorsOrthonormal(t *testing.T) {
	i, ω, Ω := Deg2rad(37), Deg2rad(112), Deg2rad(-48)

	j := UnitJ(i, Ω)
	e := UnitE(i, ω, Ω)
	q := UnitPeriV(i, ω, Ω)

	if math.Abs(r3.Norm(j)-1) > 1e-12 || math.Abs(r3.Norm(e)-1) > 1e-12 || math.Abs(r3.Norm(q)-1) > 1e-12 {
		t.Errorf("unit vectors not normalised: %v %v %v", j, e, q)
	}
	if math.Abs(r3.Dot(j, e)) > 1e-12 || math.Abs(r3.Dot(j, q)) > 1e-12 || math.Abs(r3.Dot(e, q)) > 1e-12 {
		t.Error("unit vectors not orthogonal")
	}
}

func TestSolveKepler(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.9, 0.99} {
		for _, M := range []float64{0.1, 1, 2.5, 4, 6} {
			E := SolveKepler(M, e)
			if got := E - e*math.Sin(E); math.Abs(got-M) > 1e-10 {
				t.Errorf("e=%v M=%v: E-e sinE = %v", e, M, got)
			}
		}
	}
}

func TestStateRV(t *testing.T) {
	m, a, e := 2.0, 5.0, 0.3
	i, ω, Ω := Deg2rad(20), Deg2rad(45), Deg2rad(70)

	r, v := StateRV(m, a, e, i, ω, Ω, 1.3)

	energy := 0.5*r3.Norm2(v) - G*m/r3.Norm(r)
	if want := -G * m / (2 * a); math.Abs(energy-want) > 1e-9*math.Abs(want) {
		t.Errorf("specific energy = %v, want %v", energy, want)
	}

	h := r3.Cross(r, v)
	if want := math.Sqrt(G * m * a * (1 - e*e)); math.Abs(r3.Norm(h)-want) > 1e-9*want {
		t.Errorf("|h| = %v, want %v", r3.Norm(h), want)
	}
	if d := r3.Norm(r3.Sub(r3.Unit(h), UnitJ(i, Ω))); d > 1e-9 {
		t.Errorf("orbit normal mismatch: %v", d)
	}
}
