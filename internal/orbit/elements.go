package orbit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const keplerTol = 1e-14

func Deg2rad(a float64) float64 { return a * math.Pi / 180 }

func Rad2deg(a float64) float64 { return a * 180 / math.Pi }

// AngularMomentum returns the circular angular momentum μ·sqrt(G(m_in+m_out)a)
// of a two-body orbit.
func AngularMomentum(mIn, mOut, a float64) float64 {
	mu := mIn * mOut / (mIn + mOut)
	return mu * math.Sqrt(G*(mIn+mOut)*a)
}

// UnitJ is the orbit normal for inclination i and longitude of the
// ascending node Ω (radians).
func UnitJ(i, Ω float64) r3.Vec {
	sini, cosi := math.Sincos(i)
	sinO, cosO := math.Sincos(Ω)
	return r3.Vec{X: sini * sinO, Y: -sini * cosO, Z: cosi}
}

// UnitE is the direction of pericentre.
func UnitE(i, ω, Ω float64) r3.Vec {
	sini, cosi := math.Sincos(i)
	sinO, cosO := math.Sincos(Ω)
	sino, coso := math.Sincos(ω)
	return r3.Vec{
		X: coso*cosO - sino*cosi*sinO,
		Y: coso*sinO + sino*cosi*cosO,
		Z: sino * sini,
	}
}

// UnitPeriV is the in-plane direction 90° ahead of pericentre.
func UnitPeriV(i, ω, Ω float64) r3.Vec {
	return r3.Cross(UnitJ(i, Ω), UnitE(i, ω, Ω))
}

// SolveKepler returns the eccentric anomaly for mean anomaly M.
func SolveKepler(M, e float64) float64 {
	M = math.Mod(M, 2*math.Pi)
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 64; i++ {
		sinE, cosE := math.Sincos(E)
		dE := (E - e*sinE - M) / (1 - e*cosE)
		E -= dE
		if math.Abs(dE) < keplerTol {
			break
		}
	}
	return E
}

// StateRV returns the relative position and velocity of a Keplerian orbit
// with total mass m at mean anomaly M. Angles are in radians.
func StateRV(m, a, e, i, ω, Ω, M float64) (r, v r3.Vec) {
	E := SolveKepler(M, e)
	sinE, cosE := math.Sincos(E)
	j := math.Sqrt(1 - e*e)

	p := UnitE(i, ω, Ω)
	q := UnitPeriV(i, ω, Ω)

	r = r3.Add(r3.Scale(a*(cosE-e), p), r3.Scale(a*j*sinE, q))

	vScale := math.Sqrt(G*m/a) / (1 - e*cosE)
	v = r3.Add(r3.Scale(-vScale*sinE, p), r3.Scale(vScale*j*cosE, q))
	return r, v
}
