package orbit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	G = 4 * math.Pi * math.Pi
	C = 6.32397263e4

	Year = 1.0
)

// CrossWithCoef returns A·(a×b).
func CrossWithCoef(A float64, a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: A * (a.Y*b.Z - b.Y*a.Z),
		Y: A * (a.Z*b.X - b.Z*a.X),
		Z: A * (a.X*b.Y - b.X*a.Y),
	}
}

// Args holds the scalar quantities derived from an (L, e) pair.
type Args struct {
	ESqr  float64
	JSqr  float64
	J     float64
	LNorm float64
	// L is the angular momentum of the circular orbit with the same
	// semi-major axis, |L|/j.
	L float64
	A float64
}

// CalcOrbitArgs derives Args from the angular momentum and eccentricity
// vectors. coef converts L² into a (see secular.Constants.ACoef).
//
// j² is taken as |1-e²| so a transient |e| ≥ 1 keeps the rates finite.
func CalcOrbitArgs(coef float64, L, e r3.Vec) Args {
	eSqr := r3.Norm2(e)
	jSqr := math.Abs(1 - eSqr)
	j := math.Sqrt(jSqr)
	lNorm := r3.Norm(L)
	lCirc := lNorm / j
	return Args{
		ESqr:  eSqr,
		JSqr:  jSqr,
		J:     j,
		LNorm: lNorm,
		L:     lCirc,
		A:     coef * lCirc * lCirc,
	}
}

// CalcAEff returns coef·|L|²/j, i.e. a·j. The GR, de Sitter and GW rates
// scale with powers of this quantity rather than with a itself.
func CalcAEff(coef float64, L, e r3.Vec) float64 {
	j := math.Sqrt(math.Abs(1 - r3.Norm2(e)))
	return coef * r3.Norm2(L) / j
}

// CalcA returns coef·|L|²/j².
func CalcA(coef float64, L, e r3.Vec) float64 {
	jSqr := math.Abs(1 - r3.Norm2(e))
	return coef * r3.Norm2(L) / jSqr
}
