package sim

import (
	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
)

// StopBelowA fires once the inner semi-major axis, recovered from (L1, e1)
// with aCoef, is at or below threshold. A non-positive threshold never
// fires.
func StopBelowA(aCoef, threshold float64) Termination {
	if threshold <= 0 {
		return func(dynamo.State, float64) bool { return false }
	}
	return func(x dynamo.State, _ float64) bool {
		args := orbit.CalcOrbitArgs(aCoef, x.Vec(dynamo.L1), x.Vec(dynamo.E1))
		return args.A <= threshold
	}
}
