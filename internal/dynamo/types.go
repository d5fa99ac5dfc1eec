package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Zero clears s in place.
func (s State) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Slot is the offset of a 3-vector inside a State.
type Slot int

const (
	L1 Slot = 0
	E1 Slot = 3
	L2 Slot = 6
	E2 Slot = 9

	// R and V alias L2 and E2 under single averaging.
	R Slot = 6
	V Slot = 9

	S1 Slot = 12
	S2 Slot = 15
	S3 Slot = 18
)

var slotNames = map[Slot]string{L1: "L1", E1: "e1", L2: "L2|r", E2: "e2|v", S1: "S1", S2: "S2", S3: "S3"}

func (sl Slot) String() string {
	if n, ok := slotNames[sl]; ok {
		return n
	}
	return fmt.Sprintf("slot(%d)", int(sl))
}

func (s State) Vec(sl Slot) r3.Vec {
	return r3.Vec{X: s[sl], Y: s[sl+1], Z: s[sl+2]}
}

func (s State) Set(sl Slot, v r3.Vec) {
	s[sl], s[sl+1], s[sl+2] = v.X, v.Y, v.Z
}

func (s State) Add(sl Slot, v r3.Vec) {
	s[sl] += v.X
	s[sl+1] += v.Y
	s[sl+2] += v.Z
}

func (s State) Sub(sl Slot, v r3.Vec) {
	s[sl] -= v.X
	s[sl+1] -= v.Y
	s[sl+2] -= v.Z
}

// Derivative writes dx/dt at (x, t) into dxdt, overwriting it.
type Derivative func(x, dxdt State, t float64)

type Averaging int

const (
	Single Averaging = iota
	Double
)

func (a Averaging) String() string {
	if a == Double {
		return "DA"
	}
	return "SA"
}

const (
	orbitLen = 12
	MaxSpins = 3
)

// Layout fixes the length and slot meaning of a task's State.
type Layout struct {
	Averaging Averaging
	Spins     int
}

func (l Layout) Len() int { return orbitLen + 3*l.Spins }

func (l Layout) Validate() error {
	if l.Spins < 0 || l.Spins > MaxSpins {
		return fmt.Errorf("%w: spin count %d outside [0,%d]", ErrDimensionMismatch, l.Spins, MaxSpins)
	}
	return nil
}

// Spin returns the slot of spin n (1-based).
func (l Layout) Spin(n int) Slot {
	if n < 1 || n > l.Spins {
		panic(fmt.Sprintf("dynamo: spin %d not present in layout with %d spins", n, l.Spins))
	}
	return S1 + Slot(3*(n-1))
}

// New returns a zeroed State sized for l.
func (l Layout) New() State {
	return make(State, l.Len())
}

// Check reports whether x has exactly the length l requires.
func (l Layout) Check(x State) error {
	if len(x) != l.Len() {
		return fmt.Errorf("%w: state has %d components, layout %s/%d spins needs %d",
			ErrDimensionMismatch, len(x), l.Averaging, l.Spins, l.Len())
	}
	return nil
}
