package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_SlotAccess(t *testing.T) {
	l := Layout{Averaging: Double, Spins: 2}
	x := l.New()

	x.Set(E1, r3.Vec{X: 1, Y: 2, Z: 3})
	x.Add(E1, r3.Vec{X: 1, Y: 1, Z: 1})
	x.Sub(l.Spin(2), r3.Vec{X: 0.5})

	if got := x.Vec(E1); got != (r3.Vec{X: 2, Y: 3, Z: 4}) {
		t.Errorf("e1 = %v", got)
	}
	if got := x.Vec(S2); got != (r3.Vec{X: -0.5}) {
		t.Errorf("S2 = %v", got)
	}
	if x[3] != 2 || x[15] != -0.5 {
		t.Errorf("slots wrote to wrong offsets: %v", x)
	}
	if x.Vec(L1) != (r3.Vec{}) || x.Vec(L2) != (r3.Vec{}) {
		t.Error("untouched slots were modified")
	}
}

func TestState_OuterAliases(t *testing.T) {
	if R != L2 || V != E2 {
		t.Fatal("R/V must alias the outer orbit storage")
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		spins int
		len   int
	}{
		{0, 12}, {1, 15}, {2, 18}, {3, 21},
	}

	for _, tt := range tests {
		l := Layout{Averaging: Single, Spins: tt.spins}
		if l.Len() != tt.len {
			t.Errorf("spins=%d: Len() = %d, want %d", tt.spins, l.Len(), tt.len)
		}
		if err := l.Check(l.New()); err != nil {
			t.Errorf("spins=%d: Check(New()) = %v", tt.spins, err)
		}
	}

	if err := (Layout{Spins: 4}).Validate(); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Validate(4 spins) = %v, want ErrDimensionMismatch", err)
	}
	if err := (Layout{Spins: 1}).Check(make(State, 12)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Check(short) = %v, want ErrDimensionMismatch", err)
	}
}

func TestLayout_SpinOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for absent spin slot")
		}
	}()
	Layout{Spins: 1}.Spin(2)
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Task: 7, Step: 150, Time: 1.5, Wrapped: ErrMaxAttempts}
	if !errors.Is(err, ErrMaxAttempts) {
		t.Error("SimulationError should unwrap to ErrMaxAttempts")
	}
	if want := "task 7 step 150 (t=1.5): dynamo: max iteration number reached"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
