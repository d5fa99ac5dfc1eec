// Package task decodes one whitespace-separated input line into a Task
// and builds its initial state.
//
// Field layout, angles in degrees:
//
//	id t_end out_dt  oct gr gw sl ll  m1 m2 m3
//	a_in a_out e_in e_out i_in i_out ω_in ω_out Ω_in  [M_out]  [S1 [S2 [S3]]]
//
// M_out (outer mean anomaly) is present only under single averaging. Each
// spin is three Cartesian components. The averaging mode and spin count
// are implied by the token count.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/secular"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnprocessable marks a line that does not describe a task.
var ErrUnprocessable = errors.New("task: unprocessable line")

const (
	ctrlOffset = 3
	numFlags   = 5
	argsOffset = ctrlOffset + numFlags
	numElems   = 12
	spinOffset = argsOffset + numElems
)

// layouts maps token count to state layout.
var layouts = map[int]dynamo.Layout{
	20: {Averaging: dynamo.Double, Spins: 0},
	21: {Averaging: dynamo.Single, Spins: 0},
	23: {Averaging: dynamo.Double, Spins: 1},
	24: {Averaging: dynamo.Single, Spins: 1},
	26: {Averaging: dynamo.Double, Spins: 2},
	27: {Averaging: dynamo.Single, Spins: 2},
	29: {Averaging: dynamo.Double, Spins: 3},
	30: {Averaging: dynamo.Single, Spins: 3},
}

// LayoutFor returns the layout implied by a token count.
func LayoutFor(tokens int) (dynamo.Layout, bool) {
	l, ok := layouts[tokens]
	return l, ok
}

// TokenCount is the inverse of LayoutFor.
func TokenCount(l dynamo.Layout) int {
	n := argsOffset + numElems + 3*l.Spins
	if l.Averaging == dynamo.Single {
		n++
	}
	return n
}

type Elements struct {
	A, E      float64
	I         float64
	Periapsis float64
}

type Task struct {
	ID             int
	EndTime        float64
	OutputInterval float64

	Controller secular.Controller
	Layout     dynamo.Layout

	M1, M2, M3 float64
	Inner      Elements
	Outer      Elements
	// Node is the inner longitude of the ascending node; the outer node is
	// Node - 180°.
	Node float64
	// MeanAnomaly of the outer orbit, single averaging only.
	MeanAnomaly float64

	Spins []r3.Vec
}

// Resolve reads the id and layout of a line without decoding the rest.
// Lines that do not describe a task resolve to id 0.
func Resolve(line string) (id int, layout dynamo.Layout, err error) {
	fields := strings.Fields(line)
	layout, ok := LayoutFor(len(fields))
	if !ok {
		return 0, layout, fmt.Errorf("%w: %d tokens", ErrUnprocessable, len(fields))
	}
	id, err = parseID(fields[0])
	if err != nil {
		return 0, layout, err
	}
	return id, layout, nil
}

// parseID reads the leading integer of tok, so "3.5" and "3e2" are both
// task 3.
func parseID(tok string) (int, error) {
	end := 0
	if end < len(tok) && (tok[0] == '+' || tok[0] == '-') {
		end++
	}
	digits := end
	for end < len(tok) && tok[end] >= '0' && tok[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("%w: bad task id %q", ErrUnprocessable, tok)
	}
	id, err := strconv.Atoi(tok[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: bad task id %q", ErrUnprocessable, tok)
	}
	return id, nil
}

// Decode parses a full task line.
func Decode(line string) (*Task, error) {
	fields := strings.Fields(line)
	id, layout, err := Resolve(line)
	if err != nil {
		return nil, err
	}

	v := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrUnprocessable, i, f)
		}
		v[i] = x
	}

	t := &Task{
		ID:             id,
		EndTime:        v[1],
		OutputInterval: v[2],
		Controller:     secular.ControllerFromFlags(layout.Averaging, v[ctrlOffset:argsOffset]),
		Layout:         layout,
	}

	a := v[argsOffset:]
	t.M1, t.M2, t.M3 = a[0], a[1], a[2]
	t.Inner = Elements{A: a[3], E: a[5], I: a[7], Periapsis: a[9]}
	t.Outer = Elements{A: a[4], E: a[6], I: a[8], Periapsis: a[10]}
	t.Node = a[11]

	spins := v[spinOffset:]
	if layout.Averaging == dynamo.Single {
		t.MeanAnomaly = spins[0]
		spins = spins[1:]
	}
	for s := 0; s < layout.Spins; s++ {
		t.Spins = append(t.Spins, r3.Vec{X: spins[3*s], Y: spins[3*s+1], Z: spins[3*s+2]})
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Task) validate() error {
	switch {
	case t.M1 <= 0 || t.M2 <= 0 || t.M3 <= 0:
		return fmt.Errorf("%w: task %d has non-positive mass", ErrUnprocessable, t.ID)
	case t.Inner.A <= 0 || t.Outer.A <= 0:
		return fmt.Errorf("%w: task %d has non-positive semi-major axis", ErrUnprocessable, t.ID)
	case t.Inner.E < 0 || t.Inner.E >= 1 || t.Outer.E < 0 || t.Outer.E >= 1:
		return fmt.Errorf("%w: task %d eccentricity outside [0,1)", ErrUnprocessable, t.ID)
	}
	return nil
}

// Title is the log line header for the task.
func (t *Task) Title(opts secular.Options) string {
	return secular.LogTitle(t.ID, t.Controller, t.Layout.Spins, opts)
}
