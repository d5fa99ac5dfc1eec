package secular

import (
	"fmt"

	"github.com/san-kum/secular/internal/dynamo"
)

// term adds one physical effect into dxdt.
type term func(c *Constants, x, dxdt dynamo.State)

type namedTerm struct {
	name string
	fn   term
}

// Options carry process-level physics settings that are not part of the
// per-task toggle set.
type Options struct {
	// GROuter adds GR precession of the outer orbit when GR is on and the
	// task is double averaged.
	GROuter bool
}

// plan is the toggle-only part of an evaluator.
type plan struct {
	terms []namedTerm
}

var plans [numConfigs]plan

func init() {
	for m := range plans {
		plans[m] = newPlan(ControllerFromMask(m))
	}
}

func newPlan(ctrl Controller) plan {
	var p plan

	switch {
	case ctrl.Averaging == dynamo.Double && ctrl.Oct:
		p.terms = append(p.terms, namedTerm{"lk-da-oct", lkDoubleOct})
	case ctrl.Averaging == dynamo.Double:
		p.terms = append(p.terms, namedTerm{"lk-da-quad", lkDoubleQuad})
	case ctrl.Oct:
		p.terms = append(p.terms, namedTerm{"lk-sa-oct", lkSingleOct})
	default:
		p.terms = append(p.terms, namedTerm{"lk-sa-quad", lkSingleQuad})
	}

	if ctrl.LL {
		p.terms = append(p.terms, namedTerm{"orbit-orbit", orbitOrbit(outerFrameReader(ctrl.Averaging))})
	}
	if ctrl.GR {
		p.terms = append(p.terms, namedTerm{"gr-in", grInner})
	}
	if ctrl.GW {
		p.terms = append(p.terms, namedTerm{"gw", gwRadiation})
	}
	return p
}

// Evaluator is the composed right-hand side of one task.
type Evaluator struct {
	c     *Constants
	names []string
	terms []term
}

// Derive overwrites dxdt with the sum of every enabled term at x.
func (e *Evaluator) Derive(x, dxdt dynamo.State, _ float64) {
	dxdt.Zero()
	for _, f := range e.terms {
		f(e.c, x, dxdt)
	}
}

// Terms lists the enabled terms in evaluation order.
func (e *Evaluator) Terms() []string {
	return append([]string(nil), e.names...)
}

func (e *Evaluator) add(name string, fn term) {
	e.names = append(e.names, name)
	e.terms = append(e.terms, fn)
}

// Dispatch selects the evaluator for ctrl once, before integration. The
// returned Evaluator evaluates only the enabled terms.
func Dispatch(ctrl Controller, layout dynamo.Layout, c *Constants, opts Options) (*Evaluator, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if ctrl.Averaging != layout.Averaging {
		return nil, fmt.Errorf("secular: controller averaging %s does not match state layout %s", ctrl.Averaging, layout.Averaging)
	}

	p := plans[ctrl.Mask()]
	e := &Evaluator{c: c}
	for _, t := range p.terms {
		e.add(t.name, t.fn)
	}

	if opts.GROuter && ctrl.GR && ctrl.Averaging == dynamo.Double {
		e.add("gr-out", grOuter)
	}

	outerOrb := outerFrameReader(ctrl.Averaging)
	innerSpins := min(layout.Spins, 2)
	for n := 1; n <= innerSpins; n++ {
		slot := layout.Spin(n)
		e.add(fmt.Sprintf("S%d-Lin", n), spinOrbit(slot, c.SL[n-1][inner], innerFrame))
		if ctrl.SL {
			e.add(fmt.Sprintf("S%d-Lout", n), spinOrbit(slot, c.SL[n-1][outer], outerOrb))
		}
	}
	if layout.Spins == 3 {
		e.add("S3-Lout", spinOrbit(layout.Spin(3), c.SL[2][outer], outerOrb))
	}

	return e, nil
}
