package secular

import "github.com/san-kum/secular/internal/dynamo"

// Controller is the per-task toggle set.
type Controller struct {
	Averaging dynamo.Averaging
	Oct       bool
	GR        bool
	GW        bool
	SL        bool
	LL        bool
}

const numConfigs = 64

// Mask packs the toggle set into [0, 64).
func (c Controller) Mask() int {
	m := 0
	if c.Averaging == dynamo.Double {
		m |= 1
	}
	if c.Oct {
		m |= 1 << 1
	}
	if c.GR {
		m |= 1 << 2
	}
	if c.GW {
		m |= 1 << 3
	}
	if c.SL {
		m |= 1 << 4
	}
	if c.LL {
		m |= 1 << 5
	}
	return m
}

func ControllerFromMask(m int) Controller {
	c := Controller{
		Averaging: dynamo.Single,
		Oct:       m&(1<<1) != 0,
		GR:        m&(1<<2) != 0,
		GW:        m&(1<<3) != 0,
		SL:        m&(1<<4) != 0,
		LL:        m&(1<<5) != 0,
	}
	if m&1 != 0 {
		c.Averaging = dynamo.Double
	}
	return c
}

// ControllerFromFlags reads the five physics switches in input order
// (oct, gr, gw, sl, ll). Any non-zero value turns a switch on.
func ControllerFromFlags(avg dynamo.Averaging, flags []float64) Controller {
	on := func(i int) bool { return i < len(flags) && flags[i] != 0 }
	return Controller{
		Averaging: avg,
		Oct:       on(0),
		GR:        on(1),
		GW:        on(2),
		SL:        on(3),
		LL:        on(4),
	}
}
