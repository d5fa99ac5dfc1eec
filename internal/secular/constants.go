package secular

import (
	"math"

	"github.com/san-kum/secular/internal/orbit"
)

const (
	inner = 0
	outer = 1
)

// Constants are derived once per task from the masses and toggle set and
// are read-only for the rest of the integration.
type Constants struct {
	M1, M2, M3 float64

	Mu    [2]float64
	ACoef [2]float64

	// SL[s][o] couples spin s to orbit o (0 inner, 1 outer).
	SL [3][2]float64
	LL float64

	// KeplerCoef is G(m1+m2+m3), the monopole acceleration of the outer
	// relative orbit under single averaging.
	KeplerCoef float64

	// Quad is G·m1·m2·m3/m12 and Oct is Quad·(m1-m2)/m12; the Lidov-Kozai
	// terms scale them by the current semi-major axes.
	Quad float64
	Oct  float64

	GRCoef  [2]float64
	GWLCoef float64
	GWECoef float64
}

func deSitterCoef(mSelf, mOther float64) float64 {
	return 0.5 * orbit.G / (orbit.C * orbit.C) * (4 + 3*mOther/mSelf)
}

func NewConstants(ctrl Controller, m1, m2, m3 float64) *Constants {
	m12 := m1 + m2
	m123 := m12 + m3

	c := &Constants{M1: m1, M2: m2, M3: m3}

	c.Mu[inner] = m1 * m2 / m12
	c.Mu[outer] = m12 * m3 / m123
	c.ACoef[inner] = 1 / (orbit.G * m12) / c.Mu[inner] / c.Mu[inner]
	c.ACoef[outer] = 1 / (orbit.G * m123) / c.Mu[outer] / c.Mu[outer]

	c.Quad = orbit.G * m1 * m2 * m3 / m12
	c.Oct = c.Quad * (m1 - m2) / m12
	c.KeplerCoef = orbit.G * m123

	cc := orbit.C * orbit.C
	if ctrl.GR {
		c.GRCoef[inner] = 3 * orbit.G * m12 / (cc * c.Mu[inner])
		c.GRCoef[outer] = 3 * orbit.G * m123 / (cc * c.Mu[outer])
	}

	if ctrl.GW {
		c5 := cc * cc * orbit.C
		g3 := orbit.G * orbit.G * orbit.G
		c.GWLCoef = -6.4 * g3 * c.Mu[inner] * m12 * m12 / c5
		c.GWECoef = -304.0 / 15 * g3 * c.Mu[inner] * m12 * m12 / c5
	}

	c.SL[0][inner] = deSitterCoef(m1, m2)
	c.SL[1][inner] = deSitterCoef(m2, m1)
	if ctrl.SL {
		c.SL[0][outer] = deSitterCoef(m12, m3)
		c.SL[1][outer] = c.SL[0][outer]
	}
	c.SL[2][outer] = deSitterCoef(m3, m12)

	if ctrl.LL {
		c.LL = deSitterCoef(m12, m3)
	}

	return c
}

// LKTimescale is the quadrupole Lidov-Kozai timescale for the given
// semi-major axes and outer eccentricity.
func (c *Constants) LKTimescale(aIn, aOut, eOut float64) float64 {
	m12 := c.M1 + c.M2
	n := math.Sqrt(orbit.G * m12 / (aIn * aIn * aIn))
	jOut := math.Sqrt(1 - eOut*eOut)
	ratio := aOut * jOut / aIn
	return m12 / c.M3 * ratio * ratio * ratio / n
}
