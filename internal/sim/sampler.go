package sim

import "github.com/san-kum/secular/internal/dynamo"

// SamplingEpsilon is the interval at or below which sampling is off.
const SamplingEpsilon = 5e-15

// SamplingOn reports whether interval enables trajectory output.
func SamplingOn(interval float64) bool { return interval > SamplingEpsilon }

// RowWriter receives one trajectory row.
type RowWriter interface {
	WriteRow(t float64, x dynamo.State) error
}

// Sampler forwards the first observed state and then at most one state
// per interval of simulated time.
type Sampler struct {
	w        RowWriter
	interval float64
	last     float64
	started  bool
	rows     int
}

func NewSampler(w RowWriter, interval float64) *Sampler {
	return &Sampler{w: w, interval: interval}
}

func (s *Sampler) Observe(x dynamo.State, t float64) error {
	if s.started && t < s.last+s.interval {
		return nil
	}
	s.started = true
	s.last = t
	s.rows++
	return s.w.WriteRow(t, x)
}

// Rows is the number of rows written so far.
func (s *Sampler) Rows() int { return s.rows }
