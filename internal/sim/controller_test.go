package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/integrators"
	"github.com/san-kum/secular/internal/orbit"
	"github.com/san-kum/secular/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

// scripted accepts or rejects according to verdict and advances by a
// fixed step on acceptance.
type scripted struct {
	calls   int
	step    float64
	verdict func(call int) bool
	err     error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) TryStep(f dynamo.Derivative, x dynamo.State, t, dt *float64) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if !s.verdict(s.calls) {
		*dt /= 2
		return false, nil
	}
	dxdt := make(dynamo.State, len(x))
	f(x, dxdt, *t)
	for i := range x {
		x[i] += s.step * dxdt[i]
	}
	*t += s.step
	return true, nil
}

func always(v bool) func(int) bool { return func(int) bool { return v } }

func decay(x, dxdt dynamo.State, _ float64) {
	for i := range x {
		dxdt[i] = -x[i]
	}
}

type rows struct {
	times []float64
	err   error
}

func (r *rows) WriteRow(t float64, _ dynamo.State) error {
	r.times = append(r.times, t)
	return r.err
}

type counter struct{ n int }

func (c *counter) Name() string                  { return "observed" }
func (c *counter) Observe(dynamo.State, float64) { c.n++ }
func (c *counter) Value() float64                { return float64(c.n) }
func (c *counter) Reset()                        { c.n = 0 }

var _ = Describe("Controller", func() {
	var (
		ctx context.Context
		x0  dynamo.State
		cfg sim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		x0 = dynamo.State{1, 2, 3}
		cfg = sim.DefaultConfig()
	})

	Context("with a stepper that always rejects", func() {
		It("gives up after exactly MaxAttempts tries", func() {
			st := &scripted{step: 0.1, verdict: always(false)}
			c := sim.NewController(st, decay, cfg)

			res, err := c.Run(ctx, x0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.calls).To(Equal(500))
			Expect(res.Status).To(Equal(sim.MaxIterationAborted))
			Expect(c.Status()).To(Equal(sim.MaxIterationAborted))
			Expect(res.Rejected).To(Equal(500))
			Expect(res.Steps).To(BeZero())
			Expect(res.State).To(Equal(x0))
		})

		It("honours a custom attempt bound", func() {
			cfg.MaxAttempts = 7
			st := &scripted{step: 0.1, verdict: always(false)}
			res, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.calls).To(Equal(7))
			Expect(res.Status).To(Equal(sim.MaxIterationAborted))
		})
	})

	Context("with a stepper that always accepts", func() {
		It("finishes at or after the end time with no retries", func() {
			st := &scripted{step: 0.3, verdict: always(true)}
			res, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(sim.Finished))
			Expect(res.Time).To(BeNumerically(">=", 1))
			Expect(res.Rejected).To(BeZero())
			Expect(res.Steps).To(Equal(4))
			Expect(st.calls).To(Equal(4))
		})

		It("leaves the caller's initial state alone", func() {
			st := &scripted{step: 0.5, verdict: always(true)}
			_, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(x0).To(Equal(dynamo.State{1, 2, 3}))
		})
	})

	Context("with intermittent rejections", func() {
		It("retries the same global step and counts rejections", func() {
			// reject every call whose index is a multiple of three
			st := &scripted{step: 0.25, verdict: func(n int) bool { return n%3 != 0 }}
			res, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(sim.Finished))
			Expect(res.Steps).To(Equal(4))
			Expect(res.Rejected).To(Equal(1))
			Expect(st.calls).To(Equal(5))
		})

		It("does not abort when the final allowed attempt succeeds", func() {
			cfg.MaxAttempts = 3
			st := &scripted{step: 1, verdict: func(n int) bool { return n == 3 }}
			res, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(sim.Finished))
			Expect(res.Rejected).To(Equal(2))
		})
	})

	Context("with a termination predicate", func() {
		It("stops early and still samples the stopping state", func() {
			st := &scripted{step: 0.1, verdict: always(true)}
			c := sim.NewController(st, decay, cfg)
			c.SetTermination(func(x dynamo.State, t float64) bool { return x[0] < 0.5 })
			out := &rows{}
			c.AddObserver(sim.NewSampler(out, 0))

			res, err := c.Run(ctx, x0, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(sim.Finished))
			Expect(res.Stopped).To(BeTrue())
			Expect(res.State[0]).To(BeNumerically("<", 0.5))
			Expect(res.Time).To(BeNumerically("<", 100))
			Expect(out.times).To(HaveLen(res.Steps + 1))
			Expect(out.times[len(out.times)-1]).To(Equal(res.Time))
		})
	})

	Context("sampling", func() {
		It("writes the initial state and then one row per interval", func() {
			st := &scripted{step: 0.1, verdict: always(true)}
			c := sim.NewController(st, decay, cfg)
			out := &rows{}
			s := sim.NewSampler(out, 0.45)
			c.AddObserver(s)

			_, err := c.Run(ctx, x0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.times[0]).To(Equal(0.0))
			Expect(len(out.times)).To(BeNumerically(">=", 4))
			Expect(len(out.times)).To(BeNumerically("<=", 5))
			for i := 1; i < len(out.times); i++ {
				Expect(out.times[i] - out.times[i-1]).To(BeNumerically(">=", 0.45-1e-12))
			}
			Expect(s.Rows()).To(Equal(len(out.times)))
		})

		It("treats tiny intervals as off", func() {
			Expect(sim.SamplingOn(0)).To(BeFalse())
			Expect(sim.SamplingOn(5e-15)).To(BeFalse())
			Expect(sim.SamplingOn(1e-3)).To(BeTrue())
		})

		It("aborts the run when a row cannot be written", func() {
			st := &scripted{step: 0.1, verdict: always(true)}
			c := sim.NewController(st, decay, cfg)
			boom := errors.New("disk full")
			c.AddObserver(sim.NewSampler(&rows{err: boom}, 0.1))

			_, err := c.Run(ctx, x0, 1)
			Expect(err).To(MatchError(boom))
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
		})
	})

	Context("metrics", func() {
		It("observes the initial state and every accepted step", func() {
			st := &scripted{step: 0.25, verdict: always(true)}
			c := sim.NewController(st, decay, cfg)
			m := &counter{}
			c.AddMetric(m)

			res, err := c.Run(ctx, x0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("observed", float64(res.Steps+1)))
		})
	})

	Context("failures", func() {
		It("wraps stepper errors with the step context", func() {
			st := &scripted{err: dynamo.ErrStepTooSmall}
			_, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).To(MatchError(dynamo.ErrStepTooSmall))
		})

		It("rejects an invalid initial state", func() {
			st := &scripted{step: 0.1, verdict: always(true)}
			_, err := sim.NewController(st, decay, cfg).Run(ctx, dynamo.State{math.NaN()}, 1)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("rejects an initial state that does not fit the layout", func() {
			st := &scripted{step: 0.1, verdict: always(true)}
			ctrl := sim.NewController(st, decay, cfg)
			ctrl.SetLayout(dynamo.Layout{Averaging: dynamo.Double, Spins: 1})
			_, err := ctrl.Run(ctx, x0, 1)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
			Expect(st.calls).To(BeZero())
		})

		It("rejects a bad configuration", func() {
			cfg.MaxAttempts = 0
			st := &scripted{step: 0.1, verdict: always(true)}
			_, err := sim.NewController(st, decay, cfg).Run(ctx, x0, 1)
			Expect(err).To(HaveOccurred())
			Expect(st.calls).To(BeZero())
		})

		It("stops when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			st := &scripted{step: 0.1, verdict: always(true)}
			_, err := sim.NewController(st, decay, cfg).Run(cctx, x0, 1)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("StopBelowA", func() {
	aCoef := 1 / (orbit.G * 2 * 0.25)

	state := func(a, e float64) dynamo.State {
		x := make(dynamo.State, 12)
		l := orbit.AngularMomentum(1, 1, a) * math.Sqrt(1-e*e)
		x.Set(dynamo.L1, r3.Vec{Z: l})
		x.Set(dynamo.E1, r3.Vec{X: e})
		return x
	}

	It("fires at or below the threshold", func() {
		stop := sim.StopBelowA(aCoef, 0.5)
		Expect(stop(state(1, 0.3), 0)).To(BeFalse())
		Expect(stop(state(0.4, 0.3), 0)).To(BeTrue())
	})

	It("is disabled by a non-positive threshold", func() {
		stop := sim.StopBelowA(aCoef, 0)
		Expect(stop(state(1e-9, 0), 0)).To(BeFalse())
	})
})

var _ = Describe("Controller with a real stepper", func() {
	It("integrates exponential decay to the requested accuracy", func() {
		st := integrators.NewDopri5(integrators.Tolerance{Abs: 1e-12, Rel: 1e-12})
		res, err := sim.NewController(st, decay, sim.DefaultConfig()).Run(context.Background(), dynamo.State{1}, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(sim.Finished))
		Expect(res.State[0]).To(BeNumerically("~", math.Exp(-res.Time), 1e-9))
	})
})
