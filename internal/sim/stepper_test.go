package sim_test

import (
	"errors"
	"math"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/flow"
	"github.com/san-kum/mrsim/internal/sim"
)

func dimensionless(dt float64, steps int, r, s float64) config.Dimensionless {
	p, err := config.NewDimensionless(dt, steps, r, s)
	o.Expect(err).NotTo(o.HaveOccurred())
	return p
}

var _ = g.Describe("Stepper", func() {
	g.Context("in a fluid at rest", func() {
		g.It("keeps a particle released at rest at the origin", func() {
			params := config.DefaultParameters()
			params.Timestep = 1e-3
			params.Steps = 100
			p, err := params.Nondimensionalise()
			o.Expect(err).NotTo(o.HaveOccurred())

			s, err := sim.NewStepper(flow.Zero{}, p, 3, r2.Vec{}, r2.Vec{})
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(s.Phase()).To(o.Equal(sim.Stepping))

			for i := 0; i < 100; i++ {
				state, err := s.Advance()
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(state.Position).To(o.Equal(r2.Vec{}))
				o.Expect(state.Slip).To(o.Equal(r2.Vec{}))
			}
			o.Expect(s.Phase()).To(o.Equal(sim.Terminated))
			o.Expect(s.State().Time).To(o.BeNumerically("~", 0.1, 1e-12))

			_, err = s.Advance()
			o.Expect(err).To(o.MatchError(dynamo.ErrTerminated))

			traj := s.Trajectory()
			o.Expect(traj.Len()).To(o.Equal(101))
			o.Expect(traj.Positions()).To(o.HaveEach(r2.Vec{}))
		})

		g.DescribeTable("relaxes an initial slip like the analytic solution",
			func(order int) {
				// R=2, S=1: w(1) from the Laplace transform solution of
				// d/dt(w + ξI) = -(R/S)·w.
				const want = 0.07810951289846343
				s, err := sim.NewStepper(flow.Zero{}, dimensionless(0.005, 200, 2, 1), order, r2.Vec{}, r2.Vec{X: 1})
				o.Expect(err).NotTo(o.HaveOccurred())

				prev := 1.0
				for s.Phase() == sim.Stepping {
					state, err := s.Advance()
					o.Expect(err).NotTo(o.HaveOccurred())
					o.Expect(state.Slip.X).To(o.BeNumerically("<", prev))
					o.Expect(state.Slip.X).To(o.BeNumerically(">", 0))
					prev = state.Slip.X
				}
				final := s.State()
				o.Expect(final.Time).To(o.BeNumerically("~", 1, 1e-12))
				o.Expect(final.Slip.X).To(o.BeNumerically("~", want, 1e-3))
				o.Expect(final.Slip.Y).To(o.BeZero())
			},
			g.Entry("first order", 1),
			g.Entry("second order", 2),
			g.Entry("third order", 3),
		)
	})

	g.It("carries a particle released with zero slip along a uniform flow", func() {
		u := r2.Vec{X: 0.5, Y: -0.25}
		s, err := sim.NewStepper(flow.Uniform{U: u}, dimensionless(0.01, 50, 1, 0.5), 2, r2.Vec{X: 1}, r2.Vec{})
		o.Expect(err).NotTo(o.HaveOccurred())

		for s.Phase() == sim.Stepping {
			_, err := s.Advance()
			o.Expect(err).NotTo(o.HaveOccurred())
		}
		final := s.State()
		o.Expect(final.Position.X).To(o.BeNumerically("~", 1+0.5*0.5, 1e-12))
		o.Expect(final.Position.Y).To(o.BeNumerically("~", -0.25*0.5, 1e-12))
		o.Expect(final.Slip).To(o.Equal(r2.Vec{}))
	})

	g.It("rejects unsupported orders", func() {
		for _, order := range []int{0, 4} {
			_, err := sim.NewStepper(flow.Zero{}, dimensionless(0.01, 10, 1, 1), order, r2.Vec{}, r2.Vec{})
			o.Expect(err).To(o.MatchError(dynamo.ErrInvalidOrder))
		}
	})

	g.It("terminates early on Stop", func() {
		s, err := sim.NewStepper(flow.Zero{}, dimensionless(0.01, 10, 1, 1), 1, r2.Vec{}, r2.Vec{})
		o.Expect(err).NotTo(o.HaveOccurred())
		for i := 0; i < 3; i++ {
			_, err := s.Advance()
			o.Expect(err).NotTo(o.HaveOccurred())
		}
		s.Stop()
		o.Expect(s.Phase()).To(o.Equal(sim.Terminated))
		_, err = s.Advance()
		o.Expect(err).To(o.MatchError(dynamo.ErrTerminated))
		o.Expect(s.Trajectory().Len()).To(o.Equal(4))
	})

	g.Context("when the flow cannot answer", func() {
		var grid *flow.Grid

		g.BeforeEach(func() {
			xs, ys, ts := flow.DefaultAxes()
			var err error
			grid, err = flow.Generate(flow.Uniform{U: r2.Vec{X: 1}}, xs, ys, ts)
			o.Expect(err).NotTo(o.HaveOccurred())
		})

		g.It("fails with the partial trajectory kept", func() {
			s, err := sim.NewStepper(grid, dimensionless(0.05, 100, 1, 1), 3, r2.Vec{X: 1.87}, r2.Vec{})
			o.Expect(err).NotTo(o.HaveOccurred())

			var stepErr error
			for s.Phase() == sim.Stepping {
				if _, stepErr = s.Advance(); stepErr != nil {
					break
				}
			}
			o.Expect(s.Phase()).To(o.Equal(sim.Failed))
			o.Expect(stepErr).To(o.MatchError(dynamo.ErrOutOfDomain))

			var se *dynamo.StepError
			o.Expect(errors.As(stepErr, &se)).To(o.BeTrue())
			o.Expect(se.Step).To(o.Equal(4))
			o.Expect(se.State.Position.X).To(o.BeNumerically("~", 2.02, 1e-9))
			o.Expect(s.Err()).To(o.Equal(stepErr))

			traj := s.Trajectory()
			o.Expect(traj.Len()).To(o.Equal(4))
			o.Expect(traj.Last().Position.X).To(o.BeNumerically("~", 2.02, 1e-9))

			_, err = s.Advance()
			o.Expect(err).To(o.MatchError(dynamo.ErrFailed))
			o.Expect(s.Trajectory().Len()).To(o.Equal(4))
		})
	})

	g.It("fails on the first step when released on a vortex centre", func() {
		s, err := sim.NewStepper(flow.Vortex{Gamma: 1}, dimensionless(0.01, 10, 1, 1), 2, r2.Vec{}, r2.Vec{})
		o.Expect(err).NotTo(o.HaveOccurred())
		_, err = s.Advance()
		o.Expect(err).To(o.MatchError(dynamo.ErrOutOfDomain))
		o.Expect(s.Trajectory().Len()).To(o.Equal(1))
	})

	g.It("rejects a non-finite release", func() {
		_, err := sim.NewStepper(flow.Zero{}, dimensionless(0.01, 10, 1, 1), 2, r2.Vec{X: math.NaN()}, r2.Vec{})
		o.Expect(err).To(o.MatchError(dynamo.ErrNumericOverflow))
	})
})
