package reach_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/sets"
)

func oscillatorMatrix(omega float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-omega * omega, 0,
	})
}

var _ = Describe("Solve", func() {
	const (
		omega = 4 * math.Pi
		dt    = 0.005
	)

	var (
		ctx context.Context
		ivp *reach.LinearIVP
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		ivp, err = reach.NewLinearIVP(oscillatorMatrix(omega), sets.NewSingleton(1, 0))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Transition", func() {
		It("matches the closed-form rotation of the oscillator", func() {
			phi := reach.Transition(ivp.A, dt)
			c, s := math.Cos(omega*dt), math.Sin(omega*dt)
			Expect(phi.At(0, 0)).To(BeNumerically("~", c, 1e-12))
			Expect(phi.At(0, 1)).To(BeNumerically("~", s/omega, 1e-12))
			Expect(phi.At(1, 0)).To(BeNumerically("~", -omega*s, 1e-10))
			Expect(phi.At(1, 1)).To(BeNumerically("~", c, 1e-12))
		})
	})

	Context("with the forward model", func() {
		It("covers the span with contiguous segments", func() {
			fp, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 1}, reach.Algorithm{
				Model: reach.ModelForward, StepSize: dt,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fp.Len()).To(Equal(200))
			Expect(fp.Sets[0].Span.Start).To(Equal(0.0))
			Expect(fp.Sets[fp.Len()-1].Span.End).To(BeNumerically("~", 1.0, 1e-12))
			for i := 1; i < fp.Len(); i++ {
				Expect(fp.Sets[i].Span.Start).To(BeNumerically("~", fp.Sets[i-1].Span.End, 1e-12))
			}
		})

		It("encloses the exact trajectory at every sampled time", func() {
			fp, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 1}, reach.Algorithm{
				Model: reach.ModelForward, StepSize: dt,
			})
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k <= 1000; k++ {
				t := float64(k) / 1000
				p := dynamo.State{math.Cos(omega * t), -omega * math.Sin(omega*t)}
				Expect(fp.Contains(t, p, 1e-9)).To(BeTrue(), "t=%.4f p=%v", t, p)
			}
		})

		It("encloses trajectories started from the corners of a box", func() {
			box, err := sets.NewHyperrectangle(dynamo.State{1, 0}, dynamo.State{0.1, 0.5})
			Expect(err).NotTo(HaveOccurred())
			region, err := reach.NewLinearIVP(oscillatorMatrix(omega), box)
			Expect(err).NotTo(HaveOccurred())

			fp, err := reach.Solve(ctx, region, reach.TimeSpan{End: 0.5}, reach.Algorithm{
				Model: reach.ModelForward, StepSize: dt,
			})
			Expect(err).NotTo(HaveOccurred())

			for _, x0 := range []dynamo.State{{0.9, -0.5}, {0.9, 0.5}, {1.1, -0.5}, {1.1, 0.5}} {
				a := math.Sqrt(x0[0]*x0[0] + x0[1]*x0[1]/(omega*omega))
				b := math.Atan2(-x0[1]/omega, x0[0])
				for k := 0; k <= 250; k++ {
					t := float64(k) * 0.002
					p := dynamo.State{a * math.Cos(omega*t+b), -omega * a * math.Sin(omega*t+b)}
					Expect(fp.Contains(t, p, 1e-9)).To(BeTrue(), "x0=%v t=%.4f", x0, t)
				}
			}
		})

		It("keeps the zonotope order bounded", func() {
			box, _ := sets.NewHyperrectangle(dynamo.State{1, 0}, dynamo.State{0.1, 0.1})
			region, _ := reach.NewLinearIVP(oscillatorMatrix(omega), box)
			fp, err := reach.Solve(ctx, region, reach.TimeSpan{End: 0.2}, reach.Algorithm{
				Model: reach.ModelForward, StepSize: dt, MaxOrder: 2,
			})
			Expect(err).NotTo(HaveOccurred())
			for _, rs := range fp.Sets {
				Expect(rs.Set.Order()).To(BeNumerically("<=", 2))
			}
		})
	})

	Context("with the discrete model", func() {
		It("reproduces the exact solution at the sample times", func() {
			fp, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 0.5}, reach.Algorithm{
				Model: reach.ModelDiscrete, StepSize: dt,
			})
			Expect(err).NotTo(HaveOccurred())
			for _, rs := range fp.Sets {
				t := rs.Span.Start
				Expect(rs.Span.End).To(Equal(t))
				c := rs.Set.Center()
				Expect(c[0]).To(BeNumerically("~", math.Cos(omega*t), 1e-9))
				Expect(c[1]).To(BeNumerically("~", -omega*math.Sin(omega*t), 1e-8))
			}
		})
	})

	Context("with invalid input", func() {
		It("rejects a non-positive step size", func() {
			_, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 1}, reach.Algorithm{StepSize: 0})
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects an empty time span", func() {
			_, err := reach.Solve(ctx, ivp, reach.TimeSpan{Start: 1, End: 1}, reach.Algorithm{StepSize: dt})
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects unknown models", func() {
			_, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 1}, reach.Algorithm{Model: "glgm06", StepSize: dt})
			Expect(err).To(MatchError(reach.ErrUnknownModel))
		})

		It("rejects mismatched dimensions", func() {
			_, err := reach.NewLinearIVP(oscillatorMatrix(omega), sets.NewSingleton(1, 0, 0))
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	It("stops when the context is canceled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		fp, err := reach.Solve(cctx, ivp, reach.TimeSpan{End: 1}, reach.Algorithm{StepSize: dt})
		Expect(err).To(MatchError(dynamo.ErrCanceled))
		Expect(err).To(MatchError(context.Canceled))
		Expect(fp.Len()).To(Equal(0))
	})
})
