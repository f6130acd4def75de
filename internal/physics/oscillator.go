package physics

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/sets"
)

const (
	DefaultPeriod    = 0.5
	DefaultAmplitude = 1.0
)

// Params configures an Oscillator. A nil Initial set defaults to the single
// point [Amplitude, 0].
type Params struct {
	Period    float64
	Amplitude float64
	Initial   sets.Set
}

func DefaultParams() Params {
	return Params{
		Period:    DefaultPeriod,
		Amplitude: DefaultAmplitude,
	}
}

// Oscillator is an immutable single-degree-of-freedom harmonic oscillator.
type Oscillator struct {
	period    float64
	amplitude float64
	omega     float64
	initial   sets.Set
	ivp       *reach.LinearIVP
}

func NewOscillator(p Params) (*Oscillator, error) {
	if !(p.Period > 0) || math.IsInf(p.Period, 0) {
		return nil, fmt.Errorf("%w: period must be positive and finite, got %g", dynamo.ErrInvalidParameter, p.Period)
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) {
		return nil, fmt.Errorf("%w: amplitude must be finite, got %g", dynamo.ErrInvalidParameter, p.Amplitude)
	}

	initial := p.Initial
	if initial == nil {
		initial = sets.NewSingleton(p.Amplitude, 0)
	}
	if initial.Dim() != 2 {
		return nil, fmt.Errorf("%w: initial set must be 2-dimensional [position, velocity], got %d",
			dynamo.ErrDimensionMismatch, initial.Dim())
	}

	omega := 2 * math.Pi / p.Period
	ivp, err := reach.NewLinearIVP(stateMatrix(omega), initial)
	if err != nil {
		return nil, err
	}

	return &Oscillator{
		period:    p.Period,
		amplitude: p.Amplitude,
		omega:     omega,
		initial:   initial,
		ivp:       ivp,
	}, nil
}

func stateMatrix(omega float64) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-omega * omega, 0,
	})
}

func (o *Oscillator) Period() float64           { return o.period }
func (o *Oscillator) Amplitude() float64        { return o.amplitude }
func (o *Oscillator) AngularFrequency() float64 { return o.omega }
func (o *Oscillator) InitialSet() sets.Set      { return o.initial }

// StateMatrix returns a copy of [[0, 1], [-ω², 0]].
func (o *Oscillator) StateMatrix() *mat.Dense { return mat.DenseCopyOf(o.ivp.A) }

// Problem returns the initial-value problem handed to the solver.
func (o *Oscillator) Problem() *reach.LinearIVP {
	return &reach.LinearIVP{A: o.StateMatrix(), X0: o.initial}
}

// Solve is a convenience wrapper around reach.Solve for this problem.
func (o *Oscillator) Solve(ctx context.Context, span reach.TimeSpan, alg reach.Algorithm) (*reach.Flowpipe, error) {
	return reach.Solve(ctx, o.Problem(), span, alg)
}

func (o *Oscillator) StateDim() int { return 2 }

func (o *Oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -o.omega * o.omega * x[0]}
}

// Energy is the mass-normalized total energy ½v² + ½ω²x².
func (o *Oscillator) Energy(x dynamo.State) float64 {
	return 0.5*x[1]*x[1] + 0.5*o.omega*o.omega*x[0]*x[0]
}

func (o *Oscillator) String() string {
	return fmt.Sprintf("Oscillator(period=%g, ω=%.4f, amplitude=%g)", o.period, o.omega, o.amplitude)
}
