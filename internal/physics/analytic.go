package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/sets"
)

// AnalyticOption overrides the amplitude/phase used by the closed-form helpers.
type AnalyticOption func(*analyticParams)

type analyticParams struct {
	amplitude float64
	phase     float64
	x0, v0    float64
	fromState bool
}

// WithAmplitude sets A; ignored when WithInitialCondition is also given.
func WithAmplitude(a float64) AnalyticOption {
	return func(p *analyticParams) { p.amplitude = a }
}

// WithPhase sets B; ignored when WithInitialCondition is also given.
func WithPhase(b float64) AnalyticOption {
	return func(p *analyticParams) { p.phase = b }
}

// WithInitialCondition derives A and B from x(0) = x0, v(0) = v0.
func WithInitialCondition(x0, v0 float64) AnalyticOption {
	return func(p *analyticParams) {
		p.x0, p.v0 = x0, v0
		p.fromState = true
	}
}

// AmplitudePhase recovers A and B such that A·cos(B) = x0 and
// -ω·A·sin(B) = v0. For x0 > 0, B = atan(-v0/(ω·x0)); at x0 = 0 the phase
// is -π/2 for v0 > 0 and π/2 for v0 < 0.
func AmplitudePhase(omega, x0, v0 float64) (a, b float64) {
	a = math.Sqrt(x0*x0 + v0*v0/(omega*omega))
	b = math.Atan2(-v0/omega, x0)
	return a, b
}

func (o *Oscillator) resolve(opts []AnalyticOption) (a, b float64, err error) {
	if _, ok := sets.AsPoint(o.initial); !ok {
		return 0, 0, fmt.Errorf("%w: closed-form solution needs a single-point initial state, got %T",
			dynamo.ErrPrecondition, o.initial)
	}

	p := analyticParams{amplitude: o.amplitude}
	for _, opt := range opts {
		opt(&p)
	}
	if p.fromState {
		p.amplitude, p.phase = AmplitudePhase(o.omega, p.x0, p.v0)
	}
	return p.amplitude, p.phase, nil
}

// AnalyticSolution returns t ↦ A·cos(ωt + B).
func (o *Oscillator) AnalyticSolution(opts ...AnalyticOption) (func(t float64) float64, error) {
	a, b, err := o.resolve(opts)
	if err != nil {
		return nil, err
	}
	omega := o.omega
	return func(t float64) float64 {
		return a * math.Cos(omega*t+b)
	}, nil
}

// AnalyticDerivative returns t ↦ -ω·A·sin(ωt + B).
func (o *Oscillator) AnalyticDerivative(opts ...AnalyticOption) (func(t float64) float64, error) {
	a, b, err := o.resolve(opts)
	if err != nil {
		return nil, err
	}
	omega := o.omega
	return func(t float64) float64 {
		return -omega * a * math.Sin(omega*t+b)
	}, nil
}

// AnalyticTrajectory samples both closed-form helpers on [0, horizon] at
// the given spacing, starting from the problem's own initial point.
func (o *Oscillator) AnalyticTrajectory(horizon, dt float64) (*dynamo.Trajectory, error) {
	if !(dt > 0) || !(horizon > 0) {
		return nil, fmt.Errorf("%w: horizon and spacing must be positive", dynamo.ErrInvalidParameter)
	}
	p, ok := sets.AsPoint(o.initial)
	if !ok {
		return nil, fmt.Errorf("%w: closed-form solution needs a single-point initial state", dynamo.ErrPrecondition)
	}
	x, err := o.AnalyticSolution(WithInitialCondition(p[0], p[1]))
	if err != nil {
		return nil, err
	}
	v, err := o.AnalyticDerivative(WithInitialCondition(p[0], p[1]))
	if err != nil {
		return nil, err
	}

	n := int(math.Floor(horizon/dt+1e-9)) + 1
	tr := &dynamo.Trajectory{
		Times:  make([]float64, 0, n),
		States: make([]dynamo.State, 0, n),
	}
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, dynamo.State{x(t), v(t)})
	}
	return tr, nil
}
