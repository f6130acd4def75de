package reach

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/sets"
)

// Solve propagates ivp over span with the given algorithm.
func Solve(ctx context.Context, ivp *LinearIVP, span TimeSpan, alg Algorithm) (*Flowpipe, error) {
	if ivp == nil {
		return nil, fmt.Errorf("%w: nil problem", dynamo.ErrInvalidParameter)
	}
	if err := span.validate(); err != nil {
		return nil, err
	}
	if err := alg.validate(); err != nil {
		return nil, err
	}
	model, _ := ParseModel(string(alg.Model))
	alg.Model = model
	if alg.MaxOrder == 0 {
		alg.MaxOrder = DefaultMaxOrder
	}

	dt := alg.StepSize
	steps := int(math.Ceil(span.Duration()/dt - 1e-9))
	if steps < 1 {
		steps = 1
	}
	if steps > MaxSegments {
		return nil, fmt.Errorf("%w: %d segments exceed the limit of %d",
			dynamo.ErrInvalidParameter, steps, MaxSegments)
	}

	phi := Transition(ivp.A, dt)

	x0, err := sets.ToZonotope(ivp.X0)
	if err != nil {
		return nil, err
	}

	var omega *sets.Zonotope
	switch model {
	case ModelDiscrete:
		omega = x0
	default:
		omega, err = forwardInitial(ivp.A, phi, x0, dt)
		if err != nil {
			return nil, err
		}
	}
	omega = omega.ReduceOrder(alg.MaxOrder)

	fp := &Flowpipe{
		Sets:      make([]ReachSet, 0, steps),
		Algorithm: alg,
		Span:      span,
	}

	for k := 0; k < steps; k++ {
		select {
		case <-ctx.Done():
			return fp, &dynamo.StepError{
				Step:    k,
				Time:    span.Start + float64(k)*dt,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err()),
			}
		default:
		}

		t0 := span.Start + float64(k)*dt
		seg := TimeSpan{Start: t0, End: math.Min(t0+dt, span.End)}
		if model == ModelDiscrete {
			seg.End = t0
		}

		if !omega.Center().IsValid() || !omega.Radius().IsValid() {
			return fp, &dynamo.StepError{Step: k, Time: t0, Wrapped: dynamo.ErrInvalidState}
		}
		fp.Sets = append(fp.Sets, ReachSet{Set: omega, Span: seg})

		if k+1 < steps {
			next, err := omega.LinearMap(phi)
			if err != nil {
				return fp, &dynamo.StepError{Step: k, Time: t0, Wrapped: err}
			}
			omega = next.ReduceOrder(alg.MaxOrder)
		}
	}

	return fp, nil
}

// Transition returns the state transition matrix e^{A·dt}.
func Transition(a mat.Matrix, dt float64) *mat.Dense {
	var adt, phi mat.Dense
	adt.Scale(dt, a)
	phi.Exp(&adt)
	return &phi
}

// forwardInitial encloses all trajectories from x0 over [0, dt].
func forwardInitial(a mat.Matrix, phi *mat.Dense, x0 *sets.Zonotope, dt float64) (*sets.Zonotope, error) {
	mapped, err := x0.LinearMap(phi)
	if err != nil {
		return nil, err
	}
	hull, err := x0.ConvexHullWith(mapped)
	if err != nil {
		return nil, err
	}

	normA := mat.Norm(a, math.Inf(1))
	lo, hi := x0.Box()
	sup := math.Max(lo.NormInf(), hi.NormInf())
	nd := dt * normA
	alpha := (math.Exp(nd) - 1 - nd) * sup
	if alpha <= 0 {
		return hull, nil
	}

	n := x0.Dim()
	ball := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		ball.Set(i, i, alpha)
	}
	bz, err := sets.NewZonotope(make(dynamo.State, n), ball)
	if err != nil {
		return nil, err
	}
	return hull.MinkowskiSum(bz)
}
