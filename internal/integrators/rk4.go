package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/oscreach/internal/dynamo"
)

// RK4 is the classic fourth-order Runge-Kutta stepper. It reuses scratch
// buffers between steps and is not safe for concurrent use.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, sys.Derive(r.scratch, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Integrate steps sys from x0 over [0, duration] and records every state.
func Integrate(integ dynamo.Integrator, sys dynamo.System, x0 dynamo.State, duration, dt float64) (*dynamo.Trajectory, error) {
	if !(dt > 0) || !(duration > 0) {
		return nil, fmt.Errorf("%w: dt and duration must be positive", dynamo.ErrInvalidParameter)
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}

	steps := int(math.Floor(duration/dt + 1e-9))
	tr := &dynamo.Trajectory{
		Times:  make([]float64, 0, steps+1),
		States: make([]dynamo.State, 0, steps+1),
	}

	x := x0.Clone()
	tr.Times = append(tr.Times, 0)
	tr.States = append(tr.States, x.Clone())

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(sys, x, t, dt)
		if !x.IsValid() {
			return tr, &dynamo.StepError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}
		tr.Times = append(tr.Times, float64(i+1)*dt)
		tr.States = append(tr.States, x)
	}
	return tr, nil
}
