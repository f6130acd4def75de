// Package dynamo provides core primitives shared by the oscillator,
// the set-propagation solver and the numerical reference integrators.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical point stepper
//   - [Hamiltonian]: energy of conservative systems
//
// Errors returned by the other packages wrap the sentinels declared in
// errors.go, so callers test them with [errors.Is]:
//
//	_, err := physics.NewOscillator(physics.Params{Period: -1})
//	if errors.Is(err, dynamo.ErrInvalidParameter) {
//	    ...
//	}
package dynamo
