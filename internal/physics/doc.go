// Package physics provides the harmonic oscillator problem.
//
// [Oscillator] turns physical parameters (period, amplitude, initial set)
// into the first-order linear system
//
//	d/dt [x, v] = [[0, 1], [-ω², 0]] · [x, v],   ω = 2π / period
//
// and packages it as a [reach.LinearIVP]. It also implements
// [dynamo.System] and [dynamo.Hamiltonian] so numerical integrators and
// energy metrics can run on the same problem.
//
// # Closed-form solution
//
// When the initial set is a single point, [Oscillator.AnalyticSolution] and
// [Oscillator.AnalyticDerivative] return x(t) = A·cos(ωt + B) and its
// derivative for validating flowpipes:
//
//	osc, _ := physics.NewOscillator(physics.DefaultParams())
//	x, _ := osc.AnalyticSolution()
//	x(osc.Period() / 2) // ≈ -1
package physics
