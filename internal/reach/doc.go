// Package reach propagates sets of initial states through linear
// time-invariant dynamics dX/dt = A·X.
//
// A [LinearIVP] pairs the state matrix with an initial [sets.Set]. [Solve]
// discretizes the time span with a fixed step δ, computes Φ = e^{Aδ}, and
// returns a [Flowpipe]: one zonotope per time segment.
//
// # Approximation models
//
//   - [ModelForward]: the first segment is CH(X0, Φ·X0) bloated by an
//     ∞-norm ball of radius (e^{δ‖A‖}−1−δ‖A‖)·sup‖x‖, which encloses every
//     trajectory over [0, δ]. Later segments are Φ^k times the first.
//   - [ModelDiscrete]: Φ^k·X0 at the sample times only, no bloating.
//
// # Example
//
//	ivp, _ := reach.NewLinearIVP(a, sets.NewSingleton(1, 0))
//	fp, err := reach.Solve(ctx, ivp, reach.TimeSpan{End: 1},
//	    reach.Algorithm{Model: reach.ModelForward, StepSize: 0.005})
package reach
