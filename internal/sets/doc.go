// Package sets provides the convex set representations propagated by the
// reachability solver.
//
//   - [Singleton]: exactly one point
//   - [Hyperrectangle]: axis-aligned box (center + radius)
//   - [Zonotope]: center plus generator matrix, closed under linear maps
//     and Minkowski sums
//
// Every representation implements [Set]. The solver works on zonotopes;
// [ToZonotope] converts the other variants. [AsPoint] tells whether a set
// degenerates to a single point, which is the precondition for closed-form
// solutions.
package sets
