package metrics

import "github.com/san-kum/oscreach/internal/dynamo"

// Metric accumulates a scalar over a sampled trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Collect feeds every sample of tr to each metric and returns the values
// keyed by name.
func Collect(tr *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, t := range tr.Times {
			m.Observe(tr.States[i], t)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
