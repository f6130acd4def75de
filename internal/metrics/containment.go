package metrics

import (
	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
)

// Containment is the fraction of observed states lying inside the flowpipe
// at their time. A sound over-approximation scores 1.
type Containment struct {
	name       string
	flowpipe   *reach.Flowpipe
	tol        float64
	violations int
	samples    int
}

func NewContainment(name string, fp *reach.Flowpipe, tol float64) *Containment {
	return &Containment{
		name:     name,
		flowpipe: fp,
		tol:      tol,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(x dynamo.State, t float64) {
	if t > c.flowpipe.Span.End {
		return
	}
	c.samples++
	if !c.flowpipe.Contains(t, x, c.tol) {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

// Violations returns the number of states found outside the flowpipe.
func (c *Containment) Violations() int { return c.violations }

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
