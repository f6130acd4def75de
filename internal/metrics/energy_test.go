package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/sets"
)

type unitSpring struct{}

func (unitSpring) Energy(x dynamo.State) float64 {
	return 0.5*x[0]*x[0] + 0.5*x[1]*x[1]
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(unitSpring{})

	m.Observe(dynamo.State{1, 0}, 0)
	m.Observe(dynamo.State{0, 1}, 0.1)
	if m.Value() != 0 {
		t.Errorf("expected zero drift on the energy shell, got %f", m.Value())
	}

	m.Observe(dynamo.State{0, math.Sqrt(1.1)}, 0.2)
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestContainment(t *testing.T) {
	box, err := sets.NewHyperrectangle(dynamo.State{0, 0}, dynamo.State{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	z, _ := sets.ToZonotope(box)
	fp := &reach.Flowpipe{
		Sets: []reach.ReachSet{{Set: z, Span: reach.TimeSpan{Start: 0, End: 1}}},
		Span: reach.TimeSpan{Start: 0, End: 1},
	}

	tr := &dynamo.Trajectory{
		Times:  []float64{0, 0.5, 1, 2},
		States: []dynamo.State{{0, 0}, {0.5, -0.5}, {2, 0}, {5, 5}},
	}

	c := NewContainment("containment", fp, 1e-9)
	values := Collect(tr, c)

	if got := values["containment"]; math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("containment = %v, want 2/3", got)
	}
	if c.Violations() != 1 {
		t.Errorf("violations = %d, want 1", c.Violations())
	}
}
