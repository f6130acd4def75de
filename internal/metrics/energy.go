package metrics

import (
	"math"

	"github.com/san-kum/oscreach/internal/dynamo"
)

// EnergyDrift reports the largest relative deviation from the energy of the
// first observed state.
type EnergyDrift struct {
	name     string
	system   dynamo.Hamiltonian
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(h dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		system: h,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.system.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial == 0 {
		e.maxDrift = math.Max(e.maxDrift, math.Abs(energy))
		return
	}
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial)/math.Abs(e.initial))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
