package reach

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/sets"
)

const (
	DefaultMaxOrder = 10
	// MaxSegments caps the flowpipe length so a tiny step cannot exhaust memory.
	MaxSegments = 1 << 20
)

var ErrUnknownModel = errors.New("reach: unknown approximation model")

// Model names an approximation model.
type Model string

const (
	ModelForward  Model = "forward"
	ModelDiscrete Model = "discrete"
)

func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case ModelForward, ModelDiscrete:
		return m, nil
	case "":
		return ModelForward, nil
	default:
		return "", fmt.Errorf("%w: %q (available: %s, %s)", ErrUnknownModel, s, ModelForward, ModelDiscrete)
	}
}

// LinearIVP is dX/dt = A·X with X(0) ∈ X0.
type LinearIVP struct {
	A  *mat.Dense
	X0 sets.Set
}

func NewLinearIVP(a *mat.Dense, x0 sets.Set) (*LinearIVP, error) {
	if a == nil || x0 == nil {
		return nil, fmt.Errorf("%w: state matrix and initial set are required", dynamo.ErrInvalidParameter)
	}
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: state matrix is %dx%d, want square", dynamo.ErrDimensionMismatch, r, c)
	}
	if x0.Dim() != r {
		return nil, fmt.Errorf("%w: %dx%d state matrix with %d-dimensional initial set",
			dynamo.ErrDimensionMismatch, r, c, x0.Dim())
	}
	return &LinearIVP{A: mat.DenseCopyOf(a), X0: x0}, nil
}

func (p *LinearIVP) Dim() int {
	r, _ := p.A.Dims()
	return r
}

type TimeSpan struct {
	Start float64
	End   float64
}

func (s TimeSpan) Duration() float64 { return s.End - s.Start }

func (s TimeSpan) Contains(t float64) bool {
	return t >= s.Start && t <= s.End
}

func (s TimeSpan) validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.End, 0) || s.End <= s.Start {
		return fmt.Errorf("%w: time span [%g, %g] is empty", dynamo.ErrInvalidParameter, s.Start, s.End)
	}
	return nil
}

// Algorithm configures a solve.
type Algorithm struct {
	Model    Model
	StepSize float64
	// MaxOrder bounds the zonotope order; zero means DefaultMaxOrder.
	MaxOrder int
}

func (a Algorithm) validate() error {
	if _, err := ParseModel(string(a.Model)); err != nil {
		return err
	}
	if !(a.StepSize > 0) || math.IsInf(a.StepSize, 0) {
		return fmt.Errorf("%w: step size must be positive, got %g", dynamo.ErrInvalidParameter, a.StepSize)
	}
	if a.MaxOrder < 0 {
		return fmt.Errorf("%w: max order must be non-negative, got %d", dynamo.ErrInvalidParameter, a.MaxOrder)
	}
	return nil
}

// ReachSet encloses every reachable state over Span.
type ReachSet struct {
	Set  *sets.Zonotope
	Span TimeSpan
}
