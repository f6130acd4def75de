package sets

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
)

// Set is a bounded convex set in R^n.
type Set interface {
	Dim() int
	Center() dynamo.State
	// Box returns the tightest axis-aligned bounds.
	Box() (lo, hi dynamo.State)
	// Support returns max over x in the set of d·x.
	Support(d dynamo.State) float64
	Contains(p dynamo.State, tol float64) bool
}

// Singleton is a set holding exactly one point.
type Singleton struct {
	point dynamo.State
}

func NewSingleton(p ...float64) *Singleton {
	return &Singleton{point: dynamo.State(p).Clone()}
}

func (s *Singleton) Dim() int             { return len(s.point) }
func (s *Singleton) Center() dynamo.State { return s.point.Clone() }
func (s *Singleton) Point() dynamo.State  { return s.point.Clone() }

func (s *Singleton) Box() (lo, hi dynamo.State) {
	return s.point.Clone(), s.point.Clone()
}

func (s *Singleton) Support(d dynamo.State) float64 {
	return dot(d, s.point)
}

func (s *Singleton) Contains(p dynamo.State, tol float64) bool {
	if len(p) != len(s.point) {
		return false
	}
	return p.Sub(s.point).NormInf() <= tol
}

func (s *Singleton) String() string {
	return fmt.Sprintf("Singleton(%v)", []float64(s.point))
}

// Hyperrectangle is the box center ± radius.
type Hyperrectangle struct {
	center dynamo.State
	radius dynamo.State
}

func NewHyperrectangle(center, radius dynamo.State) (*Hyperrectangle, error) {
	if len(center) != len(radius) {
		return nil, fmt.Errorf("%w: center has %d entries, radius %d",
			dynamo.ErrDimensionMismatch, len(center), len(radius))
	}
	for i, r := range radius {
		if r < 0 || math.IsNaN(r) {
			return nil, fmt.Errorf("%w: radius[%d] = %g", dynamo.ErrInvalidParameter, i, r)
		}
	}
	return &Hyperrectangle{center: center.Clone(), radius: radius.Clone()}, nil
}

func (h *Hyperrectangle) Dim() int             { return len(h.center) }
func (h *Hyperrectangle) Center() dynamo.State { return h.center.Clone() }
func (h *Hyperrectangle) Radius() dynamo.State { return h.radius.Clone() }

func (h *Hyperrectangle) Box() (lo, hi dynamo.State) {
	return h.center.Sub(h.radius), h.center.Add(h.radius)
}

func (h *Hyperrectangle) Support(d dynamo.State) float64 {
	s := dot(d, h.center)
	for i := range h.radius {
		s += math.Abs(d[i]) * h.radius[i]
	}
	return s
}

func (h *Hyperrectangle) Contains(p dynamo.State, tol float64) bool {
	if len(p) != len(h.center) {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-h.center[i]) > h.radius[i]+tol {
			return false
		}
	}
	return true
}

// AsPoint reports whether s holds exactly one point and returns it.
func AsPoint(s Set) (dynamo.State, bool) {
	switch v := s.(type) {
	case nil:
		return nil, false
	case *Singleton:
		return v.Point(), true
	case *Hyperrectangle:
		for _, r := range v.radius {
			if r != 0 {
				return nil, false
			}
		}
		return v.Center(), true
	case *Zonotope:
		if v.gens == nil || mat.Norm(v.gens, 1) == 0 {
			return v.Center(), true
		}
		return nil, false
	default:
		lo, hi := s.Box()
		if lo.Sub(hi).NormInf() == 0 {
			return lo, true
		}
		return nil, false
	}
}

// ToZonotope converts any supported set into its exact zonotope form.
func ToZonotope(s Set) (*Zonotope, error) {
	switch v := s.(type) {
	case *Zonotope:
		return v.Clone(), nil
	case *Singleton:
		return NewZonotope(v.point, nil)
	case *Hyperrectangle:
		n := len(v.center)
		g := mat.NewDense(n, n, nil)
		for i, r := range v.radius {
			g.Set(i, i, r)
		}
		return NewZonotope(v.center, g)
	default:
		return nil, fmt.Errorf("sets: cannot convert %T to zonotope", s)
	}
}

func dot(a, b dynamo.State) float64 {
	s := 0.0
	for i := range a {
		if i < len(b) {
			s += a[i] * b[i]
		}
	}
	return s
}
