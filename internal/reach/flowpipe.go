package reach

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/oscreach/internal/dynamo"
)

// Flowpipe is the time-ordered sequence of reach sets returned by Solve.
type Flowpipe struct {
	Sets      []ReachSet
	Algorithm Algorithm
	Span      TimeSpan
}

func (f *Flowpipe) Len() int { return len(f.Sets) }

func (f *Flowpipe) Dim() int {
	if len(f.Sets) == 0 {
		return 0
	}
	return f.Sets[0].Set.Dim()
}

// Index returns the first segment whose span covers t.
func (f *Flowpipe) Index(t float64) (int, bool) {
	eps := 1e-12 * math.Max(1, math.Abs(t))
	i := sort.Search(len(f.Sets), func(i int) bool {
		return f.Sets[i].Span.End >= t-eps
	})
	if i < len(f.Sets) && f.Sets[i].Span.Start <= t+eps {
		return i, true
	}
	return 0, false
}

func (f *Flowpipe) At(t float64) (ReachSet, bool) {
	i, ok := f.Index(t)
	if !ok {
		return ReachSet{}, false
	}
	return f.Sets[i], true
}

// Contains reports whether p lies in a segment covering t. Adjacent forward
// segments share their boundary time, so both are checked.
func (f *Flowpipe) Contains(t float64, p dynamo.State, tol float64) bool {
	i, ok := f.Index(t)
	if !ok {
		return false
	}
	for ; i < len(f.Sets) && f.Sets[i].Span.Start <= t+tol; i++ {
		if f.Sets[i].Set.Contains(p, tol) {
			return true
		}
	}
	return false
}

// Interval is the projection of one segment onto a coordinate.
type Interval struct {
	Span TimeSpan
	Lo   float64
	Hi   float64
}

func (iv Interval) Width() float64 { return iv.Hi - iv.Lo }

// Bounds returns the per-segment interval hull of coordinate dim.
func (f *Flowpipe) Bounds(dim int) ([]Interval, error) {
	if dim < 0 || dim >= f.Dim() {
		return nil, fmt.Errorf("%w: coordinate %d out of range [0,%d)", dynamo.ErrDimensionMismatch, dim, f.Dim())
	}
	out := make([]Interval, len(f.Sets))
	for i, rs := range f.Sets {
		lo, hi := rs.Set.Box()
		out[i] = Interval{Span: rs.Span, Lo: lo[dim], Hi: hi[dim]}
	}
	return out, nil
}

// MaxWidth returns the widest interval hull of coordinate dim.
func (f *Flowpipe) MaxWidth(dim int) float64 {
	bounds, err := f.Bounds(dim)
	if err != nil {
		return 0
	}
	w := 0.0
	for _, iv := range bounds {
		w = math.Max(w, iv.Width())
	}
	return w
}

// Box is the interval hull of one segment.
type Box struct {
	Span TimeSpan
	Lo   dynamo.State
	Hi   dynamo.State
}

// Boxes returns the interval hull of every segment.
func (f *Flowpipe) Boxes() []Box {
	out := make([]Box, len(f.Sets))
	for i, rs := range f.Sets {
		lo, hi := rs.Set.Box()
		out[i] = Box{Span: rs.Span, Lo: lo, Hi: hi}
	}
	return out
}
