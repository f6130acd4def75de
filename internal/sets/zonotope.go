package sets

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
)

// Zonotope is the set { c + G·ξ : ξ ∈ [-1, 1]^m }.
// A nil generator matrix means m = 0 and the zonotope is the point c.
type Zonotope struct {
	center dynamo.State
	gens   *mat.Dense
}

func NewZonotope(center dynamo.State, gens *mat.Dense) (*Zonotope, error) {
	if len(center) == 0 {
		return nil, fmt.Errorf("%w: zonotope needs a non-empty center", dynamo.ErrDimensionMismatch)
	}
	if gens != nil {
		r, c := gens.Dims()
		if r != len(center) {
			return nil, fmt.Errorf("%w: generators have %d rows, center %d entries",
				dynamo.ErrDimensionMismatch, r, len(center))
		}
		if c == 0 {
			gens = nil
		} else {
			gens = mat.DenseCopyOf(gens)
		}
	}
	return &Zonotope{center: center.Clone(), gens: gens}, nil
}

func (z *Zonotope) Dim() int             { return len(z.center) }
func (z *Zonotope) Center() dynamo.State { return z.center.Clone() }

// NumGenerators returns the number of generator columns.
func (z *Zonotope) NumGenerators() int {
	if z.gens == nil {
		return 0
	}
	_, c := z.gens.Dims()
	return c
}

// Generators returns a copy of the generator matrix, nil if there are none.
func (z *Zonotope) Generators() *mat.Dense {
	if z.gens == nil {
		return nil
	}
	return mat.DenseCopyOf(z.gens)
}

// Order is the number of generators divided by the dimension.
func (z *Zonotope) Order() float64 {
	return float64(z.NumGenerators()) / float64(z.Dim())
}

func (z *Zonotope) Clone() *Zonotope {
	c := &Zonotope{center: z.center.Clone()}
	if z.gens != nil {
		c.gens = mat.DenseCopyOf(z.gens)
	}
	return c
}

// Radius returns the half-widths of the interval hull.
func (z *Zonotope) Radius() dynamo.State {
	n := z.Dim()
	r := make(dynamo.State, n)
	for j := 0; j < z.NumGenerators(); j++ {
		for i := 0; i < n; i++ {
			r[i] += math.Abs(z.gens.At(i, j))
		}
	}
	return r
}

func (z *Zonotope) Box() (lo, hi dynamo.State) {
	r := z.Radius()
	return z.center.Sub(r), z.center.Add(r)
}

func (z *Zonotope) Support(d dynamo.State) float64 {
	s := dot(d, z.center)
	for j := 0; j < z.NumGenerators(); j++ {
		g := 0.0
		for i := range z.center {
			g += d[i] * z.gens.At(i, j)
		}
		s += math.Abs(g)
	}
	return s
}

// Contains is exact in two dimensions. In higher dimensions it falls back to
// the interval hull, which may accept points outside the zonotope.
func (z *Zonotope) Contains(p dynamo.State, tol float64) bool {
	if len(p) != z.Dim() {
		return false
	}
	lo, hi := z.Box()
	for i := range p {
		if p[i] < lo[i]-tol || p[i] > hi[i]+tol {
			return false
		}
	}
	if z.Dim() != 2 || z.NumGenerators() == 0 {
		return true
	}

	verts := z.Vertices()
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		ex, ey := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(ex, ey)
		if l == 0 {
			continue
		}
		cross := ex*(p[1]-a[1]) - ey*(p[0]-a[0])
		if cross < -tol*l {
			return false
		}
	}
	return true
}

// LinearMap returns M·Z.
func (z *Zonotope) LinearMap(m mat.Matrix) (*Zonotope, error) {
	r, c := m.Dims()
	if c != z.Dim() {
		return nil, fmt.Errorf("%w: %dx%d map applied to %d-dimensional zonotope",
			dynamo.ErrDimensionMismatch, r, c, z.Dim())
	}

	var cv mat.VecDense
	cv.MulVec(m, mat.NewVecDense(z.Dim(), z.center.Clone()))
	out := &Zonotope{center: dynamo.State(cv.RawVector().Data).Clone()}

	if z.gens != nil {
		var g mat.Dense
		g.Mul(m, z.gens)
		out.gens = &g
	}
	return out, nil
}

// MinkowskiSum returns Z ⊕ other.
func (z *Zonotope) MinkowskiSum(other *Zonotope) (*Zonotope, error) {
	if other.Dim() != z.Dim() {
		return nil, fmt.Errorf("%w: cannot sum %d- and %d-dimensional zonotopes",
			dynamo.ErrDimensionMismatch, z.Dim(), other.Dim())
	}
	out := &Zonotope{center: z.center.Add(other.center)}
	switch {
	case z.gens == nil && other.gens == nil:
	case z.gens == nil:
		out.gens = mat.DenseCopyOf(other.gens)
	case other.gens == nil:
		out.gens = mat.DenseCopyOf(z.gens)
	default:
		var g mat.Dense
		g.Augment(z.gens, other.gens)
		out.gens = &g
	}
	return out, nil
}

// ConvexHullWith over-approximates CH(Z, other) by the zonotope
// ((c1+c2)/2, [(G1+G2)/2, (c1-c2)/2, (G1-G2)/2]).
// The shorter generator list is padded with zero columns.
func (z *Zonotope) ConvexHullWith(other *Zonotope) (*Zonotope, error) {
	n := z.Dim()
	if other.Dim() != n {
		return nil, fmt.Errorf("%w: cannot hull %d- and %d-dimensional zonotopes",
			dynamo.ErrDimensionMismatch, n, other.Dim())
	}

	m := z.NumGenerators()
	if k := other.NumGenerators(); k > m {
		m = k
	}

	cols := make([]dynamo.State, 0, 2*m+1)
	for j := 0; j < m; j++ {
		a, b := z.column(j), other.column(j)
		cols = append(cols, a.Add(b).Scale(0.5))
	}
	cols = append(cols, z.center.Sub(other.center).Scale(0.5))
	for j := 0; j < m; j++ {
		a, b := z.column(j), other.column(j)
		cols = append(cols, a.Sub(b).Scale(0.5))
	}

	return &Zonotope{
		center: z.center.Add(other.center).Scale(0.5),
		gens:   fromColumns(n, dropZero(cols)),
	}, nil
}

// ReduceOrder bounds the order by maxOrder using Girard's box method:
// the generators with the smallest ‖g‖₁−‖g‖∞ are replaced by their
// interval hull.
func (z *Zonotope) ReduceOrder(maxOrder int) *Zonotope {
	if maxOrder < 1 {
		maxOrder = 1
	}
	n := z.Dim()
	m := z.NumGenerators()
	if m <= n*maxOrder {
		return z.Clone()
	}

	cols := make([]dynamo.State, m)
	for j := range cols {
		cols[j] = z.column(j)
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return girardMetric(cols[a]) < girardMetric(cols[b])
	})

	keep := n * (maxOrder - 1)
	reduced := m - keep

	box := make(dynamo.State, n)
	for _, g := range cols[:reduced] {
		for i, v := range g {
			box[i] += math.Abs(v)
		}
	}

	out := make([]dynamo.State, 0, keep+n)
	out = append(out, cols[reduced:]...)
	for i := 0; i < n; i++ {
		g := make(dynamo.State, n)
		g[i] = box[i]
		out = append(out, g)
	}
	return &Zonotope{center: z.center.Clone(), gens: fromColumns(n, dropZero(out))}
}

// Project returns the zonotope restricted to the coordinates dims.
func (z *Zonotope) Project(dims ...int) (*Zonotope, error) {
	p := mat.NewDense(len(dims), z.Dim(), nil)
	for r, d := range dims {
		if d < 0 || d >= z.Dim() {
			return nil, fmt.Errorf("%w: projection index %d out of range [0,%d)",
				dynamo.ErrDimensionMismatch, d, z.Dim())
		}
		p.Set(r, d, 1)
	}
	return z.LinearMap(p)
}

// Vertices returns the counter-clockwise vertices of a two-dimensional
// zonotope. A zonotope without generators yields its center.
func (z *Zonotope) Vertices() []dynamo.State {
	if z.Dim() != 2 {
		return nil
	}
	m := z.NumGenerators()
	gens := make([]dynamo.State, 0, m)
	for j := 0; j < m; j++ {
		g := z.column(j)
		if g[0] == 0 && g[1] == 0 {
			continue
		}
		if g[1] < 0 || (g[1] == 0 && g[0] < 0) {
			g = g.Scale(-1)
		}
		gens = append(gens, g)
	}
	if len(gens) == 0 {
		return []dynamo.State{z.center.Clone()}
	}
	sort.SliceStable(gens, func(a, b int) bool {
		return math.Atan2(gens[a][1], gens[a][0]) < math.Atan2(gens[b][1], gens[b][0])
	})

	v := z.center.Clone()
	for _, g := range gens {
		v = v.Sub(g)
	}

	verts := make([]dynamo.State, 0, 2*len(gens))
	for _, g := range gens {
		verts = append(verts, v)
		v = v.Add(g.Scale(2))
	}
	for _, g := range gens {
		verts = append(verts, v)
		v = v.Sub(g.Scale(2))
	}
	return verts
}

func (z *Zonotope) column(j int) dynamo.State {
	n := z.Dim()
	if z.gens == nil || j >= z.NumGenerators() {
		return make(dynamo.State, n)
	}
	return dynamo.State(mat.Col(nil, j, z.gens))
}

func girardMetric(g dynamo.State) float64 {
	l1 := 0.0
	for _, v := range g {
		l1 += math.Abs(v)
	}
	return l1 - g.NormInf()
}

func dropZero(cols []dynamo.State) []dynamo.State {
	out := cols[:0]
	for _, c := range cols {
		if c.NormInf() != 0 {
			out = append(out, c)
		}
	}
	return out
}

func fromColumns(n int, cols []dynamo.State) *mat.Dense {
	if len(cols) == 0 {
		return nil
	}
	g := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		g.SetCol(j, c)
	}
	return g
}
