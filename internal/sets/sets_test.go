package sets

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscreach/internal/dynamo"
)

func mustZonotope(t *testing.T, c dynamo.State, g *mat.Dense) *Zonotope {
	t.Helper()
	z, err := NewZonotope(c, g)
	if err != nil {
		t.Fatalf("NewZonotope: %v", err)
	}
	return z
}

func TestAsPoint(t *testing.T) {
	box, _ := NewHyperrectangle(dynamo.State{1, 2}, dynamo.State{0.1, 0})
	flat, _ := NewHyperrectangle(dynamo.State{1, 2}, dynamo.State{0, 0})
	pointZ, _ := NewZonotope(dynamo.State{3, 4}, nil)
	zeroGen, _ := NewZonotope(dynamo.State{3, 4}, mat.NewDense(2, 1, []float64{0, 0}))
	segment, _ := NewZonotope(dynamo.State{3, 4}, mat.NewDense(2, 1, []float64{1, 0}))

	tests := []struct {
		name  string
		set   Set
		point bool
	}{
		{"singleton", NewSingleton(1, 0), true},
		{"box", box, false},
		{"flat box", flat, true},
		{"zonotope without generators", pointZ, true},
		{"zonotope with zero generator", zeroGen, true},
		{"segment", segment, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := AsPoint(tt.set)
			if ok != tt.point {
				t.Errorf("AsPoint() ok = %v, want %v", ok, tt.point)
			}
		})
	}
}

func TestHyperrectangle_Validation(t *testing.T) {
	if _, err := NewHyperrectangle(dynamo.State{0, 0}, dynamo.State{1}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := NewHyperrectangle(dynamo.State{0}, dynamo.State{-1}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestZonotope_BoxAndSupport(t *testing.T) {
	z := mustZonotope(t, dynamo.State{1, -1}, mat.NewDense(2, 2, []float64{
		1, 0.5,
		0, 2,
	}))

	lo, hi := z.Box()
	wantLo := dynamo.State{-0.5, -3}
	wantHi := dynamo.State{2.5, 1}
	for i := range lo {
		if math.Abs(lo[i]-wantLo[i]) > 1e-12 || math.Abs(hi[i]-wantHi[i]) > 1e-12 {
			t.Fatalf("Box() = %v..%v, want %v..%v", lo, hi, wantLo, wantHi)
		}
	}

	if got := z.Support(dynamo.State{1, 0}); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("Support(e1) = %v, want 2.5", got)
	}
	if got := z.Support(dynamo.State{0, -1}); math.Abs(got-3) > 1e-12 {
		t.Errorf("Support(-e2) = %v, want 3", got)
	}
}

func TestZonotope_LinearMapAndSum(t *testing.T) {
	sq, _ := NewHyperrectangle(dynamo.State{0, 0}, dynamo.State{1, 1})
	z, err := ToZonotope(sq)
	if err != nil {
		t.Fatal(err)
	}

	rot := mat.NewDense(2, 2, []float64{0, -1, 1, 0})
	r, err := z.LinearMap(rot)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := r.Box()
	if lo[0] != -1 || hi[1] != 1 {
		t.Errorf("rotated square box = %v..%v", lo, hi)
	}

	p := mustZonotope(t, dynamo.State{2, 3}, nil)
	s, err := r.MinkowskiSum(p)
	if err != nil {
		t.Fatal(err)
	}
	if c := s.Center(); c[0] != 2 || c[1] != 3 {
		t.Errorf("sum center = %v", c)
	}
	if s.NumGenerators() != 2 {
		t.Errorf("sum generators = %d, want 2", s.NumGenerators())
	}

	if _, err := z.LinearMap(mat.NewDense(3, 3, nil)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestZonotope_ConvexHullContainsBoth(t *testing.T) {
	a := mustZonotope(t, dynamo.State{0, 0}, mat.NewDense(2, 1, []float64{0.2, 0.1}))
	b := mustZonotope(t, dynamo.State{1, 1}, mat.NewDense(2, 1, []float64{-0.1, 0.3}))

	h, err := a.ConvexHullWith(b)
	if err != nil {
		t.Fatal(err)
	}

	for _, z := range []*Zonotope{a, b} {
		for _, v := range z.Vertices() {
			if !h.Contains(v, 1e-9) {
				t.Errorf("hull misses vertex %v", v)
			}
		}
	}
}

func TestZonotope_ContainsExactIn2D(t *testing.T) {
	// Diamond |x| + |y| <= 1.
	z := mustZonotope(t, dynamo.State{0, 0}, mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		0.5, -0.5,
	}))

	tests := []struct {
		p    dynamo.State
		want bool
	}{
		{dynamo.State{0, 0}, true},
		{dynamo.State{1, 0}, true},
		{dynamo.State{0.4, 0.4}, true},
		{dynamo.State{0.6, 0.6}, false},
		{dynamo.State{-0.9, 0.2}, false},
	}
	for _, tt := range tests {
		if got := z.Contains(tt.p, 1e-12); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if n := len(z.Vertices()); n != 4 {
		t.Errorf("diamond has %d vertices, want 4", n)
	}
}

func TestZonotope_ReduceOrder(t *testing.T) {
	data := make([]float64, 0, 2*8)
	for j := 0; j < 8; j++ {
		a := float64(j) * math.Pi / 8
		data = append(data, math.Cos(a)*0.1)
	}
	for j := 0; j < 8; j++ {
		a := float64(j) * math.Pi / 8
		data = append(data, math.Sin(a)*0.1)
	}
	z := mustZonotope(t, dynamo.State{0, 0}, mat.NewDense(2, 8, data))

	r := z.ReduceOrder(2)
	if r.Order() > 2 {
		t.Errorf("order after reduction = %v, want <= 2", r.Order())
	}
	for _, v := range z.Vertices() {
		if !r.Contains(v, 1e-9) {
			t.Errorf("reduced zonotope misses vertex %v", v)
		}
	}

	same := z.ReduceOrder(10)
	if same.NumGenerators() != 8 {
		t.Errorf("reduction below max order changed generators: %d", same.NumGenerators())
	}
}

func TestZonotope_Project(t *testing.T) {
	z := mustZonotope(t, dynamo.State{1, 2, 3}, mat.NewDense(3, 1, []float64{1, 0, 2}))
	p, err := z.Project(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c := p.Center(); c[0] != 3 || c[1] != 1 {
		t.Errorf("projected center = %v", c)
	}
	if _, err := z.Project(5); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
