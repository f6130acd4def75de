package viz

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/oscreach/internal/dynamo"
	"github.com/san-kum/oscreach/internal/experiment"
	"github.com/san-kum/oscreach/internal/reach"
	"github.com/san-kum/oscreach/internal/storage"
)

// Coordinate names indexed by state dimension.
var coordNames = []string{"position", "velocity"}

func coordName(dim int) string {
	if dim >= 0 && dim < len(coordNames) {
		return coordNames[dim]
	}
	return fmt.Sprintf("x%d", dim)
}

// Polygon is a closed outline in the phase plane.
type Polygon struct {
	X, Y []float64
}

// Figure is the plottable part of a run.
type Figure struct {
	Title string
	Boxes []reach.Box
	// Polygons are exact phase-plane outlines; when empty the boxes are drawn.
	Polygons []Polygon
	Analytic *dynamo.Trajectory
}

func FromResult(res *experiment.Result) Figure {
	fig := Figure{
		Title: fmt.Sprintf("period=%g α=%g model=%s",
			res.Config.Period, res.Config.Alpha, res.Flowpipe.Algorithm.Model),
		Boxes:    res.Flowpipe.Boxes(),
		Analytic: res.Analytic,
	}
	for _, rs := range res.Flowpipe.Sets {
		verts := rs.Set.Vertices()
		p := Polygon{X: make([]float64, len(verts)), Y: make([]float64, len(verts))}
		for i, v := range verts {
			p.X[i], p.Y[i] = v[0], v[1]
		}
		fig.Polygons = append(fig.Polygons, p)
	}
	return fig
}

func FromStored(meta *storage.RunMetadata, boxes []reach.Box, analytic *dynamo.Trajectory) Figure {
	return Figure{
		Title:    fmt.Sprintf("%s period=%g α=%g model=%s", meta.ID, meta.Period, meta.Alpha, meta.Model),
		Boxes:    boxes,
		Analytic: analytic,
	}
}

// phaseOutlines returns the polygons to draw in the (x, v) plane.
func (f Figure) phaseOutlines() []Polygon {
	if len(f.Polygons) > 0 {
		return f.Polygons
	}
	out := make([]Polygon, 0, len(f.Boxes))
	for _, b := range f.Boxes {
		if len(b.Lo) < 2 {
			continue
		}
		out = append(out, Polygon{
			X: []float64{b.Lo[0], b.Hi[0], b.Hi[0], b.Lo[0]},
			Y: []float64{b.Lo[1], b.Lo[1], b.Hi[1], b.Hi[1]},
		})
	}
	return out
}

// analyticAt returns the analytic sample closest to t.
func (f Figure) analyticAt(t float64, dim int) (float64, bool) {
	tr := f.Analytic
	if tr == nil || tr.Len() == 0 {
		return 0, false
	}
	i := sort.SearchFloat64s(tr.Times, t)
	if i >= tr.Len() {
		i = tr.Len() - 1
	}
	if i > 0 && math.Abs(tr.Times[i-1]-t) < math.Abs(tr.Times[i]-t) {
		i--
	}
	if dim >= len(tr.States[i]) {
		return 0, false
	}
	return tr.States[i][dim], true
}

func (f Figure) bounds(dim int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range f.Boxes {
		if dim < len(b.Lo) {
			lo = math.Min(lo, b.Lo[dim])
			hi = math.Max(hi, b.Hi[dim])
		}
	}
	if f.Analytic != nil {
		for _, s := range f.Analytic.States {
			if dim < len(s) {
				lo = math.Min(lo, s[dim])
				hi = math.Max(hi, s[dim])
			}
		}
	}
	return lo, hi
}
