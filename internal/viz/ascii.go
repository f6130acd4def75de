package viz

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"
)

var errNoData = errors.New("viz: no flowpipe segments to plot")

// TimePlot draws the lower and upper bound of coordinate dim against time,
// with the analytic solution overlaid when present.
func TimePlot(fig Figure, dim, width, height int) (string, error) {
	if len(fig.Boxes) == 0 {
		return "", errNoData
	}
	if dim < 0 || dim >= len(fig.Boxes[0].Lo) {
		return "", fmt.Errorf("viz: coordinate %d out of range", dim)
	}

	lo := make([]float64, len(fig.Boxes))
	hi := make([]float64, len(fig.Boxes))
	ref := make([]float64, 0, len(fig.Boxes))
	for i, b := range fig.Boxes {
		lo[i], hi[i] = b.Lo[dim], b.Hi[dim]
		mid := 0.5 * (b.Span.Start + b.Span.End)
		if v, ok := fig.analyticAt(mid, dim); ok {
			ref = append(ref, v)
		}
	}

	series := [][]float64{lo, hi}
	colors := []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Blue}
	if len(ref) == len(lo) {
		series = append(series, ref)
		colors = append(colors, asciigraph.Red)
	}

	t0 := fig.Boxes[0].Span.Start
	t1 := fig.Boxes[len(fig.Boxes)-1].Span.End
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("%s bounds, t ∈ [%.3g, %.3g]", coordName(dim), t0, t1)),
	), nil
}

// PhasePlot draws the flowpipe in the (position, velocity) plane on a
// Braille canvas of width x height cells.
func PhasePlot(fig Figure, width, height int) (string, error) {
	if len(fig.Boxes) == 0 {
		return "", errNoData
	}

	c := NewCanvas(width, height)
	xlo, xhi := fig.bounds(0)
	vlo, vhi := fig.bounds(1)
	c.SetWindow(xlo, xhi, vlo, vhi)

	for _, p := range fig.phaseOutlines() {
		c.Polygon(p.X, p.Y)
	}
	if tr := fig.Analytic; tr != nil {
		for i := 1; i < tr.Len(); i++ {
			a, b := tr.States[i-1], tr.States[i]
			c.Line(a[0], a[1], b[0], b[1])
		}
	}

	caption := fmt.Sprintf("velocity ∈ [%.3g, %.3g] vs position ∈ [%.3g, %.3g]", vlo, vhi, xlo, xhi)
	return c.String() + caption + "\n", nil
}
