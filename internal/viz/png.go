package viz

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pngDPI = 150

var (
	setFill    = color.RGBA{R: 70, G: 130, B: 220, A: 90}
	setEdge    = color.RGBA{R: 40, G: 80, B: 160, A: 255}
	analyticFg = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// SavePNG renders position.png, velocity.png and phase.png into dir and
// returns the written paths.
func SavePNG(dir string, fig Figure) ([]string, error) {
	if len(fig.Boxes) == 0 {
		return nil, errNoData
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create directory: %w", err)
	}

	var written []string
	for dim := 0; dim < 2; dim++ {
		p, err := timeFigure(fig, dim)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, coordName(dim)+".png")
		if err := savePlotPNG(p, 8, 5, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	p, err := phaseFigure(fig)
	if err != nil {
		return written, err
	}
	path := filepath.Join(dir, "phase.png")
	if err := savePlotPNG(p, 6, 6, path); err != nil {
		return written, err
	}
	return append(written, path), nil
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func addSetPolygon(p *plot.Plot, pts plotter.XYs) error {
	poly, err := plotter.NewPolygon(pts)
	if err != nil {
		return err
	}
	poly.Color = setFill
	poly.LineStyle.Color = setEdge
	poly.LineStyle.Width = vg.Points(0.5)
	p.Add(poly)
	return nil
}

func addAnalytic(p *plot.Plot, pts plotter.XYs) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Color = analyticFg
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("analytic", line)
	return nil
}

func timeFigure(fig Figure, dim int) (*plot.Plot, error) {
	p := newPlot(fig.Title, "t", coordName(dim))

	for _, b := range fig.Boxes {
		t0, t1 := b.Span.Start, b.Span.End
		err := addSetPolygon(p, plotter.XYs{
			{X: t0, Y: b.Lo[dim]},
			{X: t1, Y: b.Lo[dim]},
			{X: t1, Y: b.Hi[dim]},
			{X: t0, Y: b.Hi[dim]},
		})
		if err != nil {
			return nil, err
		}
	}

	var pts plotter.XYs
	if tr := fig.Analytic; tr != nil {
		pts = make(plotter.XYs, tr.Len())
		for i := range tr.Times {
			pts[i] = plotter.XY{X: tr.Times[i], Y: tr.States[i][dim]}
		}
	}
	if err := addAnalytic(p, pts); err != nil {
		return nil, err
	}
	return p, nil
}

func phaseFigure(fig Figure) (*plot.Plot, error) {
	p := newPlot(fig.Title, coordName(0), coordName(1))

	for _, o := range fig.phaseOutlines() {
		pts := make(plotter.XYs, len(o.X))
		for i := range o.X {
			pts[i] = plotter.XY{X: o.X[i], Y: o.Y[i]}
		}
		if len(pts) == 0 {
			continue
		}
		if err := addSetPolygon(p, pts); err != nil {
			return nil, err
		}
	}

	var pts plotter.XYs
	if tr := fig.Analytic; tr != nil {
		pts = make(plotter.XYs, tr.Len())
		for i, s := range tr.States {
			pts[i] = plotter.XY{X: s[0], Y: s[1]}
		}
	}
	if err := addAnalytic(p, pts); err != nil {
		return nil, err
	}
	return p, nil
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(pngDPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
