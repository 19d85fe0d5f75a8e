package sandbox

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Fixed raster parameters for every rendered chart.
const (
	renderWidth  = 6 * vg.Inch
	renderHeight = 4 * vg.Inch
	renderDPI    = 150
)

// renderPNG renders a figure to a PNG byte buffer at the fixed size and
// DPI. The rendering context is created and destroyed within the call.
func renderPNG(f *figure) ([]byte, error) {
	p := plot.New()
	p.Title.Text = f.title
	p.X.Label.Text = f.xLabel
	p.Y.Label.Text = f.yLabel

	for i, s := range f.series {
		if err := addSeries(p, s); err != nil {
			return nil, fmt.Errorf("series %d: %w", i, err)
		}
	}

	canvas := vgimg.NewWith(vgimg.UseWH(renderWidth, renderHeight), vgimg.UseDPI(renderDPI))
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func addSeries(p *plot.Plot, s series) error {
	switch s.kind {
	case seriesHistogram:
		h, err := plotter.NewHist(plotter.Values(s.values), s.bins)
		if err != nil {
			return fmt.Errorf("failed to build histogram: %w", err)
		}
		p.Add(h)

	case seriesBar:
		b, err := plotter.NewBarChart(plotter.Values(s.values), vg.Points(18))
		if err != nil {
			return fmt.Errorf("failed to build bar chart: %w", err)
		}
		p.Add(b)
		p.NominalX(s.labels...)

	case seriesLine:
		l, err := plotter.NewLine(toXYs(s.xs, s.ys))
		if err != nil {
			return fmt.Errorf("failed to build line: %w", err)
		}
		p.Add(l)

	case seriesScatter:
		sc, err := plotter.NewScatter(toXYs(s.xs, s.ys))
		if err != nil {
			return fmt.Errorf("failed to build scatter: %w", err)
		}
		p.Add(sc)
	}
	return nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}
