package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ringside-data/stock.report/internal/match"
)

var (
	p1Color    = color.RGBA{R: 66, G: 133, B: 244, A: 255}
	p2Color    = color.RGBA{R: 234, G: 67, B: 53, A: 255}
	killColor  = color.RGBA{R: 52, G: 168, B: 83, A: 255}
	deathColor = color.RGBA{R: 251, G: 188, B: 4, A: 255}
)

// RenderPNG writes a static percent-over-time chart with kill and death
// markers. Samples with no readable percent are left out of the line.
func RenderPNG(w io.Writer, meta Meta, samples []match.Sample, tl *match.Timeline) error {
	series := buildSeries(samples, tl.MatchStart)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", meta.PlayerLabel(match.P1), meta.PlayerLabel(match.P2))
	p.X.Label.Text = "Seconds"
	p.Y.Label.Text = "Percent"

	p1Pts := make(plotter.XYs, 0, len(series.seconds))
	p2Pts := make(plotter.XYs, 0, len(series.seconds))
	for i, sec := range series.seconds {
		if v := series.p1[i]; v != nil {
			p1Pts = append(p1Pts, plotter.XY{X: sec, Y: *v})
		}
		if v := series.p2[i]; v != nil {
			p2Pts = append(p2Pts, plotter.XY{X: sec, Y: *v})
		}
	}

	if len(p1Pts) > 0 {
		line, err := plotter.NewLine(p1Pts)
		if err != nil {
			return fmt.Errorf("failed to build p1 line: %w", err)
		}
		line.Color = p1Color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(meta.PlayerLabel(match.P1), line)
	}
	if len(p2Pts) > 0 {
		line, err := plotter.NewLine(p2Pts)
		if err != nil {
			return fmt.Errorf("failed to build p2 line: %w", err)
		}
		line.Color = p2Color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(meta.PlayerLabel(match.P2), line)
	}

	killPts := make(plotter.XYs, 0, len(tl.Kills))
	for _, k := range tl.Kills {
		killPts = append(killPts, plotter.XY{X: k.Timestamp - tl.MatchStart, Y: k.OpponentPercent})
	}
	if len(killPts) > 0 {
		sc, err := plotter.NewScatter(killPts)
		if err != nil {
			return fmt.Errorf("failed to build kill markers: %w", err)
		}
		sc.GlyphStyle.Color = killColor
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("kills", sc)
	}

	deathPts := make(plotter.XYs, 0, len(tl.StockLosses))
	for _, sl := range tl.StockLosses {
		deathPts = append(deathPts, plotter.XY{X: sl.Timestamp - tl.MatchStart, Y: sl.Percent})
	}
	if len(deathPts) > 0 {
		sc, err := plotter.NewScatter(deathPts)
		if err != nil {
			return fmt.Errorf("failed to build death markers: %w", err)
		}
		sc.GlyphStyle.Color = deathColor
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("deaths", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(12*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
