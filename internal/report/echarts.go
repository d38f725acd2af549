package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/units"
)

// RenderHTML writes a self-contained HTML page with two charts: both
// players' percent traces with kill and death markers, and the 1 Hz
// stage-control differential.
func RenderHTML(w io.Writer, meta Meta, samples []match.Sample, tl *match.Timeline) error {
	series := buildSeries(samples, tl.MatchStart)

	labels := make([]string, len(series.seconds))
	for i, sec := range series.seconds {
		labels[i] = units.FormatClock(sec)
	}

	percents := percentChart(meta, tl, series, labels)
	control := stageControlChart(tl)

	page := components.NewPage()
	page.AddCharts(percents, control)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render match chart: %w", err)
	}
	return nil
}

func percentChart(meta Meta, tl *match.Timeline, series displaySeries, labels []string) *charts.Line {
	p1Data := make([]opts.LineData, len(series.p1))
	p2Data := make([]opts.LineData, len(series.p2))
	for i := range series.p1 {
		p1Data[i] = opts.LineData{Value: lineValue(series.p1[i])}
		p2Data[i] = opts.LineData{Value: lineValue(series.p2[i])}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Match Report", Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s vs %s", meta.PlayerLabel(match.P1), meta.PlayerLabel(match.P2)),
			Subtitle: fmt.Sprintf("match=%s winner=%s duration=%s", meta.MatchID, tl.Stats.Winner, units.FormatClock(tl.Stats.Duration)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Clock"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Percent"}),
	)

	line.SetXAxis(labels).
		AddSeries(meta.PlayerLabel(match.P1), p1Data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})).
		AddSeries(meta.PlayerLabel(match.P2), p2Data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	if len(labels) > 0 {
		line.Overlap(eventMarkers(tl, series, labels))
	}
	return line
}

// eventMarkers places kills and deaths on the percent axis at the
// nearest plotted sample.
func eventMarkers(tl *match.Timeline, series displaySeries, labels []string) *charts.Scatter {
	kills := make([]opts.ScatterData, 0, len(tl.Kills))
	for _, k := range tl.Kills {
		idx := series.nearestIndex(k.Timestamp - tl.MatchStart)
		kills = append(kills, opts.ScatterData{Value: []interface{}{labels[idx], k.OpponentPercent}})
	}
	deaths := make([]opts.ScatterData, 0, len(tl.StockLosses))
	for _, sl := range tl.StockLosses {
		idx := series.nearestIndex(sl.Timestamp - tl.MatchStart)
		deaths = append(deaths, opts.ScatterData{Value: []interface{}{labels[idx], sl.Percent}})
	}

	scatter := charts.NewScatter()
	scatter.AddSeries("kills", kills,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#35b779"}))
	scatter.AddSeries("deaths", deaths,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))
	return scatter
}

func stageControlChart(tl *match.Timeline) *charts.Line {
	labels := make([]string, len(tl.StageControl))
	data := make([]opts.LineData, len(tl.StageControl))
	for i, sc := range tl.StageControl {
		labels[i] = units.FormatClock(sc.Timestamp - tl.MatchStart)
		data[i] = opts.LineData{Value: sc.Control}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Stage control",
			Subtitle: fmt.Sprintf("rolling damage differential, samples=%d", len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Clock"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Control"}),
	)
	line.SetXAxis(labels).
		AddSeries("control", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// lineValue turns a nullable percent into the echarts missing-data
// sentinel so OCR gaps render as gaps.
func lineValue(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}
