package export

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/burndown"
)

// BurndownChart builds a line chart of one logical milestone's day series
func BurndownChart(report *burndown.MilestoneReport) *charts.Line {
	days := report.Days.Days()
	labels := make([]string, len(days))
	data := make([]opts.LineData, len(days))
	for i, dc := range days {
		labels[i] = dc.Date.Format("2006-01-02")
		data[i] = opts.LineData{Value: dc.Count}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: report.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "open issues"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("open", data,
		charts.WithLineChartOpts(opts.LineChart{Step: "end"}),
	)

	return line
}

// WriteChart renders one milestone's burndown as a standalone HTML page
func WriteChart(w io.Writer, report *burndown.MilestoneReport) error {
	if err := BurndownChart(report).Render(w); err != nil {
		return goerr.Wrap(err, "failed to render chart",
			goerr.V("milestone", report.Name))
	}
	return nil
}

// WriteChartPage renders all milestones' burndown charts into one HTML page
func WriteChartPage(w io.Writer, reports []*burndown.MilestoneReport) error {
	page := components.NewPage()
	for _, report := range reports {
		page.AddCharts(BurndownChart(report))
	}

	if err := page.Render(w); err != nil {
		return goerr.Wrap(err, "failed to render chart page")
	}
	return nil
}
