// Package dashboard renders the trend ledger as a standalone HTML page
// with interactive charts.
package dashboard

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/greywatch/srev/internal/trend"
)

// Render writes an HTML dashboard for the given ledger rows: score
// trends over time plus per-project token totals.
func Render(rows []trend.Row, w io.Writer) error {
	if len(rows) == 0 {
		return fmt.Errorf("no ledger rows to render")
	}

	page := components.NewPage()
	page.PageTitle = "srev score trends"
	page.AddCharts(scoreLine(rows), tokensBar(rows))
	return page.Render(w)
}

// scoreLine charts composite and efficiency per session, in ledger order.
func scoreLine(rows []trend.Row) *charts.Line {
	dates := make([]string, 0, len(rows))
	composite := make([]opts.LineData, 0, len(rows))
	efficiency := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.Date)
		composite = append(composite, opts.LineData{Value: r.Composite})
		efficiency = append(efficiency, opts.LineData{Value: r.Efficiency})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Session scores over time",
			Subtitle: fmt.Sprintf("sessions=%d", len(rows)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "score"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(dates).
		AddSeries("composite", composite).
		AddSeries("efficiency", efficiency).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// tokensBar charts total uncached tokens per project, largest first.
func tokensBar(rows []trend.Row) *charts.Bar {
	byProject := make(map[string]int64)
	for _, r := range rows {
		byProject[r.Project] += r.UncachedTokens
	}

	projects := make([]string, 0, len(byProject))
	for p := range byProject {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return byProject[projects[i]] > byProject[projects[j]]
	})

	data := make([]opts.BarData, 0, len(projects))
	for _, p := range projects {
		data = append(data, opts.BarData{Value: byProject[p]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1100px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Uncached tokens by project"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(projects).AddSeries("uncached tokens", data)
	return bar
}
