package report

import (
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/corridor-data/corridor.report/internal/fsutil"
	"github.com/corridor-data/corridor.report/internal/traffic"
)

// WriteCharts renders the section's interactive charts to one HTML page:
// the AM/PM LOS grade distribution and the per-group mean V/C bars.
func WriteCharts(fsys fsutil.FileSystem, path string, sec *Section) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Corridor %d section %d", sec.Table.Year, sec.Table.Section)
	page.AddCharts(losDistributionChart(sec), groupVCChart(sec))

	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := page.Render(w); err != nil {
		w.Close()
		return fmt.Errorf("render charts: %w", err)
	}
	return w.Close()
}

func losDistributionChart(sec *Section) *charts.Bar {
	grades := append(traffic.Grades(), traffic.GradeNA)
	axis := make([]string, 0, len(grades))
	for _, g := range grades {
		axis = append(axis, string(g))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Level of Service distribution",
			Subtitle: fmt.Sprintf("year %d section %d", sec.Table.Year, sec.Table.Section),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(axis)

	for _, p := range traffic.PeakPeriods() {
		counts := make(map[traffic.Grade]int)
		for _, g := range sec.LOSDist[p].Grades {
			counts[g.Grade] = g.Count
		}
		data := make([]opts.BarData, 0, len(grades))
		for _, g := range grades {
			data = append(data, opts.BarData{Value: counts[g]})
		}
		bar.AddSeries(p.String(), data)
	}
	return bar
}

func groupVCChart(sec *Section) *charts.Bar {
	amGroups := sec.CapacityGroups[traffic.AM]
	axis := make([]string, 0, len(amGroups))
	for _, g := range amGroups {
		axis = append(axis, fmt.Sprintf("%s %s", g.Direction, g.Facility))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean V/C by direction and facility"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(axis)

	for _, p := range traffic.PeakPeriods() {
		data := make([]opts.BarData, 0, len(axis))
		for _, g := range sec.CapacityGroups[p] {
			data = append(data, opts.BarData{Value: chartValue(g.MeanVC)})
		}
		bar.AddSeries(p.String(), data)
	}
	return bar
}

// chartValue drops undefined ratios from chart series instead of plotting
// NaN.
func chartValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
