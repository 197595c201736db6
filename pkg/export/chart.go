package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
)

func scatterPoints(pop []*model.Individual, symbol string, size int) []opts.ScatterData {
	data := make([]opts.ScatterData, len(pop))
	for i, ind := range pop {
		data[i] = opts.ScatterData{
			Name:       ind.Schedule(),
			Value:      []float64{ind.Cost, ind.Discomfort},
			Symbol:     symbol,
			SymbolSize: size,
		}
	}
	return data
}

// RenderFrontHTML renders the population and its Pareto front in the
// cost/discomfort plane.
func RenderFrontHTML(w io.Writer, snap optimizer.Snapshot) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Pareto front",
			Subtitle: fmt.Sprintf("generation %d, %d schedules on the front", snap.Generation, len(snap.Front)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Cost",
			Type:      "value",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Discomfort (h)",
			Type:      "value",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)
	scatter.AddSeries("Population", scatterPoints(snap.Population, "circle", 5)).
		AddSeries("Pareto front", scatterPoints(snap.Front, "triangle", 10)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderTariffHTML renders the hourly rates as a line chart.
func RenderTariffHTML(w io.Writer, tariff model.TariffSchedule) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Hourly tariff"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rate (per kWh)"}),
	)
	rates := tariff.Rates()
	xAxis := make([]string, len(rates))
	yAxis := make([]opts.LineData, len(rates))
	for h, r := range rates {
		xAxis[h] = hourLabel(h)
		yAxis[h] = opts.LineData{Value: r}
	}
	line.SetXAxis(xAxis).AddSeries("Rate", yAxis)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
