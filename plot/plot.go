// Package plot renders frames and forecast results as echarts line charts.
package plot

import (
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	ActualSeries   = "Actual"
	ForecastSeries = "Forecast"
	UpperSeries    = "Upper"
	LowerSeries    = "Lower"
)

func newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:    opts.Bool(true),
				Trigger: "axis",
			},
		),
		charts.WithDataZoomOpts(
			opts.DataZoom{
				Type:  "slider",
				Start: 0,
				End:   100,
			},
		),
	)
	return line
}

// lineData converts values to chart points where NaN becomes a gap.
func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: "-"})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// LineFrame plots every value column of the frame against its time column.
func LineFrame(title string, frame *timedataset.Frame) (*charts.Line, error) {
	line := newLine(title)
	line.SetXAxis(frame.T)
	for _, name := range frame.Columns() {
		y, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		line.AddSeries(name, lineData(y))
	}
	return line, nil
}

// LineForecast plots the observed valueCol of actual aligned to the prediction times of res
// along with the forecast and, when present, its bands.
func LineForecast(title string, actual *timedataset.Frame, valueCol string, res *forecast.Results) (*charts.Line, error) {
	line := newLine(title)
	line.SetXAxis(res.T)

	if actual != nil {
		y, err := actual.Column(valueCol)
		if err != nil {
			return nil, err
		}
		observed := make(map[time.Time]float64, len(y))
		for i, t := range actual.T {
			observed[t] = y[i]
		}
		aligned := make([]float64, len(res.T))
		for i, t := range res.T {
			v, exists := observed[t]
			if !exists {
				v = math.NaN()
			}
			aligned[i] = v
		}
		line.AddSeries(ActualSeries, lineData(aligned))
	}

	line.AddSeries(ForecastSeries, lineData(res.Forecast))
	if res.HasBands() {
		band := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
		line.AddSeries(UpperSeries, lineData(res.Upper), band).
			AddSeries(LowerSeries, lineData(res.Lower), band)
	}
	return line, nil
}

// RenderPage writes the charts as a single html page.
func RenderPage(w io.Writer, lines ...components.Charter) error {
	page := components.NewPage()
	page.AddCharts(lines...)
	return page.Render(w)
}
