// Package chart renders the dashboard figures as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bikeshare/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

const (
	DailyTitle      = "Daily Bike Rides and Temperature Correlation - 2022"
	DailyRidesAxis  = "Number of Bike Rides"
	DailyTempAxis   = "Temperature (°C)"
	DailyHeight     = 600
	DailyWidth      = 1200
	ridesSeriesName = "Daily Bike Rides"
	tempSeriesName  = "Daily Temperature"
)

var (
	ridesColor = drawing.ColorFromHex("1f4fd1")
	tempColor  = drawing.ColorFromHex("d62728")
)

// RenderDaily draws rides (left axis, blue) and average temperature (right axis,
// red) against date as an SVG document.
func RenderDaily(w io.Writer, daily []core.DailyUsage) error {
	if len(daily) == 0 {
		return ErrNoData
	}

	dates := make([]time.Time, len(daily))
	rides := make([]float64, len(daily))
	temps := make([]float64, len(daily))
	for i, d := range daily {
		dates[i] = d.Date
		rides[i] = d.Rides
		temps[i] = d.AvgTemp
	}

	graph := gochart.Chart{
		Title:  DailyTitle,
		Width:  DailyWidth,
		Height: DailyHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
			Range:          paddedRange(gochart.TimeToFloat64(dates[0]), gochart.TimeToFloat64(dates[len(dates)-1]), float64(12*time.Hour)),
		},
		YAxis: gochart.YAxis{
			Name:  DailyRidesAxis,
			Range: paddedRange(minMax(rides)),
		},
		YAxisSecondary: gochart.YAxis{
			Name:  DailyTempAxis,
			Range: paddedRange(minMax(temps)),
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    ridesSeriesName,
				XValues: dates,
				YValues: rides,
				Style:   gochart.Style{StrokeColor: ridesColor, StrokeWidth: 2},
			},
			gochart.TimeSeries{
				Name:    tempSeriesName,
				YAxis:   gochart.YAxisSecondary,
				XValues: dates,
				YValues: temps,
				Style:   gochart.Style{StrokeColor: tempColor, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []gochart.Renderable{gochart.LegendThin(&graph)}

	if err := graph.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render daily chart: %w", err)
	}
	return nil
}

func minMax(vs []float64) (lo, hi, pad float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, 1
}

// paddedRange returns nil (auto range) unless lo == hi, which go-chart rejects as a
// zero-width range.
func paddedRange(lo, hi, pad float64) gochart.Range {
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
