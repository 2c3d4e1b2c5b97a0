package chart

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"bikeshare/internal/core"
)

const (
	StationsXAxis  = "Number of Trips"
	StationsYAxis  = "Station Name"
	StationsHeight = 700
	StationsWidth  = 1000

	maxLabelRunes = 48
)

// StationsTitle is the bar chart title for a ranking of n stations.
func StationsTitle(n int) string {
	return fmt.Sprintf("Top %d Most Popular Starting Stations", n)
}

// Endpoints of the sequential blue scale bars are shaded with.
var (
	blueLow  = color.RGBA{R: 0xde, G: 0xeb, B: 0xf7, A: 0xff}
	blueHigh = color.RGBA{R: 0x08, G: 0x30, B: 0x6b, A: 0xff}
)

// RenderTopStations draws a horizontal bar chart of the ranking as SVG. The first
// station is drawn at the bottom of the category axis. An empty ranking still
// yields a titled, empty figure.
func RenderTopStations(w io.Writer, title string, stations []core.StationUsage) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = StationsXAxis
	p.Y.Label.Text = StationsYAxis
	p.X.Min = 0

	hi := 0.0
	for _, s := range stations {
		hi = max(hi, s.Value)
	}

	names := make([]string, len(stations))
	for i, s := range stations {
		names[i] = truncateLabel(s.Station, maxLabelRunes)
		bar, err := plotter.NewBarChart(plotter.Values{s.Value}, vg.Points(18))
		if err != nil {
			return fmt.Errorf("build bar for %q: %w", s.Station, err)
		}
		bar.Horizontal = true
		bar.XMin = float64(i)
		bar.LineStyle.Width = vg.Length(0)
		bar.Color = shade(s.Value, hi)
		p.Add(bar)
	}
	if len(names) > 0 {
		p.NominalY(names...)
	}
	p.Add(plotter.NewGrid())

	c := vgsvg.New(vg.Points(StationsWidth), vg.Points(StationsHeight))
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("render stations chart: %w", err)
	}
	return nil
}

func shade(v, hi float64) color.Color {
	if hi <= 0 {
		return blueHigh
	}
	f := v / hi
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*f)
	}
	return color.RGBA{
		R: lerp(blueLow.R, blueHigh.R),
		G: lerp(blueLow.G, blueHigh.G),
		B: lerp(blueLow.B, blueHigh.B),
		A: 0xff,
	}
}

func truncateLabel(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
