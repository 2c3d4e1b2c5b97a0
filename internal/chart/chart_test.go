package chart

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"bikeshare/internal/core"
)

func TestRenderDaily(t *testing.T) {
	daily := []core.DailyUsage{
		{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Rides: 1200, AvgTemp: 11.6},
		{Date: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), Rides: 900, AvgTemp: 9.1},
		{Date: time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), Rides: 1500, AvgTemp: 4.2},
	}
	var buf bytes.Buffer
	if err := RenderDaily(&buf, daily); err != nil {
		t.Fatalf("RenderDaily: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "<svg") {
		t.Fatalf("output is not svg: %.80q", out)
	}
}

func TestRenderDailySinglePoint(t *testing.T) {
	daily := []core.DailyUsage{{Date: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), Rides: 12, AvgTemp: 25}}
	var buf bytes.Buffer
	if err := RenderDaily(&buf, daily); err != nil {
		t.Fatalf("RenderDaily with one day: %v", err)
	}
}

func TestRenderDailyEmpty(t *testing.T) {
	if err := RenderDaily(&bytes.Buffer{}, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRenderTopStations(t *testing.T) {
	top := []core.StationUsage{
		{Station: "W 21 St & 6 Ave", Value: 200},
		{Station: "West St & Chambers St", Value: 100},
	}
	var buf bytes.Buffer
	if err := RenderTopStations(&buf, StationsTitle(20), top); err != nil {
		t.Fatalf("RenderTopStations: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("output is not svg")
	}
	if !strings.Contains(out, "Top 20 Most Popular Starting Stations") {
		t.Errorf("svg missing title")
	}
}

func TestRenderTopStationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTopStations(&buf, StationsTitle(20), nil); err != nil {
		t.Fatalf("empty ranking should still render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("no output for empty ranking")
	}
}

func TestShade(t *testing.T) {
	if got := shade(100, 100); got != color.Color(blueHigh) {
		t.Errorf("max value shade = %v, want %v", got, blueHigh)
	}
	if got := shade(0, 100); got != color.Color(blueLow) {
		t.Errorf("zero value shade = %v, want %v", got, blueLow)
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("Broadway & E 14 St", 48); got != "Broadway & E 14 St" {
		t.Errorf("short label changed: %q", got)
	}
	if got := truncateLabel("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncateLabel = %q", got)
	}
}
