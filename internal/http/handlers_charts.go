package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bikeshare/internal/chart"
	applog "bikeshare/internal/log"
)

const dailyChartKey = "daily"

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	svg, err := s.svgCache.GetOrCompute(dailyChartKey, func() ([]byte, error) {
		daily, err := s.usage.Daily()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := chart.RenderDaily(&buf, daily); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.chartError(w, r, "daily", err)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) handleStationsChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := parseTopN(q, s.usage.TopN())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chosen := seasonSelection(q)

	sel, err := s.usage.Select(r.Context(), chosen, n)
	if err != nil {
		s.chartError(w, r, "stations", err)
		return
	}

	key := stationsChartKey(sel.Seasons, n)
	svg, err := s.svgCache.GetOrCompute(key, func() ([]byte, error) {
		var buf bytes.Buffer
		if err := chart.RenderTopStations(&buf, chart.StationsTitle(n), sel.Top); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.chartError(w, r, "stations", err)
		return
	}
	writeSVG(w, svg)
}

func stationsChartKey(seasons []string, n int) string {
	return "stations|" + strconv.Itoa(n) + "|" + strings.Join(seasons, "\x1f")
}

func (s *Server) chartError(w http.ResponseWriter, r *http.Request, name string, err error) {
	status := dataErrorStatus(err)
	if errors.Is(err, chart.ErrNoData) {
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Chart rendering failed",
			applog.FieldChart, name,
			applog.FieldError, err)
	}
	http.Error(w, err.Error(), status)
}

func writeSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(svg)
}
