package http

import (
	"net/http"
	"time"

	"bikeshare/internal/cache"
	"bikeshare/internal/core"
	"bikeshare/internal/metric"
)

type dailyRow struct {
	Date    string  `json:"date"`
	Rides   float64 `json:"bike_rides_daily"`
	AvgTemp float64 `json:"avgTemp"`
}

type dailyResponse struct {
	Days []dailyRow `json:"days"`
}

type seasonsResponse struct {
	Seasons []string `json:"seasons"`
}

type stationsResponse struct {
	Seasons      []string            `json:"seasons"`
	TopN         int                 `json:"top_n"`
	Total        float64             `json:"total_value"`
	TotalDisplay string              `json:"total_display"`
	Stations     []core.StationUsage `json:"top_stations"`
}

func (s *Server) handleAPIDaily(w http.ResponseWriter, r *http.Request) {
	daily, err := s.usage.Daily()
	if err != nil {
		writeJSONError(w, dataErrorStatus(err), err.Error())
		return
	}
	resp := dailyResponse{Days: make([]dailyRow, 0, len(daily))}
	for _, d := range daily {
		resp.Days = append(resp.Days, dailyRow{
			Date:    d.Date.Format(time.DateOnly),
			Rides:   d.Rides,
			AvgTemp: d.AvgTemp,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPISeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.usage.Seasons()
	if err != nil {
		writeJSONError(w, dataErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seasonsResponse{Seasons: seasons})
}

func (s *Server) handleAPIStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := parseTopN(q, s.usage.TopN())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel, err := s.usage.Select(r.Context(), seasonSelection(q), n)
	if err != nil {
		writeJSONError(w, dataErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stationsResponse{
		Seasons:      sel.Seasons,
		TopN:         n,
		Total:        sel.Total,
		TotalDisplay: metric.Abbreviate(sel.Total),
		Stations:     sel.Top,
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

type readyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Rankings  cache.Stats       `json:"ranking_cache"`
	Charts    cache.Stats       `json:"chart_cache"`
	Timestamp time.Time         `json:"timestamp"`
}

// handleReady reports 503 until the usage table is loaded. A missing map only
// degrades the geography page and does not fail readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{
		Status:    "ready",
		Checks:    map[string]string{"usage": "ok", "map": "ok"},
		Rankings:  s.usage.CacheStats(),
		Charts:    s.svgCache.Stats(),
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK
	if !s.usage.Ready() {
		resp.Status = "not_ready"
		resp.Checks["usage"] = "not loaded"
		status = http.StatusServiceUnavailable
	}
	if s.mapHTML == "" {
		resp.Checks["map"] = "missing"
	}
	writeJSON(w, status, resp)
}
