package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"bikeshare/internal/content"
	applog "bikeshare/internal/log"
	"bikeshare/internal/metric"
	"bikeshare/internal/middleware/security"
)

type seasonOption struct {
	Name    string
	Checked bool
}

// pageView is the data the page templates render.
type pageView struct {
	Site *content.Site
	Page content.Page

	Seasons          []seasonOption
	TotalRides       string
	TotalExact       string
	StationsChartURL string
	TopN             int

	DailyAvailable bool
	MapAvailable   bool
	DataError      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/pages/"+s.site.Home().Slug, http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.site.Page(mux.Vars(r)["slug"])
	if errors.Is(err, content.ErrUnknownPage) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	view := pageView{Site: s.site, Page: page}
	status := http.StatusOK

	switch page.Kind {
	case content.KindWeather:
		daily, err := s.usage.Daily()
		if err != nil {
			status = dataErrorStatus(err)
			view.DataError = dataErrorMessage(err)
			break
		}
		view.DailyAvailable = len(daily) > 0

	case content.KindStations:
		status = s.fillStations(r, &view)

	case content.KindGeography:
		view.MapAvailable = s.mapHTML != ""
	}

	s.render(w, r, status, view)
}

// fillStations resolves the season filter and ranking for the stations page.
func (s *Server) fillStations(r *http.Request, view *pageView) int {
	q := r.URL.Query()
	n, err := parseTopN(q, s.usage.TopN())
	if err != nil {
		view.DataError = err.Error()
		return http.StatusBadRequest
	}
	view.TopN = n

	all, err := s.usage.Seasons()
	if err != nil {
		view.DataError = dataErrorMessage(err)
		return dataErrorStatus(err)
	}

	chosen := seasonSelection(q)
	sel, err := s.usage.Select(r.Context(), chosen, n)
	if err != nil {
		view.DataError = dataErrorMessage(err)
		return dataErrorStatus(err)
	}

	view.Seasons = make([]seasonOption, 0, len(all))
	for _, season := range all {
		view.Seasons = append(view.Seasons, seasonOption{
			Name:    season,
			Checked: slices.Contains(sel.Seasons, season),
		})
	}
	view.TotalRides = metric.Abbreviate(sel.Total)
	view.TotalExact = metric.Exact(sel.Total)
	view.StationsChartURL = "/charts/stations.svg" + selectionQuery(chosen, n, s.usage.TopN())
	return http.StatusOK
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "page.html", view); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page",
			applog.FieldPage, view.Page.Slug,
			applog.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleMap serves the pre-rendered trip map for the geography page iframe.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if s.mapHTML == "" {
		http.Error(w, "Map file not found.", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Security-Policy", security.MapCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.mapHTML))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	http.Error(w, fmt.Sprintf("Page %q not found", r.URL.Path), http.StatusNotFound)
}

func dataErrorMessage(err error) string {
	return "Usage data is unavailable: " + err.Error()
}
