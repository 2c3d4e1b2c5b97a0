package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bikeshare/internal/config"
	"bikeshare/internal/core"
	applog "bikeshare/internal/log"
	"bikeshare/internal/services"
)

// Query parameters shared by the stations page, chart and API.
const (
	paramSeason   = "season"
	paramFiltered = "filtered"
	paramTopN     = "n"
)

var errInvalidTopN = errors.New("invalid station count")

// seasonSelection returns nil when the request carries no season choice, which
// selects every season. A submitted form with nothing ticked yields an empty,
// non-nil slice.
func seasonSelection(q url.Values) []string {
	seasons, ok := q[paramSeason]
	if !ok && q.Get(paramFiltered) == "" {
		return nil
	}
	if seasons == nil {
		return []string{}
	}
	return seasons
}

// parseTopN reads the ranking size, falling back to def when absent.
func parseTopN(q url.Values, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(paramTopN))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > config.MaxTopStations {
		return 0, fmt.Errorf("%w: %q must be between 1 and %d", errInvalidTopN, raw, config.MaxTopStations)
	}
	return n, nil
}

// selectionQuery rebuilds the query string that reproduces a season choice.
func selectionQuery(seasons []string, n, def int) string {
	q := url.Values{}
	if seasons != nil {
		q.Set(paramFiltered, "1")
		for _, s := range seasons {
			q.Add(paramSeason, s)
		}
	}
	if n != def {
		q.Set(paramTopN, strconv.Itoa(n))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", applog.FieldError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// dataErrorStatus maps service and aggregation errors to HTTP status codes.
func dataErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInconsistentTemperature):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
