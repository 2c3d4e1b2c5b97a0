package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: ComponentDataset})

	logger.Info("Usage dataset loaded", FieldRows, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldComponent] != ComponentDataset {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentDataset)
	}
	if rec[FieldRows] != float64(3) {
		t.Errorf("rows = %v, want 3", rec[FieldRows])
	}
}

func TestWithComponentDoesNotDuplicate(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf}).WithComponent(ComponentChart)
	logger.Warn("render failed")

	line := buf.String()
	if strings.Count(line, "component=") != 1 || !strings.Contains(line, "component=chart") {
		t.Errorf("unexpected log line %q", line)
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	got := NewFields().WithOperation(OpRank).WithError(errors.New("boom")).WithClientIP("1.2.3.4").ToSlice()
	want := []any{FieldClientIP, "1.2.3.4", FieldError, "boom", FieldOperation, OpRank}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToSlice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("component = %q, want unknown", l.Component())
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})

	var seen *Logger
	h := Middleware(logger, func(*http.Request) string { return "req-1" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
			w.WriteHeader(http.StatusNotFound)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/missing?x=1", nil))

	if seen == nil || seen.Component() != ComponentHTTP {
		t.Fatalf("handler did not receive the http logger")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry[FieldStatusCode] != float64(404) || entry[FieldRequestID] != "req-1" || entry[FieldPath] != "/pages/missing" {
		t.Errorf("unexpected entry %v", entry)
	}
}
