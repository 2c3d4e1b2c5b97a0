package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareGeneratesID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") || len(seen) != len("req_")+16 {
		t.Fatalf("unexpected generated id %q", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), seen)
	}
}

func TestMiddlewareReusesInboundID(t *testing.T) {
	tests := []struct {
		inbound string
		reused  bool
	}{
		{"3f2b8c1e-7d4a-4e0f-9a61-2c5d8e9f0a1b", true},
		{"req_0123456789abcdef", true},
		{"short", false},
		{"bad id with spaces", false},
	}
	for _, tt := range tests {
		var seen string
		h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, tt.inbound)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if (seen == tt.inbound) != tt.reused {
			t.Errorf("inbound %q: got id %q, reused want %v", tt.inbound, seen, tt.reused)
		}
	}
}
