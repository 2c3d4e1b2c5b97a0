package http

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSeasonSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no choice", "", nil},
		{"explicit", "season=summer&season=fall", []string{"summer", "fall"}},
		{"submitted empty", "filtered=1", []string{}},
		{"explicit with marker", "filtered=1&season=winter", []string{"winter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got := seasonSelection(q)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("nil mismatch: got %#v, want %#v", got, tt.want)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTopN(t *testing.T) {
	for _, raw := range []string{"0", "-1", "501", "ten"} {
		if _, err := parseTopN(url.Values{"n": {raw}}, 20); !errors.Is(err, errInvalidTopN) {
			t.Errorf("n=%s: expected errInvalidTopN, got %v", raw, err)
		}
	}
	if n, err := parseTopN(url.Values{}, 20); err != nil || n != 20 {
		t.Errorf("default = %d, %v", n, err)
	}
	if n, err := parseTopN(url.Values{"n": {" 7 "}}, 20); err != nil || n != 7 {
		t.Errorf("n=7 = %d, %v", n, err)
	}
}

func TestSelectionQuery(t *testing.T) {
	if got := selectionQuery(nil, 20, 20); got != "" {
		t.Errorf("default selection = %q, want empty", got)
	}
	if got := selectionQuery([]string{}, 20, 20); got != "?filtered=1" {
		t.Errorf("empty selection = %q", got)
	}
	if got := selectionQuery([]string{"summer"}, 5, 20); got != "?filtered=1&n=5&season=summer" {
		t.Errorf("summer selection = %q", got)
	}
}
