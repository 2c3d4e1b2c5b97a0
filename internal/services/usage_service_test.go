package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"bikeshare/internal/core"
)

type fakeReader struct {
	table core.Table
	err   error
	calls int
}

func (f *fakeReader) ReadUsage(ctx context.Context) (core.Table, error) {
	f.calls++
	return f.table, f.err
}

func day(m time.Month, d int) time.Time {
	return time.Date(2022, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureTable() core.Table {
	return core.NewTable([]core.UsageRecord{
		{Date: day(1, 3), StartStation: "A", Value: 40, AvgTemp: 2, Season: "winter"},
		{Date: day(6, 1), StartStation: "A", Value: 60, AvgTemp: 25, Season: "summer"},
		{Date: day(6, 1), StartStation: "B", Value: 50, AvgTemp: 25, Season: "summer"},
		{Date: day(6, 2), StartStation: "C", Value: 200, AvgTemp: 27, Season: "summer"},
		{Date: day(10, 5), StartStation: "B", Value: 10, AvgTemp: 15, Season: "fall"},
	})
}

func newLoadedService(t *testing.T) (*UsageService, *fakeReader) {
	t.Helper()
	r := &fakeReader{table: fixtureTable()}
	svc := NewUsageService(r, Options{TopN: 2})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, r
}

func TestUsageServiceNotLoaded(t *testing.T) {
	svc := NewUsageService(&fakeReader{}, Options{})
	if svc.Ready() {
		t.Fatal("service should not be ready before Load")
	}
	if _, err := svc.Seasons(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Seasons: expected ErrNotLoaded, got %v", err)
	}
	if _, err := svc.Daily(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Daily: expected ErrNotLoaded, got %v", err)
	}
	if _, err := svc.Select(context.Background(), nil, 0); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Select: expected ErrNotLoaded, got %v", err)
	}
}

func TestUsageServiceLoadFailureKeepsSnapshot(t *testing.T) {
	svc, r := newLoadedService(t)

	boom := errors.New("disk gone")
	r.err = boom
	if err := svc.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if !svc.Ready() {
		t.Fatal("previous snapshot should survive a failed reload")
	}
}

func TestUsageServiceSeasonsAndDaily(t *testing.T) {
	svc, _ := newLoadedService(t)

	seasons, err := svc.Seasons()
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	if diff := cmp.Diff([]string{"winter", "summer", "fall"}, seasons); diff != "" {
		t.Errorf("seasons mismatch (-want +got):\n%s", diff)
	}

	daily, err := svc.Daily()
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	want := []core.DailyUsage{
		{Date: day(1, 3), Rides: 40, AvgTemp: 2},
		{Date: day(6, 1), Rides: 110, AvgTemp: 25},
		{Date: day(6, 2), Rides: 200, AvgTemp: 27},
		{Date: day(10, 5), Rides: 10, AvgTemp: 15},
	}
	if diff := cmp.Diff(want, daily); diff != "" {
		t.Errorf("daily mismatch (-want +got):\n%s", diff)
	}
}

func TestUsageServiceDailyInconsistentTemperature(t *testing.T) {
	r := &fakeReader{table: core.NewTable([]core.UsageRecord{
		{Date: day(6, 1), StartStation: "A", Value: 1, AvgTemp: 25, Season: "summer"},
		{Date: day(6, 1), StartStation: "B", Value: 1, AvgTemp: 26, Season: "summer"},
	})}
	svc := NewUsageService(r, Options{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load should succeed even when daily aggregation fails: %v", err)
	}
	if _, err := svc.Daily(); !errors.Is(err, core.ErrInconsistentTemperature) {
		t.Fatalf("expected ErrInconsistentTemperature, got %v", err)
	}
}

func TestUsageServiceSelect(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		seasons []string
		n       int
		want    Selection
	}{
		{
			name:    "all seasons by default",
			seasons: nil,
			want: Selection{
				Seasons: []string{"fall", "summer", "winter"},
				Total:   360,
				Top:     []core.StationUsage{{Station: "C", Value: 200}, {Station: "A", Value: 100}},
			},
		},
		{
			name:    "summer only",
			seasons: []string{"summer"},
			n:       3,
			want: Selection{
				Seasons: []string{"summer"},
				Total:   310,
				Top: []core.StationUsage{
					{Station: "C", Value: 200},
					{Station: "A", Value: 60},
					{Station: "B", Value: 50},
				},
			},
		},
		{
			name:    "empty selection",
			seasons: []string{},
			want:    Selection{Seasons: []string{}, Total: 0, Top: []core.StationUsage{}},
		},
		{
			name:    "unknown season",
			seasons: []string{"monsoon"},
			want:    Selection{Seasons: []string{"monsoon"}, Total: 0, Top: []core.StationUsage{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Select(ctx, tt.seasons, tt.n)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUsageServiceSelectCaches(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	first, err := svc.Select(ctx, []string{"summer", "winter"}, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	first.Top[0].Value = -1

	second, err := svc.Select(ctx, []string{" winter", "summer", "summer"}, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if second.Top[0].Value == -1 {
		t.Fatal("cached selection was mutated through a returned slice")
	}
	if st := svc.CacheStats(); st.Hits != 1 || st.Size != 1 {
		t.Errorf("cache stats = %+v, want 1 hit and 1 entry", st)
	}

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if st := svc.CacheStats(); st.Size != 0 {
		t.Errorf("reload should purge rankings, size = %d", st.Size)
	}
}

func TestNormalizeSeasons(t *testing.T) {
	got := NormalizeSeasons([]string{"winter", " summer ", "", "winter"})
	if diff := cmp.Diff([]string{"summer", "winter"}, got); diff != "" {
		t.Errorf("NormalizeSeasons mismatch (-want +got):\n%s", diff)
	}
	if got := NormalizeSeasons(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeSeasons(nil) = %#v, want empty non-nil", got)
	}
}
