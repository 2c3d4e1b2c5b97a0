package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	applog "bikeshare/internal/log"
	"bikeshare/internal/services"
)

type fakeUsage struct{ err error }

func (f fakeUsage) ReadUsage(ctx context.Context) (core.Table, error) {
	if f.err != nil {
		return core.Table{}, f.err
	}
	return core.NewTable([]core.UsageRecord{
		{Date: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), StartStation: "A", Value: 5, AvgTemp: 25, Season: "summer"},
	}), nil
}

type fakeMap struct {
	html string
	err  error
}

func (f fakeMap) ReadMap(ctx context.Context) (string, error) {
	return f.html, f.err
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestLoadData(t *testing.T) {
	tests := []struct {
		name     string
		usageErr error
		maps     fakeMap
		wantMap  string
		wantErr  bool
	}{
		{name: "both present", maps: fakeMap{html: "<html></html>"}, wantMap: "<html></html>"},
		{name: "map missing falls back", maps: fakeMap{err: fmt.Errorf("%w: x.html", dataset.ErrMapNotFound)}},
		{name: "map unreadable", maps: fakeMap{err: errors.New("permission denied")}, wantErr: true},
		{name: "usage missing", usageErr: dataset.ErrDatasetNotFound, maps: fakeMap{html: "m"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewUsageService(fakeUsage{err: tt.usageErr}, services.Options{Logger: quietLogger()})
			got, err := loadData(context.Background(), svc, tt.maps, quietLogger())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("loadData: %v", err)
			}
			if got != tt.wantMap {
				t.Errorf("map = %q, want %q", got, tt.wantMap)
			}
			if !svc.Ready() {
				t.Error("usage service not loaded")
			}
		})
	}
}
