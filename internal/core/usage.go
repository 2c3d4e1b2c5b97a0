package core

import (
	"errors"
	"iter"
	"strings"
	"time"
)

type (
	// UsageRecord is one pre-aggregated bucket of trips for a date and start station.
	UsageRecord struct {
		Date         time.Time
		StartStation string
		Value        float64 // trip count, never negative
		AvgTemp      float64 // daily average temperature (°C)
		Season       string
	}

	// DailyUsage is the per-date rollup plotted on the weather page.
	DailyUsage struct {
		Date    time.Time `json:"date"`
		Rides   float64   `json:"bike_rides_daily"`
		AvgTemp float64   `json:"avgTemp"`
	}

	// StationUsage is the summed trip count of one start station.
	StationUsage struct {
		Station string  `json:"start_station_name"`
		Value   float64 `json:"value"`
	}
)

var (
	ErrNegativeValue = errors.New("negative trip count")
	ErrEmptyStation  = errors.New("empty start station name")
	ErrEmptySeason   = errors.New("empty season")
	ErrZeroDate      = errors.New("zero date")
)

// Validate checks the record-level invariants.
func (r UsageRecord) Validate() error {
	if r.Date.IsZero() {
		return ErrZeroDate
	}
	if r.Value < 0 {
		return ErrNegativeValue
	}
	if strings.TrimSpace(r.StartStation) == "" {
		return ErrEmptyStation
	}
	if strings.TrimSpace(r.Season) == "" {
		return ErrEmptySeason
	}
	return nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Table is an immutable set of usage records. The zero value is an empty table.
type Table struct {
	records []UsageRecord
}

// NewTable copies records into a new table.
func NewTable(records []UsageRecord) Table {
	if len(records) == 0 {
		return Table{}
	}
	return Table{records: append([]UsageRecord(nil), records...)}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.records)
}

// At returns row i.
func (t Table) At(i int) UsageRecord {
	return t.records[i]
}

// Records returns a copy of the rows.
func (t Table) Records() []UsageRecord {
	return append([]UsageRecord(nil), t.records...)
}

// All iterates the rows in source order.
func (t Table) All() iter.Seq2[int, UsageRecord] {
	return func(yield func(int, UsageRecord) bool) {
		for i, r := range t.records {
			if !yield(i, r) {
				return
			}
		}
	}
}
