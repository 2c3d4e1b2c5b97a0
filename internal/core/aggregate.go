package core

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"
)

// ErrInconsistentTemperature is returned when one date carries more than one avgTemp.
var ErrInconsistentTemperature = errors.New("avgTemp differs within a single date")

// Max avgTemp difference still treated as the same reading.
const tempTolerance = 1e-9

// Seasons returns the distinct seasons in order of first appearance.
func Seasons(t Table) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.records {
		if _, ok := seen[r.Season]; ok {
			continue
		}
		seen[r.Season] = struct{}{}
		out = append(out, r.Season)
	}
	return out
}

// FilterBySeason keeps the rows whose season is in seasons. An empty set yields an
// empty table.
func FilterBySeason(t Table, seasons []string) Table {
	if len(seasons) == 0 {
		return Table{}
	}
	allowed := make(map[string]struct{}, len(seasons))
	for _, s := range seasons {
		allowed[s] = struct{}{}
	}
	out := make([]UsageRecord, 0, len(t.records))
	for _, r := range t.records {
		if _, ok := allowed[r.Season]; ok {
			out = append(out, r)
		}
	}
	return Table{records: out}
}

// TotalValue sums Value over all rows.
func TotalValue(t Table) float64 {
	var total float64
	for _, r := range t.records {
		total += r.Value
	}
	return total
}

// AggregateDaily sums trips per date. Every row of a date must report the same
// avgTemp; otherwise ErrInconsistentTemperature is returned. Rows come back in
// ascending date order.
func AggregateDaily(t Table) ([]DailyUsage, error) {
	index := make(map[time.Time]int)
	var out []DailyUsage
	for _, r := range t.records {
		day := DateOf(r.Date)
		i, ok := index[day]
		if !ok {
			index[day] = len(out)
			out = append(out, DailyUsage{Date: day, Rides: r.Value, AvgTemp: r.AvgTemp})
			continue
		}
		if math.Abs(out[i].AvgTemp-r.AvgTemp) > tempTolerance {
			return nil, fmt.Errorf("%w: %s has %v and %v",
				ErrInconsistentTemperature, day.Format(time.DateOnly), out[i].AvgTemp, r.AvgTemp)
		}
		out[i].Rides += r.Value
	}
	slices.SortFunc(out, func(a, b DailyUsage) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// AggregateByStation sums trips per start station, ordered by station name.
func AggregateByStation(t Table) []StationUsage {
	sums := make(map[string]float64)
	for _, r := range t.records {
		sums[r.StartStation] += r.Value
	}
	out := make([]StationUsage, 0, len(sums))
	for name, v := range sums {
		out = append(out, StationUsage{Station: name, Value: v})
	}
	slices.SortFunc(out, func(a, b StationUsage) int {
		return strings.Compare(a.Station, b.Station)
	})
	return out
}

// TopN returns the n largest entries by Value, descending. Ties keep the input order,
// which for AggregateByStation output means station name ascending.
func TopN(stations []StationUsage, n int) []StationUsage {
	if n <= 0 || len(stations) == 0 {
		return []StationUsage{}
	}
	sorted := append([]StationUsage(nil), stations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopStations is TopN over AggregateByStation.
func TopStations(t Table, n int) []StationUsage {
	return TopN(AggregateByStation(t), n)
}
