// Package dataset loads the bike usage table and the pre-rendered trip map from disk.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bikeshare/internal/core"
)

// Required CSV header names.
const (
	ColDate    = "date"
	ColStation = "start_station_name"
	ColValue   = "value"
	ColAvgTemp = "avgTemp"
	ColSeason  = "season"
)

var (
	ErrMalformedData   = errors.New("malformed usage data")
	ErrDatasetNotFound = errors.New("usage dataset not found")
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
}

// ParseError describes the first offending cell of a malformed file.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s (%q): %v", e.Line, e.Column, e.Value, e.Err)
}

// Unwrap makes every ParseError match ErrMalformedData.
func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedData, e.Err}
}

// CSVSource reads the usage table from a CSV file on every call.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a source bound to path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// ReadUsage implements source.UsageReader.
func (s *CSVSource) ReadUsage(ctx context.Context) (core.Table, error) {
	if err := ctx.Err(); err != nil {
		return core.Table{}, err
	}
	return LoadCSV(s.Path)
}

// LoadCSV opens path read-only and parses it with ReadCSV.
func LoadCSV(path string) (core.Table, error) {
	start := time.Now()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Table{}, fmt.Errorf("%w: %s: %w", ErrDatasetNotFound, path, err)
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("open usage csv: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return core.Table{}, fmt.Errorf("read %s: %w", path, err)
	}

	slog.Info("Usage dataset loaded",
		"path", path,
		"rows", t.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return t, nil
}

// ReadCSV parses a usage CSV. Columns are matched by header name; extra columns are
// ignored. Any unparsable row fails the whole read.
func ReadCSV(r io.Reader) (core.Table, error) {
	// Strip a UTF-8 BOM and decode UTF-16 exports transparently.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return core.Table{}, &ParseError{Line: 1, Err: errors.New("missing header")}
	}
	if err != nil {
		return core.Table{}, &ParseError{Line: 1, Err: err}
	}

	idx, err := columnIndex(header)
	if err != nil {
		return core.Table{}, err
	}

	var records []core.UsageRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return core.Table{}, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return core.Table{}, fmt.Errorf("read usage row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, idx, line)
		if err != nil {
			return core.Table{}, err
		}
		records = append(records, rec)
	}

	return core.NewTable(records), nil
}

type columns struct {
	date, station, value, avgTemp, season int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	c := columns{
		date:    lookup(ColDate),
		station: lookup(ColStation),
		value:   lookup(ColValue),
		avgTemp: lookup(ColAvgTemp),
		season:  lookup(ColSeason),
	}
	if len(missing) > 0 {
		return columns{}, &ParseError{
			Line: 1,
			Err:  fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")),
		}
	}
	return c, nil
}

func parseRow(row []string, c columns, line int) (core.UsageRecord, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rawDate := cell(c.date)
	date, err := ParseDate(rawDate)
	if err != nil {
		return core.UsageRecord{}, &ParseError{Line: line, Column: ColDate, Value: rawDate, Err: err}
	}

	rawValue := cell(c.value)
	value, err := parseNumber(rawValue)
	if err != nil {
		return core.UsageRecord{}, &ParseError{Line: line, Column: ColValue, Value: rawValue, Err: err}
	}

	rawTemp := cell(c.avgTemp)
	temp, err := parseNumber(rawTemp)
	if err != nil {
		return core.UsageRecord{}, &ParseError{Line: line, Column: ColAvgTemp, Value: rawTemp, Err: err}
	}

	rec := core.UsageRecord{
		Date:         date,
		StartStation: cell(c.station),
		Value:        value,
		AvgTemp:      temp,
		Season:       cell(c.season),
	}
	if err := rec.Validate(); err != nil {
		perr := &ParseError{Line: line, Err: err}
		switch {
		case errors.Is(err, core.ErrNegativeValue):
			perr.Column, perr.Value = ColValue, rawValue
		case errors.Is(err, core.ErrEmptyStation):
			perr.Column = ColStation
		case errors.Is(err, core.ErrEmptySeason):
			perr.Column = ColSeason
		}
		return core.UsageRecord{}, perr
	}
	return rec, nil
}

// ParseDate accepts the date layouts produced by common dataframe exports and
// truncates the result to the calendar date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}
