// Package services orchestrates loading the usage table and serving the derived
// aggregations the dashboard needs.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"bikeshare/internal/cache"
	"bikeshare/internal/core"
	applog "bikeshare/internal/log"
	"bikeshare/internal/source"
)

// ErrNotLoaded is returned by queries issued before the first successful Load.
var ErrNotLoaded = errors.New("usage data not loaded")

// Options configures a UsageService.
type Options struct {
	TopN      int
	CacheSize int
	CacheTTL  time.Duration
	Logger    *applog.Logger
}

// Selection is the stations-page view for one season choice.
type Selection struct {
	Seasons []string            `json:"seasons"`
	Total   float64             `json:"total_value"`
	Top     []core.StationUsage `json:"top_stations"`
}

type snapshot struct {
	table    core.Table
	seasons  []string
	daily    []core.DailyUsage
	dailyErr error
	loadedAt time.Time
}

// UsageService holds the loaded table and memoises per-season station rankings.
type UsageService struct {
	reader source.UsageReader
	topN   int
	logger *applog.Logger

	mu   sync.RWMutex
	snap *snapshot

	rankings *cache.LRUCache[Selection]
}

func NewUsageService(reader source.UsageReader, opts Options) *UsageService {
	if opts.TopN <= 0 {
		opts.TopN = 20
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &UsageService{
		reader:   reader,
		topN:     opts.TopN,
		logger:   logger.WithComponent(applog.ComponentPipeline),
		rankings: cache.NewLRUCache[Selection](opts.CacheSize, opts.CacheTTL),
	}
}

// Load reads the table through the configured reader and precomputes the
// season list and daily aggregation. A failed load keeps the previous snapshot.
func (s *UsageService) Load(ctx context.Context) error {
	start := time.Now()
	t, err := s.reader.ReadUsage(ctx)
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}

	snap := &snapshot{
		table:    t,
		seasons:  core.Seasons(t),
		loadedAt: time.Now(),
	}
	snap.daily, snap.dailyErr = core.AggregateDaily(t)
	if snap.dailyErr != nil {
		s.logger.WarnContext(ctx, "Daily aggregation unavailable", applog.FieldError, snap.dailyErr)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.rankings.Purge()

	s.logger.InfoContext(ctx, "Usage data ready",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldRows, t.Len(),
		applog.FieldSeasons, snap.seasons,
		applog.FieldDays, len(snap.daily),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (s *UsageService) current() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotLoaded
	}
	return s.snap, nil
}

// Ready reports whether a table has been loaded.
func (s *UsageService) Ready() bool {
	_, err := s.current()
	return err == nil
}

// TopN is the default ranking size.
func (s *UsageService) TopN() int { return s.topN }

// Table returns the loaded table.
func (s *UsageService) Table() (core.Table, error) {
	snap, err := s.current()
	if err != nil {
		return core.Table{}, err
	}
	return snap.table, nil
}

// Seasons returns the distinct seasons in first-appearance order.
func (s *UsageService) Seasons() ([]string, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.seasons), nil
}

// Daily returns the per-date aggregation in chronological order.
func (s *UsageService) Daily() ([]core.DailyUsage, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	if snap.dailyErr != nil {
		return nil, snap.dailyErr
	}
	return slices.Clone(snap.daily), nil
}

// Select filters the table to seasons and ranks the top n stations. A nil
// seasons slice means every season; an empty non-nil slice selects nothing.
// n <= 0 uses the service default.
func (s *UsageService) Select(ctx context.Context, seasons []string, n int) (Selection, error) {
	snap, err := s.current()
	if err != nil {
		return Selection{}, err
	}
	if seasons == nil {
		seasons = snap.seasons
	}
	if n <= 0 {
		n = s.topN
	}
	seasons = NormalizeSeasons(seasons)
	key := selectionKey(seasons, n)

	if sel, ok := s.rankings.Get(key); ok {
		s.logger.DebugContext(ctx, "Station ranking cache hit", applog.FieldSeasons, seasons, applog.FieldTopN, n)
		return cloneSelection(sel), nil
	}

	filtered := core.FilterBySeason(snap.table, seasons)
	sel := Selection{
		Seasons: seasons,
		Total:   core.TotalValue(filtered),
		Top:     core.TopStations(filtered, n),
	}
	s.rankings.Set(key, sel)

	s.logger.DebugContext(ctx, "Station ranking computed",
		applog.FieldOperation, applog.OpRank,
		applog.FieldSeasons, seasons,
		applog.FieldRows, filtered.Len(),
		applog.FieldStations, len(sel.Top))
	return cloneSelection(sel), nil
}

// CacheStats exposes the ranking cache counters.
func (s *UsageService) CacheStats() cache.Stats {
	return s.rankings.Stats()
}

// Rankings returns the ranking cache so it can be registered for periodic cleanup.
func (s *UsageService) Rankings() cache.Cleaner {
	return s.rankings
}

// NormalizeSeasons trims, drops blanks and duplicates, and sorts the selection so
// equivalent choices share a cache entry. The result is never nil.
func NormalizeSeasons(seasons []string) []string {
	out := make([]string, 0, len(seasons))
	for _, season := range seasons {
		season = strings.TrimSpace(season)
		if season == "" || slices.Contains(out, season) {
			continue
		}
		out = append(out, season)
	}
	slices.Sort(out)
	return out
}

func selectionKey(seasons []string, n int) string {
	return strconv.Itoa(n) + "|" + strings.Join(seasons, "\x1f")
}

func cloneSelection(sel Selection) Selection {
	sel.Seasons = slices.Clone(sel.Seasons)
	sel.Top = slices.Clone(sel.Top)
	if sel.Top == nil {
		sel.Top = []core.StationUsage{}
	}
	return sel
}
