// Package storage persists the usage table in SQLite as an alternative to reading the CSV
// export on every start.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bikeshare/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = time.DateOnly

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "component", "storage", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceUsage swaps the stored table for t in a single transaction and records the import.
func (r *SQLiteRepository) ReplaceUsage(ctx context.Context, t core.Table, source string) error {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_records`); err != nil {
		return fmt.Errorf("clear usage records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO usage_records
		(ride_date, start_station_name, value, avg_temp, season)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range t.All() {
		if _, err := stmt.ExecContext(ctx,
			rec.Date.Format(dateLayout), rec.StartStation, rec.Value, rec.AvgTemp, rec.Season); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_log (source, row_count) VALUES (?, ?)`, source, t.Len()); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Usage table imported into SQLite",
		"source", source,
		"rows", t.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// ReadUsage implements source.UsageReader. Rows come back in insertion order so the
// table matches the CSV it was imported from.
func (r *SQLiteRepository) ReadUsage(ctx context.Context) (core.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ride_date, start_station_name, value, avg_temp, season
		FROM usage_records ORDER BY id`)
	if err != nil {
		return core.Table{}, fmt.Errorf("query usage records: %w", err)
	}
	defer rows.Close()

	var records []core.UsageRecord
	for rows.Next() {
		var (
			rawDate string
			rec     core.UsageRecord
		)
		if err := rows.Scan(&rawDate, &rec.StartStation, &rec.Value, &rec.AvgTemp, &rec.Season); err != nil {
			return core.Table{}, fmt.Errorf("scan usage record: %w", err)
		}
		d, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return core.Table{}, fmt.Errorf("parse stored date %q: %w", rawDate, err)
		}
		rec.Date = d
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, fmt.Errorf("iterate usage records: %w", err)
	}

	return core.NewTable(records), nil
}

// ImportInfo describes the most recent import.
type ImportInfo struct {
	Source     string
	Rows       int
	ImportedAt time.Time
}

// LastImport returns the latest import_log entry, or sql.ErrNoRows when nothing was imported.
func (r *SQLiteRepository) LastImport(ctx context.Context) (ImportInfo, error) {
	var (
		info ImportInfo
		at   any
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT source, row_count, imported_at FROM import_log ORDER BY id DESC LIMIT 1`).
		Scan(&info.Source, &info.Rows, &at)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("last import: %w", err)
	}
	// The driver may hand DATETIME back either parsed or as text.
	switch v := at.(type) {
	case time.Time:
		info.ImportedAt = v
	case string:
		if ts, perr := time.Parse(time.DateTime, v); perr == nil {
			info.ImportedAt = ts
		}
	}
	return info, nil
}
