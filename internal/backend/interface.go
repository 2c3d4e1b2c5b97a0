// Package backend selects where the usage table is read from.
package backend

import (
	"context"

	"bikeshare/internal/source"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a ready-to-use usage reader plus its optional cleanup.
type Result struct {
	Reader  source.UsageReader
	Cleanup CleanupFunc
}

// Close runs the cleanup, if any.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates usage readers from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// csv
	CSVPath string

	// sqlite
	SQLiteDBPath string
}

// Type names a usage backend.
type Type string

const (
	CSVBackend    Type = "csv"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether t is a known backend.
func (t Type) IsValid() bool {
	switch t {
	case CSVBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
