package source

import (
	"context"

	"bikeshare/internal/core"
)

// Ports for inbound data adapters.
type (
	// UsageReader loads the full usage table. Implementations open their backing file
	// read-only on every call.
	UsageReader interface {
		ReadUsage(ctx context.Context) (core.Table, error)
	}

	// MapReader returns the raw HTML of the pre-rendered trip map.
	MapReader interface {
		ReadMap(ctx context.Context) (string, error)
	}
)
