package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bikeshare/internal/backend"
	"bikeshare/internal/config"
	"bikeshare/internal/services"
)

// options carries the persistent flags shared by every subcommand.
type options struct {
	csvPath string
	dbPath  string
	backend string
	topN    int
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{
		csvPath: cfg.UsageCSVPath,
		dbPath:  cfg.SQLiteDBPath,
		backend: cfg.DataBackend,
		topN:    cfg.TopStations,
	}

	root := &cobra.Command{
		Use:   "bikeshare-cli",
		Short: "Inspect and import Citi Bike usage data",
		Long: `bikeshare-cli works on the same usage dataset the dashboard serves.
It can copy the CSV export into a SQLite database and print the season list,
the daily aggregation and the most popular start stations.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.csvPath, "csv", opts.csvPath, "usage CSV file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", opts.dbPath, "SQLite database file")
	root.PersistentFlags().StringVar(&opts.backend, "backend", opts.backend, "data backend to read from (csv or sqlite)")

	root.AddCommand(
		newImportCmd(opts),
		newStatusCmd(opts),
		newTopCmd(opts),
		newDailyCmd(opts),
		newSeasonsCmd(opts),
	)
	return root
}

// loadService opens the selected backend and loads the usage table.
func loadService(ctx context.Context, opts *options) (*services.UsageService, func() error, error) {
	bcfg := backend.Config{
		Type:         backend.Type(opts.backend),
		CSVPath:      opts.csvPath,
		SQLiteDBPath: opts.dbPath,
	}
	res, err := backend.NewFactory(nil).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s backend: %w", opts.backend, err)
	}

	svc := services.NewUsageService(res.Reader, services.Options{TopN: opts.topN})
	if err := svc.Load(ctx); err != nil {
		res.Close()
		return nil, nil, err
	}
	return svc, res.Close, nil
}
