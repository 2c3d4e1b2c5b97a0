package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare/internal/dataset"
	"bikeshare/internal/storage"
)

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the usage CSV into the SQLite database",
		Long: `Reads the CSV named by --csv and replaces the contents of the SQLite
database named by --db in a single transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := dataset.LoadCSV(opts.csvPath)
			if err != nil {
				return fmt.Errorf("loading csv: %w", err)
			}

			repo, err := storage.NewSQLiteRepository(opts.dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer repo.Close()

			if err := repo.ReplaceUsage(cmd.Context(), t, opts.csvPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s rows from %s into %s\n",
				humanize.Comma(int64(t.Len())), opts.csvPath, opts.dbPath)
			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the most recent import into the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(opts.dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer repo.Close()

			info, err := repo.LastImport(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Last import: %s rows from %s, %s\n",
				humanize.Comma(int64(info.Rows)), info.Source, humanize.Time(info.ImportedAt))
			return nil
		},
	}
}
