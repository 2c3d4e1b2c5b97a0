package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare/internal/chart"
	"bikeshare/internal/config"
	"bikeshare/internal/metric"
)

const rule = "----------------------------------------"

func newTopCmd(opts *options) *cobra.Command {
	var seasons []string

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the most popular start stations",
		Long: `Ranks start stations by summed trip count. Without --season every season
is included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.topN < 1 || opts.topN > config.MaxTopStations {
				return fmt.Errorf("-n must be between 1 and %d", config.MaxTopStations)
			}

			svc, closeFn, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			var selection []string
			if cmd.Flags().Changed("season") {
				selection = seasons
			}
			sel, err := svc.Select(cmd.Context(), selection, opts.topN)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, chart.StationsTitle(opts.topN))
			fmt.Fprintf(out, "Seasons: %s\n", strings.Join(sel.Seasons, ", "))
			fmt.Fprintln(out, rule)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tStation\tTrips\t")
			for i, st := range sel.Top {
				fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i+1, st.Station, metric.Exact(st.Value))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "Total Bike Rides: %s (%s)\n", metric.Abbreviate(sel.Total), metric.Exact(sel.Total))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&seasons, "season", nil, "season to include (repeatable)")
	cmd.Flags().IntVarP(&opts.topN, "top", "n", opts.topN, "number of stations to print")
	return cmd
}

func newDailyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Print total rides and average temperature per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			daily, err := svc.Daily()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s  %10s  %8s\n", "Date", "Rides", "Temp °C")
			fmt.Fprintln(out, rule)
			var total float64
			for _, d := range daily {
				fmt.Fprintf(out, "%-12s  %10s  %8.1f\n", d.Date.Format(time.DateOnly), humanize.Commaf(d.Rides), d.AvgTemp)
				total += d.Rides
			}
			fmt.Fprintln(out, rule)
			fmt.Fprintf(out, "Total: %s rides over %d days\n", metric.Exact(total), len(daily))
			return nil
		},
	}
}

func newSeasonsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "Print the distinct seasons in dataset order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			seasons, err := svc.Seasons()
			if err != nil {
				return err
			}
			for _, s := range seasons {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
