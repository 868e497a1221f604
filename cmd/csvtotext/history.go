package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/csvtotext/internal/admin"
	"github.com/JonMunkholm/csvtotext/internal/config"
	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/JonMunkholm/csvtotext/internal/store"
	"github.com/spf13/cobra"
)

// historyStore is what the history commands need from the database.
type historyStore interface {
	core.History
	admin.HistoryStore
}

// openHistory connects to the history database. Tests replace it.
var openHistory = func(ctx context.Context) (historyStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.HistoryEnabled() {
		return nil, nil, fmt.Errorf("%w: set DATABASE_URL", core.ErrHistoryDisabled)
	}

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool.Close, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain the conversion history database",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryPruneCmd())
	cmd.AddCommand(newHistoryResetCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			st, closeDB, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			records, err := st.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("%s", core.FormatUserError(err))
			}
			return writeOutput(cmd.OutOrStdout(), "", format, records, formatRecords(records))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultRecentLimit, "Number of conversions to show")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, yaml")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete conversions older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeDB, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			m := &admin.Maintenance{Store: st}
			n, err := m.PruneOlderThan(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d record(s)\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Keep conversions from the last N days")
	return cmd
}

func newHistoryResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every conversion record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset history without --yes")
			}

			st, closeDB, err := openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			m := &admin.Maintenance{Store: st}
			if err := m.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "conversion history reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

// formatRecords renders one line per record for text output.
func formatRecords(records []core.ConversionRecord) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s  %s  files=%d lines=%d invalid=%d\n",
			r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.FileCount, r.LineCount, r.InvalidCount)
	}
	return b.String()
}
