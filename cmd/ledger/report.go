package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/config"
	"github.com/Veraticus/spend-ledger/internal/export"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/service"
)

type reportOptions struct {
	start, end string
	category   string
	exportPath string
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize spending for one period",
		Long: `Show per-category totals, record counts and share of total for one period.

With --category, only that category is listed; its share is still of the whole
period's spending.`,
		Example: `  ledger report --start 2025-01-01 --end 2025-01-31
  ledger report --start 2025-01-01 --end 2025-01-31 --category Lamb --export jan.md`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.category, "category", "", "only show this category (name or ID)")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "also write the report as markdown to this path")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	ctx := cmd.Context()

	dr, err := service.ParseDateRange(opts.start, opts.end)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := report.NewAggregator(store, slog.Default()).Aggregate(ctx, dr.Start, dr.End)
	if err != nil {
		return err
	}

	if opts.category != "" {
		cat, err := findCategory(ctx, store, opts.category)
		if err != nil {
			return err
		}
		summary = summary.Only(cat.ID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, cli.FormatSummary(summary))

	if opts.exportPath != "" {
		path := config.ExpandPath(opts.exportPath)
		if err := export.WriteSummaryFile(path, summary, time.Now()); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported report to "+path))
	}
	return nil
}
