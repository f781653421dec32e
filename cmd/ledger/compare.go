package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/auth"
	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/config"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/export"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/service"
	"github.com/Veraticus/spend-ledger/internal/sheets"
	"github.com/Veraticus/spend-ledger/internal/storage"
	"github.com/Veraticus/spend-ledger/internal/tui"
)

type compareOptions struct {
	aStart, aEnd string
	bStart, bEnd string
	username     string
	exportPath   string
	advice       bool
	toSheets     bool
	useTUI       bool
}

func compareCmd() *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare spending between two periods",
		Long: `Compare per-category spending between period A and period B.

With --advice, an admin user also gets an AI-written advisory. The report is
shown first and the advisory follows when it is ready. Ctrl-C cancels the
advisory without losing the report.`,
		Example: `  ledger compare --a-start 2025-01-01 --a-end 2025-01-31 --b-start 2025-02-01 --b-end 2025-02-28
  ledger compare --a-start 2025-01-01 --a-end 2025-01-31 --b-start 2025-02-01 --b-end 2025-02-28 --advice --user owner`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.aStart, "a-start", "", "first day of period A (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.aEnd, "a-end", "", "last day of period A (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.bStart, "b-start", "", "first day of period B (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.bEnd, "b-end", "", "last day of period B (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.advice, "advice", false, "request an advisory report (admin only)")
	cmd.Flags().StringVar(&opts.username, "user", "", "user to log in as for --advice")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "also write the comparison as markdown to this path")
	cmd.Flags().BoolVar(&opts.toSheets, "sheets", false, "also write the comparison to Google Sheets")
	cmd.Flags().BoolVar(&opts.useTUI, "tui", false, "show the comparison in an interactive view")

	for _, name := range []string{"a-start", "a-end", "b-start", "b-end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	cmd.MarkFlagsMutuallyExclusive("tui", "export")
	cmd.MarkFlagsMutuallyExclusive("tui", "sheets")

	return cmd
}

func (o compareOptions) request() (engine.Request, error) {
	a, err := service.ParseDateRange(o.aStart, o.aEnd)
	if err != nil {
		return engine.Request{}, fmt.Errorf("period A: %w", err)
	}
	b, err := service.ParseDateRange(o.bStart, o.bEnd)
	if err != nil {
		return engine.Request{}, fmt.Errorf("period B: %w", err)
	}
	return engine.Request{PeriodA: a, PeriodB: b, WithAdvice: o.advice}, nil
}

func runCompare(cmd *cobra.Command, opts compareOptions) error {
	ctx := cmd.Context()

	req, err := opts.request()
	if err != nil {
		return err
	}
	if opts.advice && opts.username == "" {
		return common.NewUserError("--advice requires --user", common.ErrMissingConfig)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reportCfg, err := config.LoadReportConfig(viper.GetViper())
	if err != nil {
		return err
	}
	comparer, err := report.NewComparer(reportCfg)
	if err != nil {
		return err
	}
	aggregator := report.NewAggregator(store, slog.Default())

	session, identity, err := setupAdvisory(ctx, store, opts)
	if err != nil {
		return err
	}

	newEngine := func(p engine.Presenter) *engine.Engine {
		eng := engine.New(aggregator, comparer, p, slog.Default())
		if session != nil {
			eng.EnableAdvisory(session, identity)
		}
		return eng
	}

	if opts.useTUI {
		return tui.Run(ctx, func(p engine.Presenter) (tui.Comparer, error) {
			return newEngine(p), nil
		}, req)
	}

	out := cmd.OutOrStdout()
	eng := newEngine(cli.NewTerminalPresenter(out, isTerminal(out)))
	defer eng.Close()

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), eng.Close)
	ctx = interrupts.HandleInterrupts(ctx, session != nil)

	rep, handle, err := eng.Compare(ctx, req)
	if err != nil {
		return err
	}

	var advice *advisory.Result
	if handle != nil {
		select {
		case <-handle.Done():
		case <-ctx.Done():
			// The interrupt handler closed the engine; wait for Cancelled to land.
			<-handle.Done()
		}
		if res, ok := handle.Result(); ok {
			advice = &res
		}
	}

	if opts.exportPath != "" {
		path := config.ExpandPath(opts.exportPath)
		if err := export.WriteFile(path, rep, advice, time.Now()); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported comparison to "+path))
	}

	if opts.toSheets && interrupts.WasInterrupted() {
		fmt.Fprintln(out, cli.FormatWarning("Skipped Google Sheets upload after interrupt"))
	} else if opts.toSheets {
		if err := writeSheets(context.WithoutCancel(ctx), out, rep, advice); err != nil {
			return err
		}
	}

	return nil
}

// setupAdvisory logs the user in and creates an advisory session. A missing
// model configuration is not an error: the comparison runs without advice.
func setupAdvisory(ctx context.Context, store *storage.SQLiteStorage, opts compareOptions) (*advisory.Session, *auth.Identity, error) {
	if !opts.advice {
		return nil, nil, nil
	}

	password, err := readPassword("Password for " + opts.username + ": ")
	if err != nil {
		return nil, nil, err
	}
	identity, err := auth.NewAuthenticator(store).Login(ctx, opts.username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, nil, common.NewUserError("invalid username or password", err)
		}
		return nil, nil, err
	}

	session, err := createAdvisorySession()
	if errors.Is(err, common.ErrMissingConfig) {
		slog.Warn("Advisory unavailable", "error", err)
		return nil, identity, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return session, identity, nil
}

func writeSheets(ctx context.Context, out io.Writer, rep report.ComparisonReport, advice *advisory.Result) error {
	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return err
	}

	text := ""
	if advice != nil && advice.Outcome == advisory.OutcomeSuccess {
		text = advice.Text
	}

	spreadsheetID, err := writer.WriteComparison(ctx, rep, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess("Wrote comparison to spreadsheet "+spreadsheetID))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // descriptor fits in int
}
