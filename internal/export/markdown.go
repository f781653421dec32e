// Package export writes spend reports to markdown files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// WriteMarkdown renders the report, and the advisory when it succeeded, as markdown.
func WriteMarkdown(w io.Writer, rep report.ComparisonReport, advice *advisory.Result, generatedAt time.Time) error {
	var b strings.Builder

	b.WriteString("# Spend Comparison\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", generatedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("| Period | Range | Days | Records | Total |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| A | %s | %d | %d | %s |\n", rep.PeriodA.Label(), rep.PeriodA.Days(), rep.PeriodA.Records, rep.PeriodA.Total.StringFixed(2))
	fmt.Fprintf(&b, "| B | %s | %d | %d | %s |\n\n", rep.PeriodB.Label(), rep.PeriodB.Days(), rep.PeriodB.Records, rep.PeriodB.Total.StringFixed(2))
	fmt.Fprintf(&b, "**Change in total:** %s (%s)\n\n", signed(rep.TotalDelta.StringFixed(2)), rep.TotalPercentChange)

	b.WriteString("## Categories\n\n")
	b.WriteString("| Category | A | Share A | B | Share B | Delta | Change | Severity |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---|\n")
	for _, d := range rep.CategoryDeltas {
		fmt.Fprintf(&b, "| %s | %s | %.1f%% | %s | %.1f%% | %s | %s | %s |\n",
			escapeCell(d.Category.Label()),
			d.Before.StringFixed(2), rep.PeriodA.Share(d.Category.ID),
			d.After.StringFixed(2), rep.PeriodB.Share(d.Category.ID),
			signed(d.Delta.StringFixed(2)), d.PercentChange, d.Severity)
	}

	if len(rep.TopMovers) > 0 {
		b.WriteString("\n## Top movers\n\n")
		for i, m := range rep.TopMovers {
			fmt.Fprintf(&b, "%d. %s: %s (%s, %s)\n", i+1, m.Category.Label(), signed(m.Delta.StringFixed(2)), m.PercentChange, m.Severity)
		}
	}

	if advice != nil && advice.Outcome == advisory.OutcomeSuccess {
		b.WriteString("\n## Advisory\n\n")
		b.WriteString(strings.TrimSpace(advice.Text))
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

// WriteSummaryMarkdown renders one period's per-category spend as markdown.
func WriteSummaryMarkdown(w io.Writer, s report.PeriodSummary, generatedAt time.Time) error {
	var b strings.Builder

	b.WriteString("# Spend Report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", generatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "**Period:** %s (%d days, %d records)\n\n", s.Label(), s.Days(), s.Records)
	fmt.Fprintf(&b, "**Total:** %s\n\n", s.Total.StringFixed(2))

	b.WriteString("| Category | Records | Amount | Share |\n")
	b.WriteString("|---|---:|---:|---:|\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "| %s | %d | %s | %.1f%% |\n",
			escapeCell(c.Category.Label()), c.Count, c.Amount.StringFixed(2), s.Share(c.Category.ID))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

// WriteFile writes the comparison export to path, replacing any existing
// file only once the new content is complete.
func WriteFile(path string, rep report.ComparisonReport, advice *advisory.Result, generatedAt time.Time) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteMarkdown(w, rep, advice, generatedAt)
	})
}

// WriteSummaryFile writes the single-period export to path the same way as WriteFile.
func WriteSummaryFile(path string, s report.PeriodSummary, generatedAt time.Time) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteSummaryMarkdown(w, s, generatedAt)
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600) //nolint:gosec // path is built from the export target
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := write(f); err != nil {
		_ = f.Close()
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func signed(s string) string {
	if s != "" && s[0] != '-' && strings.Trim(s, "0.") != "" {
		return "+" + s
	}
	return s
}
