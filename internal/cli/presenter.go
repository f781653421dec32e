package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/llm"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// TerminalPresenter prints comparison reports and advisory results.
// It is safe for the advisory to arrive on another goroutine.
type TerminalPresenter struct {
	writer      io.Writer
	spinner     *Spinner
	showSpinner bool
	mu          sync.Mutex
}

// NewTerminalPresenter creates a presenter. With showSpinner set, a spinner
// runs while an advisory is pending.
func NewTerminalPresenter(writer io.Writer, showSpinner bool) *TerminalPresenter {
	return &TerminalPresenter{writer: writer, showSpinner: showSpinner}
}

// PresentReport prints the comparison and what will happen with the advisory.
func (p *TerminalPresenter) PresentReport(rep report.ComparisonReport, status engine.AdvisoryStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.write(FormatReport(rep))

	switch status {
	case engine.AdvisoryNotRequested:
	case engine.AdvisoryPending:
		if p.showSpinner {
			p.spinner = StartSpinner(p.writer, status.Message())
		} else {
			p.write(FormatInfo(status.Message()) + "\n")
		}
	case engine.AdvisoryBusy, engine.AdvisoryDenied:
		p.write(FormatWarning(status.Message()) + "\n")
	default:
		p.write(FormatInfo(status.Message()) + "\n")
	}
}

// PresentAdvisory prints the advisory outcome. Cancelled is not reported.
func (p *TerminalPresenter) PresentAdvisory(res advisory.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}

	if out := FormatAdvisory(res); out != "" {
		p.write(out + "\n")
	}
}

func (p *TerminalPresenter) write(s string) {
	if _, err := fmt.Fprint(p.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

// FormatAdvisory renders an advisory result, or "" for a cancelled task.
func FormatAdvisory(res advisory.Result) string {
	switch res.Outcome {
	case advisory.OutcomeSuccess:
		return RenderBox(RobotIcon+" Advisory", strings.TrimSpace(res.Text))
	case advisory.OutcomeTimedOut:
		return FormatWarning(fmt.Sprintf("Advisory timed out after %d attempts. Try again later.", res.Attempts))
	case advisory.OutcomeAPIError:
		out := FormatError("Advisory failed: " + res.Message)
		if hint := llm.Explain(res.Err); hint != "" && hint != res.Message {
			out += "\n" + SubtleStyle.Render("  "+hint)
		}
		return out
	default:
		return ""
	}
}

// FormatReport renders the comparison as a terminal table.
func FormatReport(rep report.ComparisonReport) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Spend Comparison"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s (%d days, %d records)  total %s\n",
		BoldStyle.Render("Period A"), rep.PeriodA.Label(), rep.PeriodA.Days(), rep.PeriodA.Records, rep.PeriodA.Total.StringFixed(2))
	fmt.Fprintf(&b, "%s  %s (%d days, %d records)  total %s\n",
		BoldStyle.Render("Period B"), rep.PeriodB.Label(), rep.PeriodB.Days(), rep.PeriodB.Records, rep.PeriodB.Total.StringFixed(2))
	fmt.Fprintf(&b, "%s    %s (%s)\n\n",
		BoldStyle.Render("Change"), signed(rep.TotalDelta.StringFixed(2)), rep.TotalPercentChange)

	header := []string{"Category", "A", "Share", "B", "Share", "Delta", "Change", "Severity"}
	rows := make([][]string, 0, len(rep.CategoryDeltas))
	styles := make([]lipgloss.Style, 0, len(rep.CategoryDeltas))
	for _, d := range rep.CategoryDeltas {
		rows = append(rows, []string{
			d.Category.Label(),
			d.Before.StringFixed(2),
			fmt.Sprintf("%.1f%%", rep.PeriodA.Share(d.Category.ID)),
			d.After.StringFixed(2),
			fmt.Sprintf("%.1f%%", rep.PeriodB.Share(d.Category.ID)),
			signed(d.Delta.StringFixed(2)),
			d.PercentChange.String(),
			d.Severity.String(),
		})
		styles = append(styles, SeverityStyle(d.Severity))
	}
	b.WriteString(renderTable(header, rows, styles))

	if len(rep.TopMovers) > 0 {
		names := make([]string, len(rep.TopMovers))
		for i, m := range rep.TopMovers {
			names[i] = m.Category.Label()
		}
		fmt.Fprintf(&b, "\n%s %s\n", BoldStyle.Render("Top movers:"), strings.Join(names, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatSummary renders one period's spend per category.
func FormatSummary(s report.PeriodSummary) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Spend Report"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s (%d days, %d records)  total %s\n\n",
		BoldStyle.Render("Period"), s.Label(), s.Days(), s.Records, s.Total.StringFixed(2))

	header := []string{"Category", "Records", "Amount", "Share"}
	rows := make([][]string, 0, len(s.Categories))
	styles := make([]lipgloss.Style, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []string{
			c.Category.Label(),
			strconv.Itoa(c.Count),
			c.Amount.StringFixed(2),
			fmt.Sprintf("%.1f%%", s.Share(c.Category.ID)),
		})
		styles = append(styles, lipgloss.NewStyle())
	}
	b.WriteString(renderTable(header, rows, styles))
	return b.String()
}

// renderTable left-aligns the first column and right-aligns the rest.
// The last column of each row is rendered with that row's style.
func renderTable(header []string, rows [][]string, styles []lipgloss.Style) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	pad := func(cell string, i int) string {
		gap := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		if i == 0 {
			return cell + gap
		}
		return gap + cell
	}

	var b strings.Builder
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = pad(h, i)
	}
	b.WriteString(TableHeaderStyle.Render(strings.Join(cells, "  ")))
	b.WriteString("\n")

	for r, row := range rows {
		for i, cell := range row {
			cells[i] = pad(cell, i)
		}
		last := len(cells) - 1
		cells[last] = styles[r].Render(cells[last])
		b.WriteString(strings.Join(cells, "  "))
		b.WriteString("\n")
	}
	return b.String()
}

func signed(s string) string {
	if s != "" && s[0] != '-' && strings.Trim(s, "0.") != "" {
		return "+" + s
	}
	return s
}
