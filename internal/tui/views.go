package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/engine"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(cli.LedgerIcon + " Spend Comparison"))
	b.WriteString("\n\n")

	if m.report == nil && m.err == nil {
		b.WriteString(m.spinner.View() + " Aggregating periods...")
		b.WriteString(strings.Repeat("\n", m.viewport.Height))
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

// content is the scrollable report and advisory text.
func (m Model) content() string {
	if m.err != nil {
		return m.theme.StatusError.Render("Comparison failed: " + m.err.Error())
	}
	if m.report == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(cli.FormatReport(*m.report))

	switch {
	case m.advice != nil && m.advice.Outcome == advisory.OutcomeSuccess:
		title := m.theme.Title.Render(cli.RobotIcon + " Advisory")
		body := strings.TrimSpace(m.advice.Text)
		b.WriteString(m.theme.Box.Width(max(20, m.width-2)).Render(title + "\n\n" + body))
		b.WriteString("\n")
	case m.advice != nil:
		if out := cli.FormatAdvisory(*m.advice); out != "" {
			b.WriteString(out + "\n")
		}
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.theme.StatusError.Render("Error")
	case m.report == nil:
		return ""
	case m.waiting():
		return m.spinner.View() + " " + m.theme.StatusPending.Render(m.status.Message())
	case m.notice != "":
		return m.theme.StatusWarning.Render(m.notice)
	case m.advice != nil:
		return m.outcomeLine(*m.advice)
	case m.status == engine.AdvisoryNotRequested:
		return m.theme.Subtitle.Render("Comparison complete")
	default:
		return m.theme.StatusWarning.Render(m.status.Message())
	}
}

func (m Model) outcomeLine(res advisory.Result) string {
	switch res.Outcome {
	case advisory.OutcomeSuccess:
		return m.theme.StatusSuccess.Render("Advisory ready")
	case advisory.OutcomeTimedOut:
		return m.theme.StatusWarning.Render(fmt.Sprintf("Advisory timed out after %d attempts", res.Attempts))
	default:
		return m.theme.StatusError.Render("Advisory failed")
	}
}
