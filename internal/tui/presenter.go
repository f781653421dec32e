package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// sender is the part of tea.Program the presenter needs.
type sender interface {
	Send(msg tea.Msg)
}

// Presenter forwards engine output into a running program.
// Sends after the program exits are dropped.
type Presenter struct {
	program sender
}

// NewPresenter creates a presenter for the program.
func NewPresenter(program *tea.Program) *Presenter {
	return &Presenter{program: program}
}

// PresentReport implements engine.Presenter.
func (p *Presenter) PresentReport(rep report.ComparisonReport, status engine.AdvisoryStatus) {
	p.program.Send(reportMsg{report: rep, status: status})
}

// PresentAdvisory implements engine.Presenter.
func (p *Presenter) PresentAdvisory(res advisory.Result) {
	p.program.Send(advisoryMsg{result: res})
}
