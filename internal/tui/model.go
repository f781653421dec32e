// Package tui provides the interactive compare view.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/tui/themes"
)

// headerHeight covers the title and the blank line below it.
const headerHeight = 2

// Model holds the compare view state.
type Model struct {
	err      error
	report   *report.ComparisonReport
	advice   *advisory.Result
	handle   *advisory.TaskHandle
	notice   string
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	status   engine.AdvisoryStatus
	width    int
	height   int
	quitting bool
}

func newModel(cfg Config) Model {
	m := Model{
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(cfg.Theme.StatusPending),
		),
		viewport: viewport.New(cfg.Width, 1),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.resize()
	return m
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case reportMsg:
		rep := msg.report
		m.report = &rep
		m.status = msg.status
		m.refresh()
		return m, nil

	case advisoryMsg:
		res := msg.result
		m.advice = &res
		if res.Outcome == advisory.OutcomeCancelled {
			m.notice = "Advisory cancelled"
		}
		m.refresh()
		return m, nil

	case taskMsg:
		m.handle = msg.handle
		return m, nil

	case cancelledMsg:
		if !msg.ok {
			m.notice = "Advisory already finished"
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.CancelAdvisory):
		if m.handle == nil || m.advice != nil {
			return m, nil
		}
		// Cancel delivers the result through the presenter, which sends
		// back into the program, so it must not run inside Update.
		h := m.handle
		return m, func() tea.Msg {
			return cancelledMsg{ok: h.Cancel()}
		}

	case key.Matches(msg, m.keymap.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, m.keymap.PageDown):
		m.viewport.ViewDown()
	case key.Matches(msg, m.keymap.Home):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keymap.End):
		m.viewport.GotoBottom()
	}
	return m, nil
}

// waiting reports whether the report or a pending advisory is outstanding.
func (m Model) waiting() bool {
	if m.err != nil {
		return false
	}
	if m.report == nil {
		return true
	}
	return m.status == engine.AdvisoryPending && m.advice == nil
}

func (m *Model) resize() {
	footer := 1 + lipgloss.Height(m.help.View(m.keymap))
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-headerHeight-footer)
	m.help.Width = m.width
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.content())
}
