package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// Comparer is the engine surface the TUI drives.
type Comparer interface {
	Compare(ctx context.Context, req engine.Request) (report.ComparisonReport, *advisory.TaskHandle, error)
	Close()
}

// BuildFunc creates the comparer once the TUI presenter exists.
type BuildFunc func(presenter engine.Presenter) (Comparer, error)

// Run shows the compare view until the user quits. Quitting closes the
// comparer, which cancels any advisory still in flight.
func Run(ctx context.Context, build BuildFunc, req engine.Request, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(newModel(cfg), programOpts...)

	cmp, err := build(NewPresenter(program))
	if err != nil {
		return fmt.Errorf("failed to create comparer: %w", err)
	}
	defer cmp.Close()

	go func() {
		_, handle, compareErr := cmp.Compare(ctx, req)
		if compareErr != nil {
			program.Send(errMsg{err: compareErr})
			return
		}
		if handle != nil {
			program.Send(taskMsg{handle: handle})
		}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
