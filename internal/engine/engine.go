// Package engine runs period comparisons and hands privileged requests to the advisory runner.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/service"
)

// Request describes one comparison.
type Request struct {
	PeriodA    service.DateRange
	PeriodB    service.DateRange
	WithAdvice bool
}

// Engine orchestrates aggregation, comparison and advisory submission.
type Engine struct {
	aggregator *report.Aggregator
	comparer   *report.Comparer
	presenter  Presenter
	session    *advisory.Session
	authorizer Authorizer
	logger     *slog.Logger
}

// New creates an engine without advisory support.
func New(aggregator *report.Aggregator, comparer *report.Comparer, presenter Presenter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		aggregator: aggregator,
		comparer:   comparer,
		presenter:  presenter,
		logger:     logger,
	}
}

// EnableAdvisory attaches an advisory session. Requests are only submitted
// when authorizer reports the current identity as privileged.
func (e *Engine) EnableAdvisory(session *advisory.Session, authorizer Authorizer) {
	e.session = session
	e.authorizer = authorizer
}

// Compare aggregates both periods, presents the report and, when advice is
// requested and allowed, submits it to the advisory session. The returned
// handle is nil unless an advisory task was started.
func (e *Engine) Compare(ctx context.Context, req Request) (report.ComparisonReport, *advisory.TaskHandle, error) {
	e.logger.Info("Comparing periods",
		"period_a", req.PeriodA.String(),
		"period_b", req.PeriodB.String(),
		"with_advice", req.WithAdvice)

	var a, b report.PeriodSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if a, err = e.aggregator.Aggregate(gctx, req.PeriodA.Start, req.PeriodA.End); err != nil {
			return fmt.Errorf("failed to aggregate period A: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if b, err = e.aggregator.Aggregate(gctx, req.PeriodB.Start, req.PeriodB.End); err != nil {
			return fmt.Errorf("failed to aggregate period B: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.ComparisonReport{}, nil, err
	}

	rep, err := e.comparer.Compare(a, b)
	if err != nil {
		return report.ComparisonReport{}, nil, fmt.Errorf("failed to compare periods: %w", err)
	}

	status := e.advisoryStatus(ctx, req, rep)

	var (
		handle    *advisory.TaskHandle
		presented = make(chan struct{})
	)
	if status == AdvisoryPending {
		handle, err = e.session.Submit(rep, func(res advisory.Result) {
			<-presented
			e.presenter.PresentAdvisory(res)
		})
		switch {
		case errors.Is(err, common.ErrBusy):
			status = AdvisoryBusy
		case errors.Is(err, common.ErrSessionClosed):
			status = AdvisoryUnavailable
		case err != nil:
			close(presented)
			return rep, nil, fmt.Errorf("failed to submit advisory request: %w", err)
		}
	}

	e.presenter.PresentReport(rep, status)
	close(presented)

	e.logger.Info("Comparison complete",
		"total_delta", rep.TotalDelta.StringFixed(2),
		"top_movers", len(rep.TopMovers),
		"advisory", status.String())
	return rep, handle, nil
}

// Close cancels any running advisory task.
func (e *Engine) Close() {
	if e.session != nil {
		e.session.Close()
	}
}

func (e *Engine) advisoryStatus(ctx context.Context, req Request, rep report.ComparisonReport) AdvisoryStatus {
	if !req.WithAdvice {
		return AdvisoryNotRequested
	}
	if e.session == nil {
		return AdvisoryUnavailable
	}
	if e.authorizer == nil {
		return AdvisoryDenied
	}

	privileged, err := e.authorizer.IsPrivileged(ctx)
	if err != nil {
		e.logger.Warn("Privilege check failed", "error", err)
		return AdvisoryDenied
	}
	if !privileged {
		return AdvisoryDenied
	}

	if !rep.HasData() {
		return AdvisoryInsufficientData
	}
	return AdvisoryPending
}
