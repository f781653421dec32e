package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
)

// DataSource is the read side of expense storage used by the aggregator.
type DataSource interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error)
}

// Aggregator sums expenses over a period.
type Aggregator struct {
	source DataSource
	logger *slog.Logger
}

// NewAggregator creates an aggregator over the given data source.
func NewAggregator(source DataSource, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{source: source, logger: logger}
}

// Aggregate returns the spend between start and end, both days inclusive.
// Every category in the current catalog is present in the result.
// Data source failures are returned wrapped in common.ErrDataSource.
func (a *Aggregator) Aggregate(ctx context.Context, start, end time.Time) (PeriodSummary, error) {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return PeriodSummary{}, fmt.Errorf("%w: period start %s is after end %s",
			common.ErrPrecondition, start.Format(model.DateLayout), end.Format(model.DateLayout))
	}

	catalog, err := a.source.GetCategories(ctx)
	if err != nil {
		return PeriodSummary{}, fmt.Errorf("%w: failed to load categories: %w", common.ErrDataSource, err)
	}

	expenses, err := a.source.GetExpensesInRange(ctx, start, end)
	if err != nil {
		return PeriodSummary{}, fmt.Errorf("%w: failed to load expenses: %w", common.ErrDataSource, err)
	}

	summary := PeriodSummary{
		Start:      start,
		End:        end,
		Total:      decimal.Zero,
		Categories: make([]CategorySpend, len(catalog)),
	}
	index := make(map[int]int, len(catalog))
	for i, cat := range catalog {
		summary.Categories[i] = CategorySpend{Category: cat, Amount: decimal.Zero}
		index[cat.ID] = i
	}

	skipped := 0
	for _, exp := range expenses {
		i, ok := index[exp.CategoryID]
		if !ok {
			skipped++
			continue
		}
		summary.Categories[i].Amount = summary.Categories[i].Amount.Add(exp.Amount)
		summary.Categories[i].Count++
		summary.Total = summary.Total.Add(exp.Amount)
		summary.Records++
	}

	if skipped > 0 {
		a.logger.Warn("ignored expenses outside the category catalog",
			"period", summary.Label(),
			"count", skipped)
	}

	a.logger.Debug("aggregated period",
		"period", summary.Label(),
		"records", summary.Records,
		"total", summary.Total.StringFixed(2))

	return summary, nil
}
