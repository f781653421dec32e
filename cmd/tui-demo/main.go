// Package main provides a demo program for the compare TUI
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/auth"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/report"
	"github.com/Veraticus/spend-ledger/internal/service"
	"github.com/Veraticus/spend-ledger/internal/testutil"
	"github.com/Veraticus/spend-ledger/internal/tui"
)

// slowClient pretends to be a model that takes a few seconds to answer.
type slowClient struct {
	delay time.Duration
}

func (c slowClient) Analyze(ctx context.Context, _ string, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(c.delay):
	}
	return `Lamb spending rose sharply while volume stayed flat, which points to a
supplier price increase. Ask two other suppliers for quotes before the next order.

Vegetables (Sunling) fell. Check whether the kitchen switched to Baqi for the
same items, since that category grew by a similar amount.

Cleaning supplies are stable. No action needed.`, nil
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	categories := make([]model.Category, len(model.DefaultCategories))
	for i, c := range model.DefaultCategories {
		c.ID = i + 1
		categories[i] = c
	}
	source := testutil.NewMemorySource(categories...)
	source.Add(demoExpenses(categories)...)

	periodA, err := service.ParseDateRange("2025-01-01", "2025-01-31")
	if err != nil {
		return err
	}
	periodB, err := service.ParseDateRange("2025-02-01", "2025-02-28")
	if err != nil {
		return err
	}

	comparer, err := report.NewComparer(report.DefaultConfig())
	if err != nil {
		return err
	}

	cfg := advisory.DefaultConfig()
	cfg.BusinessName = "Demo Kitchen"
	runner, err := advisory.NewRunner(slowClient{delay: 4 * time.Second}, cfg, nil)
	if err != nil {
		return err
	}
	owner := &auth.Identity{User: model.User{Username: "demo", Role: model.RoleAdmin}}

	return tui.Run(ctx, func(p engine.Presenter) (tui.Comparer, error) {
		eng := engine.New(report.NewAggregator(source, nil), comparer, p, nil)
		eng.EnableAdvisory(runner.NewSession(), owner)
		return eng, nil
	}, engine.Request{PeriodA: periodA, PeriodB: periodB, WithAdvice: true}, tui.WithSize(120, 40))
}

// demoExpenses generates a month of purchases per period with a few deliberate shifts.
func demoExpenses(categories []model.Category) []model.Expense {
	rng := rand.New(rand.NewPCG(42, 7)) //nolint:gosec // demo data
	shift := map[string]float64{
		"Lamb":                 1.45,
		"Vegetables (Sunling)": 0.6,
		"Vegetables (Baqi)":    1.5,
		"Seasoning":            1.15,
	}

	var expenses []model.Expense
	for _, period := range []struct {
		start time.Time
		days  int
		after bool
	}{
		{start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), days: 31},
		{start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), days: 28, after: true},
	} {
		for d := 0; d < period.days; d += 3 {
			for _, c := range categories {
				base := 40 + rng.Float64()*160
				if factor, ok := shift[c.Name]; ok && period.after {
					base *= factor
				}
				expenses = append(expenses, model.Expense{
					Date:       period.start.AddDate(0, 0, d),
					CategoryID: c.ID,
					Amount:     decimal.NewFromFloat(base).Round(2),
				})
			}
		}
	}
	return expenses
}
