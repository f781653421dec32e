package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/model"
)

// CategorySpend is one category's share of a period.
type CategorySpend struct {
	Category model.Category
	Amount   decimal.Decimal
	Count    int
}

// PeriodSummary is the aggregate spend over an inclusive range of days.
// Categories lists every catalog category in catalog order, with zero spend
// where nothing was recorded. A summary is not modified after Aggregate returns.
type PeriodSummary struct {
	Start      time.Time
	End        time.Time
	Total      decimal.Decimal
	Categories []CategorySpend
	Records    int
}

// AmountFor returns the spend recorded against a category id.
func (s PeriodSummary) AmountFor(categoryID int) (decimal.Decimal, bool) {
	for _, c := range s.Categories {
		if c.Category.ID == categoryID {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// Share returns the category's percent of the period total.
func (s PeriodSummary) Share(categoryID int) float64 {
	amount, ok := s.AmountFor(categoryID)
	if !ok || s.Total.IsZero() {
		return 0
	}
	v, _ := amount.Div(s.Total).Mul(hundred).Float64()
	return v
}

// Only narrows the summary to one category. Total and Records still cover
// the whole period, so Share stays relative to all spending.
func (s PeriodSummary) Only(categoryID int) PeriodSummary {
	s.Categories = slices.DeleteFunc(slices.Clone(s.Categories), func(c CategorySpend) bool {
		return c.Category.ID != categoryID
	})
	return s
}

// Days returns the number of calendar days covered, counting both ends.
func (s PeriodSummary) Days() int {
	return int(s.End.Sub(s.Start).Hours()/24) + 1
}

// Label renders the summary's range for display.
func (s PeriodSummary) Label() string {
	return s.Start.Format(model.DateLayout) + " .. " + s.End.Format(model.DateLayout)
}

func (s PeriodSummary) clone() PeriodSummary {
	s.Categories = slices.Clone(s.Categories)
	return s
}

// CategoryDelta is one category's change from period A to period B.
type CategoryDelta struct {
	Category      model.Category
	Before        decimal.Decimal
	After         decimal.Decimal
	Delta         decimal.Decimal
	PercentChange Percent
	Severity      Severity
	BeforeCount   int
	AfterCount    int
}

// ComparisonReport is the full comparison of two periods.
// CategoryDeltas is ordered by absolute delta, largest first, with ties kept
// in catalog order. TopMovers holds the first TopMovers-count entries of that
// order whose severity is not STABLE.
type ComparisonReport struct {
	PeriodA            PeriodSummary
	PeriodB            PeriodSummary
	TotalDelta         decimal.Decimal
	TotalPercentChange Percent
	CategoryDeltas     []CategoryDelta
	TopMovers          []CategoryDelta
}

// Clone returns a deep copy that shares no slices with the receiver.
func (r ComparisonReport) Clone() ComparisonReport {
	r.PeriodA = r.PeriodA.clone()
	r.PeriodB = r.PeriodB.clone()
	r.CategoryDeltas = slices.Clone(r.CategoryDeltas)
	r.TopMovers = slices.Clone(r.TopMovers)
	return r
}

// HasData reports whether both periods contain at least one record.
func (r ComparisonReport) HasData() bool {
	return r.PeriodA.Records > 0 && r.PeriodB.Records > 0
}
