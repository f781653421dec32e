package engine

import (
	"context"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// Presenter renders comparison reports and advisory results.
// PresentAdvisory is never called before PresentReport has returned for the
// same comparison, and it may be called from a different goroutine.
type Presenter interface {
	PresentReport(rep report.ComparisonReport, status AdvisoryStatus)
	PresentAdvisory(res advisory.Result)
}

// Authorizer decides whether the current identity may request advisory reports.
type Authorizer interface {
	IsPrivileged(ctx context.Context) (bool, error)
}
