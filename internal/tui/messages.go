package tui

import (
	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// reportMsg carries the finished comparison.
type reportMsg struct {
	report report.ComparisonReport
	status engine.AdvisoryStatus
}

// advisoryMsg carries the advisory outcome.
type advisoryMsg struct {
	result advisory.Result
}

// taskMsg hands the running advisory task to the model so it can be cancelled.
type taskMsg struct {
	handle *advisory.TaskHandle
}

// errMsg reports a failed comparison.
type errMsg struct {
	err error
}

// cancelledMsg confirms a cancel request was handled.
type cancelledMsg struct {
	ok bool
}
