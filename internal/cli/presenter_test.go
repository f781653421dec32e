package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/engine"
	"github.com/Veraticus/spend-ledger/internal/llm"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/report"
)

func testReport(t *testing.T) report.ComparisonReport {
	t.Helper()

	lamb := model.Category{ID: 1, Name: "Lamb", Emoji: "🐑"}
	oil := model.Category{ID: 2, Name: "Oil"}
	startA, err := model.ParseDay("2025-01-01")
	require.NoError(t, err)
	endA, err := model.ParseDay("2025-01-31")
	require.NoError(t, err)
	startB, err := model.ParseDay("2025-02-01")
	require.NoError(t, err)
	endB, err := model.ParseDay("2025-02-28")
	require.NoError(t, err)

	a := report.PeriodSummary{
		Start: startA, End: endA, Total: decimal.NewFromInt(1000), Records: 8,
		Categories: []report.CategorySpend{
			{Category: lamb, Amount: decimal.NewFromInt(800), Count: 5},
			{Category: oil, Amount: decimal.NewFromInt(200), Count: 3},
		},
	}
	b := report.PeriodSummary{
		Start: startB, End: endB, Total: decimal.NewFromInt(1400), Records: 9,
		Categories: []report.CategorySpend{
			{Category: lamb, Amount: decimal.NewFromInt(1200), Count: 6},
			{Category: oil, Amount: decimal.NewFromInt(200), Count: 3},
		},
	}

	c, err := report.NewComparer(report.DefaultConfig())
	require.NoError(t, err)
	rep, err := c.Compare(a, b)
	require.NoError(t, err)
	return rep
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(testReport(t))

	assert.Contains(t, out, "2025-01-01 .. 2025-01-31 (31 days, 8 records)  total 1000.00")
	assert.Contains(t, out, "2025-02-01 .. 2025-02-28 (28 days, 9 records)  total 1400.00")
	assert.Contains(t, out, "+400.00 (+40.0%)")
	assert.Contains(t, out, "🐑 Lamb")
	assert.Contains(t, out, "+50.0%")
	assert.Contains(t, out, "SIGNIFICANT")
	assert.Contains(t, out, "STABLE")
	assert.Contains(t, out, "Top movers:")

	lines := strings.Split(out, "\n")
	var lambLine, oilLine string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "Lamb"):
			lambLine = l
		case strings.HasPrefix(l, "Oil"):
			oilLine = l
		}
	}
	require.NotEmpty(t, lambLine)
	require.NotEmpty(t, oilLine)
	assert.Less(t, strings.Index(out, "Lamb"), strings.Index(out, "\nOil"), "largest change first")
	assert.Contains(t, oilLine, "+0.0%")
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary(testReport(t).PeriodA)

	assert.Contains(t, out, "Spend Report")
	assert.Contains(t, out, "2025-01-01 .. 2025-01-31 (31 days, 8 records)  total 1000.00")
	assert.Contains(t, out, "Records")

	var lambRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Lamb") {
			lambRow = line
		}
	}
	require.NotEmpty(t, lambRow)
	assert.Equal(t, []string{"🐑", "Lamb", "5", "800.00", "80.0%"}, strings.Fields(lambRow))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+1.50", signed("1.50"))
	assert.Equal(t, "-1.50", signed("-1.50"))
	assert.Equal(t, "0.00", signed("0.00"))
}

func TestFormatAdvisory(t *testing.T) {
	tests := []struct {
		name     string
		result   advisory.Result
		contains []string
		empty    bool
	}{
		{
			name:     "success",
			result:   advisory.Result{Outcome: advisory.OutcomeSuccess, Text: "Lamb spend jumped.\n"},
			contains: []string{"Advisory", "Lamb spend jumped."},
		},
		{
			name:     "timed out",
			result:   advisory.Result{Outcome: advisory.OutcomeTimedOut, Attempts: 3},
			contains: []string{"timed out after 3 attempts"},
		},
		{
			name: "api error",
			result: advisory.Result{
				Outcome: advisory.OutcomeAPIError,
				Message: "unauthorized",
				Err:     &llm.APIError{StatusCode: 401, Message: "unauthorized"},
			},
			contains: []string{"Advisory failed: unauthorized"},
		},
		{
			name:   "cancelled",
			result: advisory.Result{Outcome: advisory.OutcomeCancelled, Err: errors.New("ignored")},
			empty:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatAdvisory(tt.result)
			if tt.empty {
				assert.Empty(t, out)
				return
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestTerminalPresenter(t *testing.T) {
	t.Run("skipped advisory prints the reason", func(t *testing.T) {
		out := &syncBuffer{}
		p := NewTerminalPresenter(out, false)

		p.PresentReport(testReport(t), engine.AdvisoryDenied)

		assert.Contains(t, out.String(), "Top movers:")
		assert.Contains(t, out.String(), engine.AdvisoryDenied.Message())
	})

	t.Run("not requested prints only the report", func(t *testing.T) {
		out := &syncBuffer{}
		p := NewTerminalPresenter(out, false)

		p.PresentReport(testReport(t), engine.AdvisoryNotRequested)

		assert.NotContains(t, out.String(), "Advisory")
	})

	t.Run("advisory follows the report", func(t *testing.T) {
		out := &syncBuffer{}
		p := NewTerminalPresenter(out, true)

		p.PresentReport(testReport(t), engine.AdvisoryPending)
		p.PresentAdvisory(advisory.Result{Outcome: advisory.OutcomeSuccess, Text: "Buy lamb in bulk."})

		s := out.String()
		assert.Nil(t, p.spinner)
		assert.Less(t, strings.Index(s, "Top movers:"), strings.Index(s, "Buy lamb in bulk."))
	})
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	out := &syncBuffer{}
	s := StartSpinner(out, "Working")
	s.Stop()
	s.Stop()
}
