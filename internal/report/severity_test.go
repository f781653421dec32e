package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spend-ledger/internal/common"
)

func pct(v float64) Percent {
	return Percent{value: v, defined: true}
}

func TestSeverityPolicy_Classify(t *testing.T) {
	policy := DefaultSeverityPolicy()

	tests := []struct {
		pct  Percent
		want Severity
	}{
		{pct(0), SeverityStable},
		{pct(9.99), SeverityStable},
		{pct(-9.99), SeverityStable},
		{pct(10), SeverityMinor},
		{pct(-25), SeverityMinor},
		{pct(30), SeveritySignificant},
		{pct(59.9), SeveritySignificant},
		{pct(60), SeverityCritical},
		{pct(-100), SeverityCritical},
		{pct(1e9), SeverityCritical},
		{UndefinedPercent(), SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.pct.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Classify(tt.pct))
		})
	}
}

func TestSeverityPolicy_Monotonic(t *testing.T) {
	policy := SeverityPolicy{Thresholds: []float64{5, 15, 45}}
	prev := SeverityStable
	for v := 0.0; v <= 200; v += 0.5 {
		got := policy.Classify(pct(v))
		assert.GreaterOrEqual(t, got, prev, "severity decreased at %v", v)
		assert.Equal(t, got, policy.Classify(pct(-v)), "sign changed severity at %v", v)
		prev = got
	}
}

func TestSeverityPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultSeverityPolicy().Validate())

	bad := [][]float64{
		nil,
		{10, 30},
		{10, 30, 60, 90},
		{30, 10, 60},
		{10, 10, 60},
		{-1, 10, 60},
		{10, math.NaN(), 60},
		{10, 30, math.Inf(1)},
	}
	for _, th := range bad {
		assert.ErrorIs(t, SeverityPolicy{Thresholds: th}.Validate(), common.ErrInvalidConfig, "%v", th)
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "STABLE", SeverityStable.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "Severity(9)", Severity(9).String())
}
