package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/Veraticus/spend-ledger/internal/common"
)

// Severity buckets how large a category's change is between two periods.
type Severity int

// Severities in increasing order.
const (
	SeverityStable Severity = iota
	SeverityMinor
	SeveritySignificant
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityStable:
		return "STABLE"
	case SeverityMinor:
		return "MINOR"
	case SeveritySignificant:
		return "SIGNIFICANT"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// DefaultThresholds are the percent cut points between adjacent severities.
var DefaultThresholds = []float64{10, 30, 60}

// SeverityPolicy maps absolute percent change onto a Severity.
//
// Thresholds holds one ascending cut point per boundary: an absolute change
// below Thresholds[0] is STABLE, below Thresholds[1] is MINOR, below
// Thresholds[2] is SIGNIFICANT, and anything else is CRITICAL.
type SeverityPolicy struct {
	Thresholds []float64
}

// DefaultSeverityPolicy returns the 10/30/60 policy.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{Thresholds: slices.Clone(DefaultThresholds)}
}

// Validate checks that the policy is total and monotonic.
func (p SeverityPolicy) Validate() error {
	if len(p.Thresholds) != int(SeverityCritical) {
		return fmt.Errorf("%w: severity thresholds need %d cut points, got %d",
			common.ErrInvalidConfig, int(SeverityCritical), len(p.Thresholds))
	}
	prev := 0.0
	for i, t := range p.Thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%w: severity threshold %d is %v", common.ErrInvalidConfig, i, t)
		}
		if i > 0 && t <= prev {
			return fmt.Errorf("%w: severity thresholds must be strictly ascending: %v",
				common.ErrInvalidConfig, p.Thresholds)
		}
		prev = t
	}
	return nil
}

// Classify returns the severity of a percent change. Undefined is always CRITICAL.
func (p SeverityPolicy) Classify(pct Percent) Severity {
	v, ok := pct.Value()
	if !ok {
		return SeverityCritical
	}
	v = math.Abs(v)

	level := SeverityStable
	for _, t := range p.Thresholds {
		if v < t {
			break
		}
		level++
	}
	return min(level, SeverityCritical)
}
