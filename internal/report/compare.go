package report

import (
	"fmt"
	"slices"

	"github.com/Veraticus/spend-ledger/internal/common"
)

// DefaultTopMovers is how many non-stable categories a report highlights.
const DefaultTopMovers = 5

// Config tunes comparison output.
type Config struct {
	Severity  SeverityPolicy
	TopMovers int
}

// DefaultConfig returns the default comparison settings.
func DefaultConfig() Config {
	return Config{
		Severity:  DefaultSeverityPolicy(),
		TopMovers: DefaultTopMovers,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TopMovers < 0 {
		return fmt.Errorf("%w: top movers must not be negative, got %d", common.ErrInvalidConfig, c.TopMovers)
	}
	return c.Severity.Validate()
}

// Comparer builds comparison reports. It holds no state beyond its config.
type Comparer struct {
	cfg Config
}

// NewComparer creates a comparer with a validated config.
func NewComparer(cfg Config) (*Comparer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Severity.Thresholds = slices.Clone(cfg.Severity.Thresholds)
	return &Comparer{cfg: cfg}, nil
}

// Compare reports how spending moved from period a to period b.
// Both summaries must cover the same categories; otherwise an error wrapping
// common.ErrPrecondition is returned.
func (c *Comparer) Compare(a, b PeriodSummary) (ComparisonReport, error) {
	if err := sameCategories(a, b); err != nil {
		return ComparisonReport{}, err
	}

	totalDelta := b.Total.Sub(a.Total)
	totalPct := UndefinedPercent()
	if !a.Total.IsZero() {
		totalPct = PercentOf(a.Total, b.Total)
	}

	deltas := make([]CategoryDelta, len(a.Categories))
	for i, before := range a.Categories {
		after := b.Categories[c.indexIn(b, before.Category.ID, i)]
		pct := PercentOf(before.Amount, after.Amount)
		deltas[i] = CategoryDelta{
			Category:      before.Category,
			Before:        before.Amount,
			After:         after.Amount,
			Delta:         after.Amount.Sub(before.Amount),
			PercentChange: pct,
			Severity:      c.cfg.Severity.Classify(pct),
			BeforeCount:   before.Count,
			AfterCount:    after.Count,
		}
	}

	// Stable sort keeps catalog order between equal magnitudes.
	slices.SortStableFunc(deltas, func(x, y CategoryDelta) int {
		return y.Delta.Abs().Cmp(x.Delta.Abs())
	})

	movers := make([]CategoryDelta, 0, c.cfg.TopMovers)
	for _, d := range deltas {
		if len(movers) == c.cfg.TopMovers {
			break
		}
		if d.Severity != SeverityStable {
			movers = append(movers, d)
		}
	}

	return ComparisonReport{
		PeriodA:            a.clone(),
		PeriodB:            b.clone(),
		TotalDelta:         totalDelta,
		TotalPercentChange: totalPct,
		CategoryDeltas:     deltas,
		TopMovers:          movers,
	}, nil
}

// indexIn finds the category in b, trying the matching position first.
func (c *Comparer) indexIn(b PeriodSummary, id, hint int) int {
	if hint < len(b.Categories) && b.Categories[hint].Category.ID == id {
		return hint
	}
	return slices.IndexFunc(b.Categories, func(s CategorySpend) bool { return s.Category.ID == id })
}

func sameCategories(a, b PeriodSummary) error {
	if len(a.Categories) != len(b.Categories) {
		return fmt.Errorf("%w: periods cover %d and %d categories",
			common.ErrPrecondition, len(a.Categories), len(b.Categories))
	}
	ids := make(map[int]struct{}, len(a.Categories))
	for _, c := range a.Categories {
		ids[c.Category.ID] = struct{}{}
	}
	if len(ids) != len(a.Categories) {
		return fmt.Errorf("%w: period %s lists a category twice", common.ErrPrecondition, a.Label())
	}
	for _, c := range b.Categories {
		if _, ok := ids[c.Category.ID]; !ok {
			return fmt.Errorf("%w: category %d is missing from period %s or repeated in period %s",
				common.ErrPrecondition, c.Category.ID, a.Label(), b.Label())
		}
		delete(ids, c.Category.ID)
	}
	return nil
}
