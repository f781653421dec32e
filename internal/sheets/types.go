package sheets

import (
	"github.com/shopspring/decimal"
)

// ComparisonRow is one category row of the Comparison tab.
type ComparisonRow struct {
	Category    string
	Before      decimal.Decimal
	After       decimal.Decimal
	Delta       decimal.Decimal
	Change      string
	Severity    string
	ShareBefore float64
	ShareAfter  float64
	CountBefore int
	CountAfter  int
}

// sheet layout
const (
	comparisonTab     = "Comparison"
	tableHeaderRow    = 7 // zero-based row of the category table header
	comparisonColumns = 10
)
