package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day-granular format used for expense dates in storage and on the CLI.
const DateLayout = "2006-01-02"

// Expense represents a single recorded expenditure.
type Expense struct {
	Date       time.Time
	CreatedAt  time.Time
	Amount     decimal.Decimal
	Notes      string
	ExternalID string // source identifier for imported rows, empty for manual entries
	ID         int64
	CategoryID int
	Sequence   int // position among the same category's expenses on the same day
	UserID     int64
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
