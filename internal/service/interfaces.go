// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	CategoryID *int
	UserID     *int64
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Expense operations
	AddExpense(ctx context.Context, expense *model.Expense) error
	ImportExpenses(ctx context.Context, expenses []model.Expense) (int, error)
	GetExpense(ctx context.Context, id int64) (*model.Expense, error)
	GetExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error)
	ListExpenses(ctx context.Context, dr DateRange, filter ExpenseFilter) ([]model.Expense, error)
	UpdateExpense(ctx context.Context, id int64, amount decimal.Decimal, notes string) error
	DeleteExpense(ctx context.Context, id int64) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name, altName, emoji string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int, name, altName, emoji string) error
	DeleteCategory(ctx context.Context, id int) error

	// User operations
	CreateUser(ctx context.Context, username, passwordHash string, role model.Role) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// DateRange represents an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates into a range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := model.ParseDay(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := model.ParseDay(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// String renders the range as "start .. end".
func (d DateRange) String() string {
	return d.Start.Format(model.DateLayout) + " .. " + d.End.Format(model.DateLayout)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
