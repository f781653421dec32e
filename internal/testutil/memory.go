package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/spend-ledger/internal/model"
)

// MemorySource is an in-memory expense data source.
// Set Err to make every read fail.
type MemorySource struct {
	Err        error
	categories []model.Category
	expenses   []model.Expense
	mu         sync.Mutex
}

// NewMemorySource creates a source with the given catalog.
func NewMemorySource(cats ...model.Category) *MemorySource {
	return &MemorySource{categories: slices.Clone(cats)}
}

// Add appends expenses.
func (m *MemorySource) Add(expenses ...model.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, expenses...)
}

// GetCategories returns the catalog in insertion order.
func (m *MemorySource) GetCategories(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.categories), nil
}

// GetExpensesInRange returns expenses dated between start and end inclusive.
func (m *MemorySource) GetExpensesInRange(_ context.Context, start, end time.Time) ([]model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	start, end = model.Day(start), model.Day(end)
	var out []model.Expense
	for _, e := range m.expenses {
		d := model.Day(e.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
