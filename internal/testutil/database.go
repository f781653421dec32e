// Package testutil provides database fixtures and in-memory collaborators for ledger tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/storage"
)

// TestDB is a migrated SQLite database scoped to one test.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories []model.Category
}

// SetupTestDB creates a migrated database in the test's temp dir and seeds
// the given categories. It is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, model.DefaultCategories...)
//	db.AddExpense("2025-01-03", "Lamb", "120.50")
func SetupTestDB(t *testing.T, cats ...model.Category) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(cats) > 0 {
		if _, err := store.SeedCategories(ctx, cats); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}

	seeded, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("failed to load categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: seeded,
		t:          t,
	}
}

// MustCategory returns the seeded category with the given name or fails the test.
func (db *TestDB) MustCategory(name string) model.Category {
	db.t.Helper()
	for _, c := range db.Categories {
		if c.Name == name {
			return c
		}
	}
	db.t.Fatalf("category %q was not seeded", name)
	return model.Category{}
}

// AddExpense records an expense against a seeded category.
func (db *TestDB) AddExpense(date, category, amount string) model.Expense {
	db.t.Helper()
	e := NewExpense(db.t, date, db.MustCategory(category).ID, amount)
	if err := db.Storage.AddExpense(context.Background(), &e); err != nil {
		db.t.Fatalf("failed to add expense: %v", err)
	}
	return e
}

// NewExpense builds an unsaved expense from string fixtures.
func NewExpense(t *testing.T, date string, categoryID int, amount string) model.Expense {
	t.Helper()
	d := MustDay(t, date)
	a, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad amount %q: %v", amount, err)
	}
	return model.Expense{Date: d, CategoryID: categoryID, Amount: a}
}

// MustDay parses a YYYY-MM-DD date or fails the test.
func MustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDay(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}
