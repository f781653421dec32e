package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/model"
)

// TestMigration2_ExternalID upgrades a version 1 database that already holds
// expenses and checks they survive with no external identifier.
func TestMigration2_ExternalID(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "v1.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if err := migrations[0].Up(tx); err != nil {
		t.Fatalf("Failed to apply migration 1: %v", err)
	}
	if _, err := tx.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatalf("Failed to set version: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO categories (name) VALUES ('Lamb')`); err != nil {
		t.Fatalf("Failed to insert category: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO expenses (expense_date, amount, category_id) VALUES ('2025-01-02', '99.50', 1)`); err != nil {
		t.Fatalf("Failed to insert expense: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("version = %d, want %d", version, ExpectedSchemaVersion)
	}

	expenses, err := store.GetExpensesInRange(ctx, day("2025-01-01"), day("2025-01-31"))
	if err != nil {
		t.Fatalf("GetExpensesInRange() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	if expenses[0].ExternalID != "" {
		t.Errorf("ExternalID = %q, want empty", expenses[0].ExternalID)
	}

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_expenses_external_id'
	`).Scan(&indexCount)
	if err != nil {
		t.Fatalf("Failed to check index: %v", err)
	}
	if indexCount != 1 {
		t.Error("external_id index was not created")
	}
}

// TestMigration2_ManualExpensesShareNullExternalID checks the unique index only
// applies to imported rows.
func TestMigration2_ManualExpensesShareNullExternalID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Yogurt", "", "")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	for i := 0; i < 2; i++ {
		e := &model.Expense{Date: day("2025-01-05"), CategoryID: cat.ID, Amount: decimal.RequireFromString("10")}
		if err := store.AddExpense(ctx, e); err != nil {
			t.Fatalf("AddExpense() #%d error = %v", i+1, err)
		}
	}
}
