package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestCategories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	meat, err := store.CreateCategory(ctx, "Meat", "گۆش", "🥩")
	require.NoError(t, err)
	veg, err := store.CreateCategory(ctx, " Vegetables ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Vegetables", veg.Name)

	_, err = store.CreateCategory(ctx, "Meat", "", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, meat.ID, cats[0].ID, "catalog is ordered by id")
	assert.Equal(t, "🥩 Meat", cats[0].Label())

	require.NoError(t, store.UpdateCategory(ctx, meat.ID, "Lamb", "قوي گۆشى", "🐑"))
	got, err := store.GetCategoryByName(ctx, "Lamb")
	require.NoError(t, err)
	assert.Equal(t, meat.ID, got.ID)

	_, err = store.GetCategoryByName(ctx, "Meat")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, store.UpdateCategory(ctx, 999, "Ghost", "", ""), common.ErrNotFound)
}

func TestDeleteCategory_InUse(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Oil", "", "")
	require.NoError(t, err)
	require.NoError(t, store.AddExpense(ctx, &model.Expense{
		Date: day("2025-03-01"), Amount: decimal.NewFromInt(40), CategoryID: cat.ID,
	}))

	err = store.DeleteCategory(ctx, cat.ID)
	require.ErrorIs(t, err, common.ErrInUse)

	unused, err := store.CreateCategory(ctx, "Unused", "", "")
	require.NoError(t, err)
	require.NoError(t, store.DeleteCategory(ctx, unused.ID))
	assert.ErrorIs(t, store.DeleteCategory(ctx, unused.ID), common.ErrNotFound)
}

func TestSeedCategories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	added, err := store.SeedCategories(ctx, model.DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCategories), added)

	added, err = store.SeedCategories(ctx, model.DefaultCategories)
	require.NoError(t, err)
	assert.Zero(t, added)

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(model.DefaultCategories))
	assert.Equal(t, model.DefaultCategories[0].Name, cats[0].Name)
}

func TestExpenses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	meat, err := store.CreateCategory(ctx, "Meat", "", "")
	require.NoError(t, err)
	veg, err := store.CreateCategory(ctx, "Vegetables", "", "")
	require.NoError(t, err)

	rows := []model.Expense{
		{Date: day("2025-01-01"), Amount: decimal.RequireFromString("100.50"), CategoryID: meat.ID},
		{Date: day("2025-01-01"), Amount: decimal.RequireFromString("20"), CategoryID: meat.ID, Notes: "second delivery"},
		{Date: day("2025-01-15"), Amount: decimal.RequireFromString("35.25"), CategoryID: veg.ID},
		{Date: day("2025-02-01"), Amount: decimal.RequireFromString("9"), CategoryID: veg.ID},
	}
	for i := range rows {
		require.NoError(t, store.AddExpense(ctx, &rows[i]))
	}
	assert.Equal(t, 1, rows[0].Sequence)
	assert.Equal(t, 2, rows[1].Sequence, "sequence counts per day and category")
	assert.Equal(t, 1, rows[2].Sequence)

	got, err := store.GetExpensesInRange(ctx, day("2025-01-01"), day("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, "second delivery", got[1].Notes)

	// Both ends of the range are inclusive.
	got, err = store.GetExpensesInRange(ctx, day("2025-02-01"), day("2025-02-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = store.ListExpenses(ctx,
		service.DateRange{Start: day("2025-01-01"), End: day("2025-12-31")},
		service.ExpenseFilter{CategoryID: &veg.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = store.GetExpensesInRange(ctx, day("2025-02-01"), day("2025-01-01"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	require.NoError(t, store.UpdateExpense(ctx, rows[3].ID, decimal.NewFromInt(12), "fixed"))
	updated, err := store.GetExpense(ctx, rows[3].ID)
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "fixed", updated.Notes)

	require.NoError(t, store.DeleteExpense(ctx, rows[3].ID))
	_, err = store.GetExpense(ctx, rows[3].ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddExpense_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		expense *model.Expense
		name    string
	}{
		{name: "nil", expense: nil},
		{name: "zero amount", expense: &model.Expense{Date: day("2025-01-01"), Amount: decimal.Zero, CategoryID: 1}},
		{name: "negative amount", expense: &model.Expense{Date: day("2025-01-01"), Amount: decimal.NewFromInt(-5), CategoryID: 1}},
		{name: "missing date", expense: &model.Expense{Amount: decimal.NewFromInt(5), CategoryID: 1}},
		{name: "missing category", expense: &model.Expense{Date: day("2025-01-01"), Amount: decimal.NewFromInt(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.AddExpense(ctx, tt.expense))
		})
	}
}

func TestImportExpenses_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Bank", "", "")
	require.NoError(t, err)

	batch := func() []model.Expense {
		return []model.Expense{
			{Date: day("2025-04-01"), Amount: decimal.NewFromInt(10), CategoryID: cat.ID, ExternalID: "FIT-1"},
			{Date: day("2025-04-02"), Amount: decimal.NewFromInt(20), CategoryID: cat.ID, ExternalID: "FIT-2"},
		}
	}

	n, err := store.ImportExpenses(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.ImportExpenses(ctx, batch())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := store.GetExpensesInRange(ctx, day("2025-04-01"), day("2025-04-30"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "FIT-1", all[0].ExternalID)
}

func TestUsers(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, "admin", "hash-a", model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = store.CreateUser(ctx, "admin", "hash-b", model.RoleStaff)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = store.CreateUser(ctx, "cook", "hash-c", model.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	cook, err := store.CreateUser(ctx, "cook", "hash-c", model.RoleStaff)
	require.NoError(t, err)
	assert.False(t, cook.IsAdmin())

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)

	require.NoError(t, store.UpdateUserPassword(ctx, "cook", "hash-d"))
	got, err := store.GetUserByUsername(ctx, "cook")
	require.NoError(t, err)
	assert.Equal(t, "hash-d", got.PasswordHash)

	assert.ErrorIs(t, store.UpdateUserPassword(ctx, "ghost", "x"), common.ErrNotFound)
}
