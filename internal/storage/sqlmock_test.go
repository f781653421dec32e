package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newWithDB(db), mock
}

func TestGetCategories_QueryFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + categoryColumns + ` FROM categories ORDER BY id`)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := store.GetCategories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query categories")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExpensesInRange_RowError(t *testing.T) {
	store, mock := newMockStorage(t)

	cols := []string{"id", "expense_date", "amount", "category_id", "user_id",
		"notes", "sequence_number", "external_id", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(1, "2025-01-01", "10.00", 1, nil, "", 1, nil, time.Now()).
		RowError(0, errors.New("database disk image is malformed"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM expenses WHERE expense_date BETWEEN ? AND ?`)).
		WithArgs("2025-01-01", "2025-01-31").
		WillReturnRows(rows)

	_, err := store.GetExpensesInRange(context.Background(), day("2025-01-01"), day("2025-01-31"))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExpensesInRange_MalformedDate(t *testing.T) {
	store, mock := newMockStorage(t)

	cols := []string{"id", "expense_date", "amount", "category_id", "user_id",
		"notes", "sequence_number", "external_id", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM expenses WHERE expense_date BETWEEN ? AND ?`)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(7, "01/02/2025", "10.00", 1, nil, "", 1, nil, time.Now()))

	_, err := store.GetExpensesInRange(context.Background(), day("2025-01-01"), day("2025-01-31"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed date")
}

func TestDeleteCategory_RollsBackOnFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM expenses WHERE category_id = ?`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ?`)).
		WithArgs(3).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := store.DeleteCategory(context.Background(), 3)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
