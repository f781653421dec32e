package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/service"
)

const expenseColumns = `id, expense_date, amount, category_id, user_id, notes, sequence_number, external_id, created_at`

func scanExpense(row interface{ Scan(...any) error }) (model.Expense, error) {
	var (
		exp        model.Expense
		date       string
		userID     sql.NullInt64
		externalID sql.NullString
	)
	if err := row.Scan(&exp.ID, &date, &exp.Amount, &exp.CategoryID, &userID,
		&exp.Notes, &exp.Sequence, &externalID, &exp.CreatedAt); err != nil {
		return exp, err
	}

	day, err := model.ParseDay(date)
	if err != nil {
		return exp, fmt.Errorf("expense %d has malformed date %q: %w", exp.ID, date, err)
	}
	exp.Date = day
	exp.UserID = userID.Int64
	exp.ExternalID = externalID.String
	return exp, nil
}

func nullableUser(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func nullableExternalID(id string) sql.NullString {
	id = strings.TrimSpace(id)
	return sql.NullString{String: id, Valid: id != ""}
}

// AddExpense records an expense and assigns its ID and per-day sequence number.
func (s *SQLiteStorage) AddExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertExpenseTx(ctx, tx, expense, false)
	})
}

// ImportExpenses records a batch of imported expenses in one transaction.
// Rows whose ExternalID was already imported are skipped. It returns the number inserted.
func (s *SQLiteStorage) ImportExpenses(ctx context.Context, expenses []model.Expense) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return 0, fmt.Errorf("expense at index %d: %w", i, err)
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range expenses {
			if err := insertExpenseTx(ctx, tx, &expenses[i], true); err != nil {
				return err
			}
			if expenses[i].ID != 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("imported expenses", "received", len(expenses), "inserted", inserted)
	return inserted, nil
}

func insertExpenseTx(ctx context.Context, tx *sql.Tx, expense *model.Expense, ignoreDuplicates bool) error {
	day := model.Day(expense.Date).Format(model.DateLayout)

	var next int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sequence_number), 0) + 1
		FROM expenses
		WHERE expense_date = ? AND category_id = ?`,
		day, expense.CategoryID).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute sequence number: %w", err)
	}

	verb := "INSERT"
	if ignoreDuplicates {
		verb = "INSERT OR IGNORE"
	}

	result, err := tx.ExecContext(ctx, verb+` INTO expenses
		(expense_date, amount, category_id, user_id, notes, sequence_number, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		day, expense.Amount.String(), expense.CategoryID, nullableUser(expense.UserID),
		strings.TrimSpace(expense.Notes), next, nullableExternalID(expense.ExternalID))
	if isUniqueViolation(err) {
		return fmt.Errorf("expense %q: %w", expense.ExternalID, common.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}
	expense.ID = id
	expense.Sequence = next
	return nil
}

// GetExpense returns a single expense by ID.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	exp, err := scanExpense(s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return &exp, nil
}

// GetExpensesInRange returns every expense dated within [start, end], both days inclusive.
func (s *SQLiteStorage) GetExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	return s.ListExpenses(ctx, service.DateRange{Start: start, End: end}, service.ExpenseFilter{})
}

// ListExpenses returns expenses dated within the range, narrowed by the filter.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, dr service.DateRange, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(dr.Start, dr.End); err != nil {
		return nil, err
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_date BETWEEN ? AND ?`
	args := []any{
		model.Day(dr.Start).Format(model.DateLayout),
		model.Day(dr.End).Format(model.DateLayout),
	}

	if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	if filter.UserID != nil {
		query += ` AND user_id = ?`
		args = append(args, *filter.UserID)
	}

	query += ` ORDER BY expense_date, category_id, sequence_number`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	slog.Debug("retrieved expenses", "range", dr.String(), "count", len(expenses))
	return expenses, nil
}

// UpdateExpense changes the amount and notes of an expense.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, id int64, amount decimal.Decimal, notes string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidExpense, amount)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, notes = ? WHERE id = ?`,
		amount.String(), strings.TrimSpace(notes), id)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("expense %d", id))
}

// DeleteExpense removes an expense.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("expense %d", id))
}
