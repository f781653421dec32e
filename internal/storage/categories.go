package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
)

const categoryColumns = `id, name, alt_name, emoji, created_at`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.AltName, &cat.Emoji, &cat.CreatedAt)
	return cat, err
}

// GetCategories returns the catalog ordered by id.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory appends a category to the end of the catalog.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, altName, emoji string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, alt_name, emoji) VALUES (?, ?, ?)`,
		name, strings.TrimSpace(altName), strings.TrimSpace(emoji))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return s.GetCategoryByID(ctx, int(id))
}

// UpdateCategory renames a category in place. Its position in the catalog does not change.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int, name, altName, emoji string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, alt_name = ?, emoji = ? WHERE id = ?`,
		name, strings.TrimSpace(altName), strings.TrimSpace(emoji), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return requireAffected(result, fmt.Sprintf("category %d", id))
}

// DeleteCategory removes a category. Categories still referenced by expenses cannot be deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id).Scan(&count); err != nil {
			return fmt.Errorf("failed to check category usage: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("category %d has %d expenses: %w", id, count, common.ErrInUse)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return requireAffected(result, fmt.Sprintf("category %d", id))
	})
}

// SeedCategories inserts the given categories that are not yet present, in order.
// It returns the number of categories added.
func (s *SQLiteStorage) SeedCategories(ctx context.Context, categories []model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, cat := range categories {
			result, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO categories (name, alt_name, emoji) VALUES (?, ?, ?)`,
				cat.Name, cat.AltName, cat.Emoji)
			if err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}
