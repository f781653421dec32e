package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/config"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/service"
	"github.com/Veraticus/spend-ledger/internal/storage"
)

// passwordEnv supplies a password without a terminal prompt.
const passwordEnv = "LEDGER_PASSWORD"

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// findCategory resolves a category by name, or by ID when the argument is numeric.
func findCategory(ctx context.Context, store service.Storage, nameOrID string) (*model.Category, error) {
	if id, err := strconv.Atoi(nameOrID); err == nil {
		return store.GetCategoryByID(ctx, id)
	}
	cat, err := store.GetCategoryByName(ctx, nameOrID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(
			fmt.Sprintf("category %q not found. Use 'ledger categories list' to see available categories.", nameOrID), err)
	}
	return cat, err
}

// parseAmount parses a positive money amount.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}

// readPassword reads a password from LEDGER_PASSWORD or prompts on the terminal.
func readPassword(prompt string) (string, error) {
	if p := os.Getenv(passwordEnv); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: no terminal for password prompt; set %s", common.ErrMissingConfig, passwordEnv)
	}

	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
