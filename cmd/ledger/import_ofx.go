package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var category, username string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-ofx <file>",
		Short: "Import debits from an OFX/QFX statement",
		Long: `Import spending from a bank or credit card OFX/QFX export as expenses
in one category. Credits are skipped. Re-importing the same statement adds
nothing, since each transaction is keyed by its account and FITID.`,
		Example: `  ledger import-ofx ~/Downloads/march.qfx --category "Cleaning Supplies"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0]) //nolint:gosec // user-supplied statement path
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer func() { _ = f.Close() }()

			entries, err := ofx.NewParser(slog.Default()).ParseFile(ctx, f)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := findCategory(ctx, store, category)
			if err != nil {
				return err
			}

			var userID int64
			if username != "" {
				user, userErr := store.GetUserByUsername(ctx, username)
				if userErr != nil {
					return fmt.Errorf("failed to find user: %w", userErr)
				}
				userID = user.ID
			}

			expenses := ofx.Expenses(entries, cat.ID, userID)
			out := cmd.OutOrStdout()

			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Would import %d of %d transactions into %s", len(expenses), len(entries), cat.Label())))
				return nil
			}

			added, err := store.ImportExpenses(ctx, expenses)
			if err != nil {
				return fmt.Errorf("failed to import expenses: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d expenses into %s", added, cat.Label())))
			if skipped := len(expenses) - added; skipped > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d already imported", skipped)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category for the imported expenses (required)")
	cmd.Flags().StringVar(&username, "user", "", "user to record the expenses under")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and count without saving")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
