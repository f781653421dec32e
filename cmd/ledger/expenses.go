package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/model"
	"github.com/Veraticus/spend-ledger/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Record and browse expenses",
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(updateExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var date, notes, username string

	cmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Record an expense",
		Example: `  ledger expenses add Lamb 320.50 --date 2025-03-14
  ledger expenses add 3 45 --notes "market run"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			day := model.Day(time.Now())
			if date != "" {
				if day, err = model.ParseDay(date); err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := findCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			expense := &model.Expense{Date: day, CategoryID: cat.ID, Amount: amount, Notes: notes}
			if username != "" {
				user, userErr := store.GetUserByUsername(ctx, username)
				if userErr != nil {
					return fmt.Errorf("failed to find user: %w", userErr)
				}
				expense.UserID = user.ID
			}

			if err := store.AddExpense(ctx, expense); err != nil {
				return fmt.Errorf("failed to add expense: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s for %s on %s (ID %d)",
				amount.StringFixed(2), cat.Label(), day.Format(model.DateLayout), expense.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&username, "user", "", "user who recorded the expense")

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var start, end, category string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses in a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			today := model.Day(time.Now())
			if end == "" {
				end = today.Format(model.DateLayout)
			}
			if start == "" {
				start = today.AddDate(0, 0, -30).Format(model.DateLayout)
			}
			dr, err := service.ParseDateRange(start, end)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			names := make(map[int]string, len(categories))
			for _, c := range categories {
				names[c.ID] = c.Label()
			}

			filter := service.ExpenseFilter{Limit: limit}
			if category != "" {
				cat, findErr := findCategory(ctx, store, category)
				if findErr != nil {
					return findErr
				}
				filter.CategoryID = &cat.ID
			}

			expenses, err := store.ListExpenses(ctx, dr, filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(expenses) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No expenses in "+dr.String()))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "ID\tDate\tCategory\tAmount\tNotes\t")
			total := decimal.Zero
			for _, e := range expenses {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n",
					e.ID, e.Date.Format(model.DateLayout), names[e.CategoryID], e.Amount.StringFixed(2), e.Notes)
				total = total.Add(e.Amount)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write table: %w", err)
			}

			fmt.Fprintln(out, cli.BoldStyle.Render(fmt.Sprintf("%d expenses, total %s", len(expenses), total.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "last day YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")

	return cmd
}

func updateExpenseCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "update <id> <amount>",
		Short: "Change an expense's amount and notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense ID %q: %w", args[0], err)
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			existing, err := store.GetExpense(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to find expense: %w", err)
			}
			if !cmd.Flags().Changed("notes") {
				notes = existing.Notes
			}

			if err := store.UpdateExpense(ctx, id, amount, notes); err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated expense %d: %s -> %s",
				id, existing.Amount.StringFixed(2), amount.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the notes")

	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense ID %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteExpense(ctx, id); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
			return nil
		},
	}
}
