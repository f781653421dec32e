package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add, rename, and delete the expense categories used for recording and comparison.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(seedCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'ledger categories seed' or 'ledger categories add' to create some."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Alt name"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 24),
				strings.Repeat("-", 24))

			for _, cat := range categories {
				alt := cat.AltName
				if alt == "" {
					alt = cli.SubtleStyle.Render("-")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, cat.Label(), alt)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var altName, emoji string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category at the end of the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0], altName, emoji)
			if errors.Is(err, common.ErrDuplicateEntry) {
				return common.NewUserError(fmt.Sprintf("category %q already exists", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %s (ID %d)", cat.Label(), cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&altName, "alt", "", "name in the staff's second language")
	cmd.Flags().StringVar(&emoji, "emoji", "", "emoji shown next to the name")

	return cmd
}

func renameCategoryCmd() *cobra.Command {
	var altName, emoji string

	cmd := &cobra.Command{
		Use:   "rename <name-or-id> <new-name>",
		Short: "Rename a category",
		Long:  `Rename a category in place. Its position in reports does not change.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := findCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("alt") {
				altName = cat.AltName
			}
			if !cmd.Flags().Changed("emoji") {
				emoji = cat.Emoji
			}

			if err := store.UpdateCategory(ctx, cat.ID, args[1], altName, emoji); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return common.NewUserError(fmt.Sprintf("category %q already exists", args[1]), err)
				}
				return fmt.Errorf("failed to rename category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %s to %s", cat.Name, args[1])))
			return nil
		},
	}

	cmd.Flags().StringVar(&altName, "alt", "", "new name in the staff's second language")
	cmd.Flags().StringVar(&emoji, "emoji", "", "new emoji")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete an unused category",
		Long:  `Delete a category. Categories with recorded expenses cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := findCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			if !force {
				reader := cli.NewNonBlockingReader(os.Stdin)
				ok, confirmErr := reader.Confirm(ctx, cmd.OutOrStdout(), fmt.Sprintf("Delete category %s?", cat.Label()))
				if confirmErr != nil {
					return confirmErr
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			if err := store.DeleteCategory(ctx, cat.ID); err != nil {
				if errors.Is(err, common.ErrInUse) {
					return common.NewUserError(
						fmt.Sprintf("category %s still has expenses; rename it instead", cat.Name), err)
				}
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", cat.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the starter kitchen categories",
		Long:  `Add the default restaurant categories that are not already present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			added, err := store.SeedCategories(ctx, model.DefaultCategories)
			if err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d of %d default categories", added, len(model.DefaultCategories))))
			return nil
		},
	}
}
