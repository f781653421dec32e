package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spend-ledger/internal/auth"
	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage ledger users",
		Long: `Add users and change passwords. Admins may request advisory reports;
staff may record and browse expenses.`,
	}

	cmd.AddCommand(addUserCmd())
	cmd.AddCommand(listUsersCmd())
	cmd.AddCommand(passwdCmd())

	return cmd
}

func addUserCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Long:  "Create a user. The password is read from " + passwordEnv + " or prompted for.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("invalid role %q: use %s or %s", role, model.RoleAdmin, model.RoleStaff)
			}

			password, err := readPassword("Password for " + args[0] + ": ")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := auth.NewAuthenticator(store).Register(ctx, args[0], password, r)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrDuplicateEntry):
					return common.NewUserError(fmt.Sprintf("user %q already exists", args[0]), err)
				case errors.Is(err, auth.ErrWeakCredentials):
					return common.NewUserError(err.Error(), err)
				}
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s user %s", user.Role, user.Username)))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleStaff), "role: admin or staff")

	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users, err := store.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No users yet. Use 'ledger users add <name> --role admin' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			fmt.Fprintln(w, "ID\tUsername\tRole\tCreated")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.CreatedAt.Format(model.DateLayout))
			}
			return nil
		},
	}
}

func passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			password, err := readPassword("New password for " + args[0] + ": ")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := auth.NewAuthenticator(store).ChangePassword(ctx, args[0], password); err != nil {
				return fmt.Errorf("failed to change password: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Password changed for "+args[0]))
			return nil
		},
	}
}
