package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create an account or reset its password",
	Long: `Creates the account if the email is new, otherwise replaces its password,
display name and admin flag. Emails are matched case-insensitively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		username, _ := cmd.Flags().GetString("name")
		isAdmin, _ := cmd.Flags().GetBool("admin")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		// sessions are not touched by EnsureUser
		auth := service.NewAuthService(repository.NewPostgresUsersRepository(db),
			service.NewKVSessionStore(store.NewMemoryKV()), cfg.Session.TTL, log)
		u, err := auth.EnsureUser(cmd.Context(), args[0], password, username, isAdmin)
		if err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (uid %s, admin=%t)\n", u.Email, u.UID, u.IsAdmin)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := repository.NewPostgresUsersRepository(db).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		printUsers(cmd.OutOrStdout(), users)
		return nil
	},
}

func printUsers(out io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UID\tEMAIL\tNAME\tROLE")
	for _, u := range users {
		role := "volunteer"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UID, u.Email, u.Username, role)
	}
	w.Flush()
}

func init() {
	userAddCmd.Flags().StringP("password", "p", "", "Password (required)")
	userAddCmd.Flags().StringP("name", "n", "", "Display name shown as updatedBy (defaults to the email's local part)")
	userAddCmd.Flags().Bool("admin", false, "Grant news administration")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd, userListCmd)
}
