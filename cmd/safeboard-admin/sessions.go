package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage login sessions",
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Log out every user",
	Long:  `Deletes all sessions from Redis. Everyone has to log in again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, closeKV, err := openKV(cmd.Context())
		if err != nil {
			return err
		}
		defer closeKV()

		n, err := service.NewKVSessionStore(kv).Purge(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s)\n", n)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionPurgeCmd)
}
