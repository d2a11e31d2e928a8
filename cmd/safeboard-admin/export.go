package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HyperCol/taipo-fire-php-re/internal/client"
	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export <block>",
	Short: "Write one block's room statuses to an xlsx workbook",
	Long: `Reads the block straight from the database, or with --server downloads
the workbook through the HTTP API (login via --email/--password or
SAFEBOARD_EMAIL/SAFEBOARD_PASSWORD).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		out, _ := cmd.Flags().GetString("out")

		block, ok := domain.LookupBlock(args[0])
		if !ok {
			return fmt.Errorf("unknown block %q", args[0])
		}
		if out == "" {
			out = fmt.Sprintf("block-%s-status.xlsx", block.ID)
		}

		var data []byte
		var err error
		if server != "" {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			data, err = exportViaAPI(cmd.Context(), server, email, password, block.ID)
		} else {
			var db *sql.DB
			db, err = openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			data, err = exportFromDB(cmd.Context(), repository.NewPostgresStatusRepository(db), block, time.Now())
		}
		if err != nil {
			return err
		}

		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

func exportFromDB(ctx context.Context, repo repository.StatusRepository, block domain.Block, now time.Time) ([]byte, error) {
	rows, err := repo.ListBlock(ctx, block.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load block %s: %w", block.ID, err)
	}
	return service.GenerateBlockExport(block, domain.NewBlockUnits(block.ID, rows), now)
}

func exportViaAPI(ctx context.Context, server, email, password, block string) ([]byte, error) {
	c, err := client.New(server, log)
	if err != nil {
		return nil, err
	}
	if email == "" {
		email = os.Getenv("SAFEBOARD_EMAIL")
	}
	if password == "" {
		password = os.Getenv("SAFEBOARD_PASSWORD")
	}
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	defer func() { _ = c.Logout(ctx) }()
	return c.ExportBlock(ctx, block)
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default block-<id>-status.xlsx)")
	exportCmd.Flags().String("server", "", "Base URL of a running safeboard server")
	exportCmd.Flags().String("email", "", "Login email for --server")
	exportCmd.Flags().String("password", "", "Login password for --server")
}
