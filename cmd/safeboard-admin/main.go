// safeboard-admin operator tool: accounts, schema, exports and sessions.
// Connection settings come from the same environment as the server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/common/database"
	"github.com/HyperCol/taipo-fire-php-re/common/logger"
	commonredis "github.com/HyperCol/taipo-fire-php-re/common/redis"
	"github.com/HyperCol/taipo-fire-php-re/internal/config"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

var (
	cfg *config.Config
	log *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "safeboard-admin",
		Short:         "Operator tool for the safeboard status board",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			l, err := logger.NewLogger(cfg.Log.Level, "console", "safeboard-admin")
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			log = l
			return nil
		},
	}
	cmd.AddCommand(userCmd, migrateCmd, exportCmd, sessionCmd)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDB requires a reachable database; the admin tool has no memory fallback.
func openDB() (*sql.DB, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database %s@%s:%d: %w", cfg.Database.Database, cfg.Database.Host, cfg.Database.Port, err)
	}
	return db, nil
}

// openKV returns the Redis-backed KV and its closer.
func openKV(ctx context.Context) (store.KV, func(), error) {
	c := commonredis.NewRedisClient(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := commonredis.Ping(pingCtx, c); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	return store.NewRedisKV(c), func() { _ = c.Close() }, nil
}
