package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
)

var (
	envFile string
	cfg     config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront cart and checkout service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			cfg = config.Load(envFile)
		} else {
			cfg = config.Load()
		}
		logger = logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	receiptsCmd.AddCommand(receiptsRegenerateCmd)
	searchCmd.AddCommand(searchReindexCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(receiptsCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*gorm.DB, error) {
	if err := config.Require(map[string]string{"DATABASE_URL": cfg.DatabaseURL}); err != nil {
		return nil, err
	}
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Open(initCtx, cfg.DatabaseURL)
}

func closeDB(gdb *gorm.DB) {
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		gdb, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
		logger.Info("migration complete")
		return nil
	},
}
