package main

import (
	"context"
	"database/sql"
	"log"

	"community-platform-backend/internal/app"
	"community-platform-backend/internal/config"
	"community-platform-backend/internal/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "communityctl",
	Short: "Maintenance tasks for the community platform",
	Long: `communityctl runs maintenance tasks against the platform database:
schema migration, region imports, development seeding and score recalculation.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.dev.yaml", "Path to configuration file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %s", err)
	}
}

// withDB loads the configuration and hands an open database to fn
func withDB(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, db *sql.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, cfg, db)
}
