package main

import (
	"context"
	"database/sql"
	"fmt"

	"community-platform-backend/internal/app"
	"community-platform-backend/internal/config"
	"community-platform-backend/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scoresCmd)
	scoresCmd.AddCommand(scoresRecalculateCmd)
}

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Profile and organization completeness scores",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var scoresRecalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recompute every score now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *sql.DB) error {
			result, err := service.NewScoreService(app.Repositories(db)).RecalculateAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d profiles and %d organizations\n", result.Profiles, result.Organizations)
			return nil
		})
	},
}
