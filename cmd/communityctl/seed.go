package main

import (
	"context"
	"database/sql"
	"encoding/json"

	"community-platform-backend/internal/app"
	"community-platform-backend/internal/config"
	"community-platform-backend/internal/seed"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedOpts.Profiles, "profiles", seedOpts.Profiles, "Number of profiles")
	seedCmd.Flags().IntVar(&seedOpts.Organizations, "organizations", seedOpts.Organizations, "Number of organizations, every fourth is a network")
	seedCmd.Flags().IntVar(&seedOpts.Events, "events", seedOpts.Events, "Number of events")
	seedCmd.Flags().IntVar(&seedOpts.Projects, "projects", seedOpts.Projects, "Number of projects")
	seedCmd.Flags().StringVar(&seedOpts.Password, "password", seedOpts.Password, "Password of every seeded profile")
	seedCmd.Flags().Uint64Var(&seedOpts.Seed, "seed", seedOpts.Seed, "Random seed")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill a development database with fake data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *sql.DB) error {
			result, err := seed.Run(ctx, app.Repositories(db), seedOpts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		})
	},
}
