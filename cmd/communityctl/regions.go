package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"community-platform-backend/internal/app"
	"community-platform-backend/internal/config"
	"community-platform-backend/internal/regions"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/spf13/cobra"
)

var (
	regionsFile   string
	regionsURL    string
	regionsDryRun bool
)

func init() {
	rootCmd.AddCommand(importRegionsCmd)

	importRegionsCmd.Flags().StringVar(&regionsFile, "file", "", "JSON file with states and districts")
	importRegionsCmd.Flags().StringVar(&regionsURL, "url", "", "API URL returning states and districts")
	importRegionsCmd.Flags().BoolVar(&regionsDryRun, "dry-run", false, "Print the changes without writing them")
	importRegionsCmd.MarkFlagsMutuallyExclusive("file", "url")
	importRegionsCmd.MarkFlagsOneRequired("file", "url")
}

var importRegionsCmd = &cobra.Command{
	Use:   "import-regions",
	Short: "Synchronize German states and districts",
	Long: `Reconciles the stored states and districts with a dataset keyed by the
official municipality key (AGS). New keys are inserted, renamed entries updated
and keys missing from the dataset deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, db *sql.DB) error {
			plan, err := service.NewRegionService(app.Repositories(db)).Import(ctx, ds, regionsDryRun)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan, regionsDryRun)
			return nil
		})
	},
}

func loadDataset(ctx context.Context) (*regions.Dataset, error) {
	switch {
	case regionsFile != "":
		return regions.LoadFile(regionsFile)
	case regionsURL != "":
		return regions.Fetch(ctx, &http.Client{Timeout: 30 * time.Second}, regionsURL)
	}
	return nil, errors.New("either --file or --url is required")
}

func printPlan(w io.Writer, plan *repository.RegionPlan, dryRun bool) {
	verb := "applied"
	if dryRun {
		verb = "planned (dry run)"
	}
	fmt.Fprintf(w, "states:    %d inserts, %d updates, %d deletes\n", len(plan.StateInserts), len(plan.StateUpdates), len(plan.StateDeletes))
	fmt.Fprintf(w, "districts: %d inserts, %d updates, %d deletes\n", len(plan.DistrictInserts), len(plan.DistrictUpdates), len(plan.DistrictDeletes))
	for _, s := range plan.StateInserts {
		fmt.Fprintf(w, "  + state %s %s\n", s.AGS, s.Name)
	}
	for _, s := range plan.StateDeletes {
		fmt.Fprintf(w, "  - state %s %s\n", s.AGS, s.Name)
	}
	for _, d := range plan.DistrictInserts {
		fmt.Fprintf(w, "  + district %s %s\n", d.AGS, d.Name)
	}
	for _, d := range plan.DistrictDeletes {
		fmt.Fprintf(w, "  - district %s %s\n", d.AGS, d.Name)
	}
	fmt.Fprintln(w, verb)
}
