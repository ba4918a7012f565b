package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/logger"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/render"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
)

// loadSnapshot derives every dataset in memory.
func loadSnapshot(ctx context.Context, m *derive.Manifest) (*dataset.Holder, error) {
	holder := dataset.NewHolder(nil)
	svc := service.NewDatasetService(derive.NewRunner(m), holder, service.DatasetOptions{}, logger.WithComponent("derive"))
	res, err := svc.Reload(ctx)
	if err != nil {
		return nil, err
	}
	for name, reason := range res.Failures {
		fmt.Fprintf(os.Stderr, "⚠️  %s not derived: %s\n", name, reason)
	}
	return holder, nil
}

func newSimilarCmd() *cobra.Command {
	var (
		population string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "similar <player>",
		Short: "Rank the players whose shot diet is closest to a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, m, err := setup()
			if err != nil {
				return err
			}
			holder, err := loadSnapshot(cmd.Context(), m)
			if err != nil {
				return err
			}

			if top <= 0 {
				top = cfg.SimilarityTopN
			}
			svc := service.NewSimilarityService(holder, nil, 0, top, logger.WithComponent("similarity"))
			res, err := svc.Similar(cmd.Context(), metrics.NewPlayerKey(args[0]), service.SimilarRequest{Population: population, TopN: top})
			if err != nil {
				return err
			}
			return render.Similar(os.Stdout, res)
		},
	}

	cmd.Flags().StringVarP(&population, "population", "p", dataset.PopulationCombined, "comparison population (nba, current, non_nba, all, combined)")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "number of matches (default is SIMILARITY_TOP_N)")

	return cmd
}

func newProfileCmd() *cobra.Command {
	var population string

	cmd := &cobra.Command{
		Use:   "profile <player>",
		Short: "Show a player's shot profile against role averages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, err := setup()
			if err != nil {
				return err
			}
			holder, err := loadSnapshot(cmd.Context(), m)
			if err != nil {
				return err
			}

			p, err := service.NewProfileService(holder).Profile(metrics.NewPlayerKey(args[0]), population)
			if err != nil {
				return err
			}
			return render.Profile(os.Stdout, p)
		},
	}

	cmd.Flags().StringVarP(&population, "population", "p", dataset.PopulationCombined, "population the player is looked up in")

	return cmd
}
