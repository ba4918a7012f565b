package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/logger"
	"github.com/draymottishaw/college-assisted-explorer/internal/render"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
	"github.com/draymottishaw/college-assisted-explorer/internal/store"
	"github.com/draymottishaw/college-assisted-explorer/internal/store/repository"
)

func newDeriveCmd() *cobra.Command {
	var (
		outDir  string
		persist bool
		first   int
		last    int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:       "derive [career|current|all]...",
		Short:     "Derive dataset tables and write them as CSV",
		Long:      `Derive one or more datasets from the sources manifest. With no arguments every dataset is derived.`,
		ValidArgs: []string{derive.DatasetCareer, derive.DatasetCurrent, derive.DatasetAll},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, m, err := setup()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = m.DatasetNames()
			}

			opts := service.DatasetOptions{OutputDir: outDir, WriteOutputs: true}
			if persist {
				if cfg.DatabaseURL == "" {
					return fmt.Errorf("--persist needs DATABASE_URL")
				}
				db, err := store.NewDatabase(cfg.DatabaseURL, logger.WithComponent("store"))
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.RunMigrations(cmd.Context()); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				opts.Store = repository.NewCareerRepository(db)
			}

			svc := service.NewDatasetService(derive.NewRunner(m), dataset.NewHolder(nil), opts, logger.WithComponent("derive"))
			reporter := &consoleReporter{verbose: verbose}

			for _, name := range names {
				result, err := svc.Derive(cmd.Context(), derive.Spec{Dataset: name, First: first, Last: last}, reporter)
				if err != nil {
					return fmt.Errorf("derive %s: %w", name, err)
				}
				if err := render.RunSummary(os.Stdout, result, m.OutputPath(outDir, name)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default is the data directory)")
	cmd.Flags().BoolVar(&persist, "persist", false, "also store the tables in Postgres (DATABASE_URL)")
	cmd.Flags().IntVar(&first, "first", 0, "first season to load (overrides the manifest)")
	cmd.Flags().IntVar(&last, "last", 0, "last season to load (overrides the manifest)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every season as it loads")

	return cmd
}
