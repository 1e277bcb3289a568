package main

import (
	"fmt"
	"os"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/seed"
	"storefront/internal/usecase"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the catalog with sample products (skipped when products exist)",
		Long: `Populate the catalog with sample products.

Examples:
  storefront seed
  storefront seed --file catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			settingsRepo := infraRepo.NewSettingsGormRepository(rt.gormDB)
			settingsUC := usecase.NewSettingsUsecase(settingsRepo, infraRepo.NewTxManagerGorm(rt.gormDB), nil)
			if err := settingsUC.EnsureDefaults(ctx); err != nil {
				return fmt.Errorf("seed settings: %w", err)
			}

			n, err := seed.Catalog(ctx, infraRepo.NewProductGormRepository(rt.gormDB), catalog, rt.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (defaults to the built-in sample catalog)")
	return cmd
}

func loadCatalog(file string) ([]model.Product, error) {
	if file == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.ParseCatalog(data)
}
