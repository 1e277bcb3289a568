package seed

import (
	"context"
	_ "embed"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []catalogProduct `yaml:"products"`
}

type catalogProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Size        string `yaml:"size"`
	Notes       string `yaml:"notes"`
	ImageURL    string `yaml:"image_url"`
}

// 同梱のカタログを読む
func DefaultCatalog() ([]model.Product, error) {
	return ParseCatalog(defaultCatalog)
}

func ParseCatalog(data []byte) ([]model.Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]model.Product, 0, len(f.Products))
	for i, cp := range f.Products {
		if cp.Name == "" {
			return nil, fmt.Errorf("catalog product %d: name is required", i)
		}
		price, err := decimal.NewFromString(cp.Price)
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("catalog product %q: invalid price %q", cp.Name, cp.Price)
		}
		size := cp.Size
		if size == "" {
			size = model.DefaultProductSize
		}
		products = append(products, model.Product{
			Name:        cp.Name,
			Description: cp.Description,
			Price:       price,
			Size:        size,
			Notes:       cp.Notes,
			ImageURL:    cp.ImageURL,
		})
	}
	return products, nil
}

// 商品が1件でもあれば何もしない。投入件数を返す。
func Catalog(ctx context.Context, products repo.ProductRepository, catalog []model.Product, logger *zap.Logger) (int, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		logger.Info("catalog already has products, skipping seed", zap.Int64("count", n))
		return 0, nil
	}

	for _, p := range catalog {
		if _, err := products.Create(ctx, p); err != nil {
			return 0, fmt.Errorf("create product %q: %w", p.Name, err)
		}
	}
	logger.Info("catalog seeded", zap.Int("count", len(catalog)))
	return len(catalog), nil
}
