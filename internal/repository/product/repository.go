package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// ListActive returns active products ordered by name. An empty category means all.
	ListActive(ctx context.Context, category string) ([]domain.Product, error)
	// GetActiveByIDs returns the active products among ids keyed by id.
	GetActiveByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
