package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create writes the order and all of its items atomically.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}
