package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "order").Logger()}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if len(o.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	status := o.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	created := domain.Order{UserID: o.UserID, Total: o.Total}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, total, status)
VALUES ($1, $2, $3)
RETURNING id, status, created_at
`, o.UserID, o.Total, status).Scan(&created.ID, &created.Status, &created.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", o.UserID).Msg("insert order")
		return nil, fmt.Errorf("insert order: %w", err)
	}

	created.Items = make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		item := it
		item.OrderID = created.ID
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id
`, created.ID, it.ProductID, it.Quantity, it.UnitPrice).Scan(&item.ID)
		if err != nil {
			r.logger.Error().Err(err).Int64("order_id", created.ID).Int64("product_id", it.ProductID).Msg("insert order item")
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		created.Items = append(created.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	r.logger.Info().Int64("order_id", created.ID).Int64("user_id", created.UserID).Int("items", len(created.Items)).Msg("order created")
	return &created, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT o.id, o.user_id, o.total, o.status, o.created_at,
       i.id, i.product_id, i.quantity, i.unit_price
FROM orders o
JOIN order_items i ON i.order_id = o.id
WHERE o.user_id = $1
ORDER BY o.created_at DESC, o.id DESC, i.id ASC
`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("list orders")
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	index := map[int64]int{}
	for rows.Next() {
		var o domain.Order
		var it domain.OrderItem
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt,
			&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		it.OrderID = o.ID
		pos, ok := index[o.ID]
		if !ok {
			pos = len(orders)
			index[o.ID] = pos
			orders = append(orders, o)
		}
		orders[pos].Items = append(orders[pos].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
