package product

import (
	"context"

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
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "product").Logger()}
}

const productColumns = `id, name, COALESCE(description, ''), price, COALESCE(image, ''), COALESCE(category, ''), stock, active, created_at`

func (r *postgresRepo) ListActive(ctx context.Context, category string) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE active AND ($1 = '' OR category = $1)
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("list products")
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("list products rows")
		return nil, err
	}
	r.logger.Debug().Str("category", category).Int("count", len(result)).Msg("list products")
	return result, nil
}

func (r *postgresRepo) GetActiveByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `
SELECT ` + productColumns + `
FROM products
WHERE active AND id = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Error().Err(err).Ints64("ids", ids).Msg("get products by id")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]string, error) {
	const q = `
SELECT DISTINCT category
FROM products
WHERE active AND category IS NOT NULL AND category <> ''
ORDER BY category ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("list categories")
		return nil, err
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, description, price, image, category, stock, active)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image = EXCLUDED.image,
    category = EXCLUDED.category,
    stock = EXCLUDED.stock,
    active = EXCLUDED.active
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price, p.Image, p.Category, p.Stock, p.Active))
	if err != nil {
		r.logger.Error().Err(err).Str("name", p.Name).Msg("upsert product")
		return nil, err
	}
	r.logger.Debug().Str("name", res.Name).Int64("id", res.ID).Msg("upserted product")
	return &res, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.Stock, &p.Active, &p.CreatedAt)
	return p, err
}
