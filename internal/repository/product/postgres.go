package product

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, slug, description, category, price, unit, stock, sold, images, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.Unit,
		&p.Stock,
		&p.Sold,
		&p.Images,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Reserve relies on a single conditional UPDATE so that two callers racing
// for the last unit cannot both pass the stock check.
func (r *postgresRepo) Reserve(ctx context.Context, id string, qty int) error {
	const q = `
UPDATE products
SET stock = stock - $2,
    sold  = sold + $2
WHERE id = $1 AND stock >= $2
`
	cmd, err := r.pool.Exec(ctx, q, id, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Guard failed: either not enough stock or no such product.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, id)
	}
	return nil
}

func (r *postgresRepo) Release(ctx context.Context, id string, qty int) error {
	const q = `
UPDATE products
SET stock = stock + $2,
    sold  = GREATEST(sold - $2, 0)
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, id, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return nil
}
