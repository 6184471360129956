package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Price       int64
	Unit        string
	Stock       int
}

type userSeed struct {
	Name  string
	Email string
	Role  string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	users := []userSeed{
		{Name: "Store Admin", Email: "admin@example.com", Role: "admin"},
		{Name: "Linh Nguyen", Email: "linh@example.com", Role: "customer"},
		{Name: "Minh Tran", Email: "minh@example.com", Role: "customer"},
	}
	for _, u := range users {
		if err := upsertUser(ctx, pool, u); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
	}

	products := []productSeed{
		{
			Name:        "Dalat Carrots",
			Slug:        "dalat-carrots",
			Description: "Fresh carrots from Dalat highland farms",
			Category:    "vegetables",
			Price:       25000,
			Unit:        "kg",
			Stock:       120,
		},
		{
			Name:        "Cat Chu Mangoes",
			Slug:        "cat-chu-mangoes",
			Description: "Sweet ripe mangoes, hand picked",
			Category:    "fruits",
			Price:       65000,
			Unit:        "kg",
			Stock:       80,
		},
		{
			Name:        "Jasmine Rice 5kg",
			Slug:        "jasmine-rice-5kg",
			Description: "Fragrant long-grain jasmine rice",
			Category:    "grains",
			Price:       145000,
			Unit:        "bag",
			Stock:       50,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	return nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u userSeed) error {
	const q = `
INSERT INTO users (name, email, role)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    role = EXCLUDED.role
`
	_, err := pool.Exec(ctx, q, u.Name, u.Email, u.Role)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, slug, description, category, price, unit, stock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    unit = EXCLUDED.unit
`
	_, err := pool.Exec(ctx, q, p.Name, p.Slug, p.Description, p.Category, p.Price, p.Unit, p.Stock)
	return err
}
