package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Reserve conditionally decrements stock and increments sold by qty in
	// one atomic step guarded by stock >= qty. It returns
	// domain.ErrInsufficientStock (no mutation) when the guard fails and
	// domain.ErrNotFound when the product does not exist.
	Reserve(ctx context.Context, id string, qty int) error

	// Release is the compensating increment of stock and decrement of sold,
	// undoing a reservation on pipeline abort or order cancellation.
	Release(ctx context.Context, id string, qty int) error
}
