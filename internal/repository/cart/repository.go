package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// GetByOwner returns the owner's cart, or domain.ErrNotFound if the
	// owner has never added anything.
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)

	// AddItem upserts a line into the owner's cart, creating the cart on
	// first use. An existing line for the same product has its quantity
	// incremented atomically; the stored price snapshot is kept.
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) error

	// SetItemQuantity replaces a line's quantity; a quantity <= 0 removes
	// the line. Returns domain.ErrNotFound if the cart or line is missing.
	SetItemQuantity(ctx context.Context, ownerID, productID string, quantity int) error

	// RemoveItem drops one line from the owner's cart.
	RemoveItem(ctx context.Context, ownerID, productID string) error

	// DeleteByOwner removes the cart and all of its lines.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
