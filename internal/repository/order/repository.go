package order

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrDuplicateIdempotencyKey is returned by Create when another order
// already holds the same idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

// Filter is the shared predicate behind both the list view and the
// statistics view.
type Filter struct {
	// Status narrows to one status; empty matches all.
	Status domain.OrderStatus
	// OwnerIDs, when non-nil, restricts to orders owned by any of the
	// given users. A non-nil empty slice matches nothing (a search that
	// resolved no users).
	OwnerIDs []string
}

// Page describes pagination and ordering for List.
type Page struct {
	Number   int
	Limit    int
	SortCol  string // whitelisted column name, e.g. "created_at"
	SortDesc bool
}

// Stats is the single-pass aggregate over a Filter.
type Stats struct {
	TotalOrders  int64 `json:"totalOrders"`
	TotalRevenue int64 `json:"totalRevenue"`
	Pending      int64 `json:"pending"`
	Shipping     int64 `json:"shipping"`
	Completed    int64 `json:"completed"`
	Cancelled    int64 `json:"cancelled"`
}

type Repository interface {
	// Create persists the order and its items in one transaction. When
	// clearCartOwnerID is non-empty the owner's cart is deleted in the
	// same transaction, so a committed order can never leave its source
	// cart populated.
	Create(ctx context.Context, o *domain.Order, clearCartOwnerID string) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)

	List(ctx context.Context, f Filter, p Page) ([]domain.Order, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Aggregate(ctx context.Context, f Filter) (*Stats, error)

	// UpdateStatus moves the order from exactly `from` to `to` in one
	// conditional write; a concurrent transition in between makes it
	// report domain.ErrInvalidStatusTransition.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
}
