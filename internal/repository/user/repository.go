package user

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the narrow user-directory lookup consumed by the staff
// order search; identity management itself lives elsewhere.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// SearchIDs returns the IDs of users whose name or email matches the
	// query, case-insensitively.
	SearchIDs(ctx context.Context, query string) ([]string, error)
}
