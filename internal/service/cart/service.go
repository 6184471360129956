package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

type cartRepo interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, ownerID, productID string, quantity int) error
	RemoveItem(ctx context.Context, ownerID, productID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// View is a cart plus its derived subtotal, the shape GET /cart returns.
type View struct {
	Cart     *domain.Cart `json:"cart"`
	Subtotal int64        `json:"subtotal"`
}

// Get returns the owner's cart. An owner who never added anything gets an
// empty cart rather than an error.
func (s *Service) Get(ctx context.Context, ownerID string) (*View, error) {
	cart, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &View{Cart: &domain.Cart{OwnerID: ownerID, Items: []domain.CartItem{}}}, nil
		}
		return nil, err
	}
	return &View{Cart: cart, Subtotal: cart.Subtotal()}, nil
}

// Add appends a product to the owner's cart, snapshotting the current
// catalog price. Adding a product already in the cart increments its
// quantity; the original snapshot price is kept.
func (s *Service) Add(ctx context.Context, ownerID, productID string, quantity int) (*View, error) {
	if productID == "" || quantity < 1 {
		return nil, fmt.Errorf("%w: product_id and a positive quantity are required", domain.ErrValidation)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return nil, err
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	if err := s.repo.AddItem(ctx, ownerID, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID)
}

// SetQuantity replaces one line's quantity; a quantity <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*View, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", domain.ErrValidation)
	}
	if err := s.repo.SetItemQuantity(ctx, ownerID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID)
}

// Remove drops one line from the owner's cart.
func (s *Service) Remove(ctx context.Context, ownerID, productID string) (*View, error) {
	if err := s.repo.RemoveItem(ctx, ownerID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID)
}

// Clear deletes the owner's cart entirely.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	return s.repo.DeleteByOwner(ctx, ownerID)
}
