package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type orderRepo interface {
	Create(ctx context.Context, o *domain.Order, clearCartOwnerID string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	List(ctx context.Context, f orderrepo.Filter, p orderrepo.Page) ([]domain.Order, error)
	Count(ctx context.Context, f orderrepo.Filter) (int64, error)
	Aggregate(ctx context.Context, f orderrepo.Filter) (*orderrepo.Stats, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
}

type cartRepo interface {
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
}

// inventory is the stock ledger: both operations are atomic per product.
type inventory interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

type userDirectory interface {
	SearchIDs(ctx context.Context, query string) ([]string, error)
}

// Config carries the pricing and cancellation policy knobs.
type Config struct {
	ShippingFee       int64
	FreeShipThreshold int64

	// ReleaseStockOnCancel restores each line's reservation when a
	// pending order is cancelled.
	ReleaseStockOnCancel bool
}

type Service struct {
	orders    orderRepo
	carts     cartRepo
	inventory inventory
	users     userDirectory
	cfg       Config
	logger    *log.Logger
}

func New(orders orderRepo, carts cartRepo, inv inventory, users userDirectory, cfg Config, logger *log.Logger) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		inventory: inv,
		users:     users,
		cfg:       cfg,
		logger:    logger,
	}
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type CreateInput struct {
	ShippingAddress string           `json:"shipping_address"`
	Recipient       domain.Recipient `json:"recipientInfo"`
	PaymentMethod   string           `json:"payment_method"`
	// Items, when present, bypasses the cart for direct ordering.
	Items []ItemInput `json:"items"`
	// IdempotencyKey deduplicates client retries of the same create call.
	IdempotencyKey string `json:"-"`
}

// Receipt is the created order with its price breakdown.
type Receipt struct {
	Order       *domain.Order `json:"order"`
	Subtotal    int64         `json:"subtotal"`
	ShippingFee int64         `json:"shipping_fee"`
	Total       int64         `json:"final_total"`
	// Duplicate marks a replay of an earlier create with the same
	// idempotency key; no new order was written.
	Duplicate bool `json:"-"`
}

// Create runs the order pipeline: validate, resolve items, price, reserve
// stock all-or-nothing, persist, and clear the source cart. A failed
// reservation rolls back every reservation already made, so no partial
// stock depletion is ever observable.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Receipt, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" ||
		strings.TrimSpace(in.Recipient.Name) == "" ||
		strings.TrimSpace(in.Recipient.Mobile) == "" {
		return nil, fmt.Errorf("%w: missing shipping information", domain.ErrValidation)
	}

	payment := domain.PaymentMethod(in.PaymentMethod)
	if payment == "" {
		payment = domain.PaymentMethodCOD
	}
	if !payment.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.PaymentMethod)
	}

	if in.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			return s.receiptFor(existing, true), nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	items, fromCart, err := s.resolveItems(ctx, ownerID, in.Items)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}
	var shippingFee int64
	if subtotal < s.cfg.FreeShipThreshold {
		shippingFee = s.cfg.ShippingFee
	}

	// Reserve stock item by item; the first failure releases everything
	// reserved so far and aborts with no net stock change.
	reserved := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if err := s.inventory.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, it)
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		Total:           subtotal + shippingFee,
		Status:          domain.OrderStatusPending,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Recipient: domain.Recipient{
			Name:   strings.TrimSpace(in.Recipient.Name),
			Mobile: strings.TrimSpace(in.Recipient.Mobile),
		},
		PaymentMethod:  payment,
		IdempotencyKey: in.IdempotencyKey,
	}

	clearCartOwner := ""
	if fromCart {
		clearCartOwner = ownerID
	}
	if err := s.orders.Create(ctx, order, clearCartOwner); err != nil {
		s.releaseAll(ctx, reserved)
		if errors.Is(err, orderrepo.ErrDuplicateIdempotencyKey) {
			// Lost a race against a retry of the same request; hand back
			// the order that won.
			existing, lookupErr := s.orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return s.receiptFor(existing, true), nil
		}
		return nil, err
	}

	return s.receiptFor(order, false), nil
}

func (s *Service) resolveItems(ctx context.Context, ownerID string, explicit []ItemInput) ([]domain.OrderItem, bool, error) {
	if len(explicit) > 0 {
		items := make([]domain.OrderItem, 0, len(explicit))
		for _, it := range explicit {
			if it.ProductID == "" || it.Quantity < 1 {
				return nil, false, fmt.Errorf("%w: each item needs a product_id and a positive quantity", domain.ErrValidation)
			}
			if it.Price < 0 {
				return nil, false, fmt.Errorf("%w: negative price", domain.ErrValidation)
			}
			items = append(items, domain.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}
		return items, false, nil
	}

	cart, err := s.carts.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrEmptyOrder
		}
		return nil, false, err
	}
	if len(cart.Items) == 0 {
		return nil, false, domain.ErrEmptyOrder
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return items, true, nil
}

// releaseAll compensates completed reservations. It runs detached from the
// request's cancellation so an aborted request cannot strand stock.
func (s *Service) releaseAll(ctx context.Context, reserved []domain.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range reserved {
		if err := s.inventory.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Printf("release %d x product %s failed: %v", it.Quantity, it.ProductID, err)
		}
	}
}

func (s *Service) receiptFor(o *domain.Order, duplicate bool) *Receipt {
	return &Receipt{
		Order:       o,
		Subtotal:    o.Subtotal,
		ShippingFee: o.ShippingFee,
		Total:       o.Total,
		Duplicate:   duplicate,
	}
}

// ListMine returns the caller's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// Get returns one order, restricted to its owner unless the caller is staff.
func (s *Service) Get(ctx context.Context, ident domain.Identity, orderID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ident.IsStaff() && o.OwnerID != ident.OwnerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Cancel moves a pending order to cancelled. Owners may cancel their own
// orders; staff may cancel anyone's.
func (s *Service) Cancel(ctx context.Context, ident domain.Identity, orderID string) (*domain.Order, error) {
	o, err := s.Get(ctx, ident, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidStatusTransition)
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, domain.OrderStatusPending, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatusCancelled

	if s.cfg.ReleaseStockOnCancel {
		s.releaseAll(ctx, o.Items)
	}
	return o, nil
}

// UpdateStatus applies a staff transition through the status machine.
func (s *Service) UpdateStatus(ctx context.Context, ident domain.Identity, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	if !ident.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, string(next))
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, o.Status, next)
	}
	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status, next); err != nil {
		return nil, err
	}

	if next == domain.OrderStatusCancelled && s.cfg.ReleaseStockOnCancel {
		s.releaseAll(ctx, o.Items)
	}
	o.Status = next
	return o, nil
}

type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Status string
	Search string
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ListResult struct {
	Orders     []domain.Order
	Pagination Pagination
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"total":      "total",
	"status":     "status",
}

// List answers the staff listing: filtered, sorted, and paginated.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	filter, err := s.buildFilter(ctx, q.Status, q.Search)
	if err != nil {
		return nil, err
	}

	page := orderrepo.Page{Number: q.Page, Limit: q.Limit, SortCol: "created_at", SortDesc: true}
	if page.Number <= 0 {
		page.Number = 1
	}
	if page.Limit <= 0 {
		page.Limit = 10
	}
	if sort := strings.TrimSpace(q.Sort); sort != "" {
		desc := strings.HasPrefix(sort, "-")
		col, ok := sortColumns[strings.TrimPrefix(sort, "-")]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported sort field %q", domain.ErrValidation, q.Sort)
		}
		page.SortCol = col
		page.SortDesc = desc
	}

	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	return &ListResult{
		Orders: orders,
		Pagination: Pagination{
			Total:      total,
			Page:       page.Number,
			Limit:      page.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(page.Limit))),
		},
	}, nil
}

// Stats aggregates over the same predicate as List, ignoring pagination.
func (s *Service) Stats(ctx context.Context, status, search string) (*orderrepo.Stats, error) {
	filter, err := s.buildFilter(ctx, status, search)
	if err != nil {
		return nil, err
	}
	return s.orders.Aggregate(ctx, filter)
}

func (s *Service) buildFilter(ctx context.Context, status, search string) (orderrepo.Filter, error) {
	var f orderrepo.Filter
	if status != "" {
		st := domain.OrderStatus(status)
		if !st.Valid() {
			return f, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, status)
		}
		f.Status = st
	}
	if search = strings.TrimSpace(search); search != "" {
		ids, err := s.users.SearchIDs(ctx, search)
		if err != nil {
			return f, err
		}
		if ids == nil {
			ids = []string{}
		}
		f.OwnerIDs = ids
	}
	return f, nil
}
