package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status value.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipping,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// statusTransitions maps each state to the set of states it may move to.
// completed and cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:  {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// Valid reports whether s is one of the known status values.
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status machine permits s -> next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodBanking PaymentMethod = "banking"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodBanking
}

type Recipient struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price is copied verbatim from the cart line (or the explicit input)
	// at creation time and is immutable afterward.
	Price int64 `json:"price"`
}

type Order struct {
	ID              string        `json:"id"`
	OwnerID         string        `json:"ownerId"`
	Items           []OrderItem   `json:"items"`
	Subtotal        int64         `json:"subtotal"`
	ShippingFee     int64         `json:"shippingFee"`
	Total           int64         `json:"total"`
	Status          OrderStatus   `json:"status"`
	ShippingAddress string        `json:"shippingAddress"`
	Recipient       Recipient     `json:"recipientInfo"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	IdempotencyKey  string        `json:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
}
