package domain

import "time"

type Cart struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price is the per-unit catalog price snapshotted when the item was
	// first added. It does not follow later catalog changes.
	Price int64 `json:"price"`
}

// Subtotal sums price*quantity over every line.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
