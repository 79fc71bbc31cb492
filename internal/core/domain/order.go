package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCanceled  OrderStatus = "CANCELED"
)

var ErrOrderNotFound = errors.New("order not found")
var ErrProductNotFound = errors.New("product not found")
var ErrForbidden = errors.New("access forbidden")
var ErrDuplicatePlacement = errors.New("duplicate order placement")
var ErrAuthorityUnavailable = errors.New("authority unavailable")

// Terminal reports whether no further transition is allowed from s.
// The authority owns enforcement of the state machine; this is only used to
// short-circuit requests that would be no-ops at the authority boundary.
func (s OrderStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCanceled
}

// StatusForDecision maps an approval decision onto the target terminal status.
func StatusForDecision(approved bool) OrderStatus {
	if approved {
		return StatusConfirmed
	}
	return StatusCanceled
}

// Order is a record of a placed order. Items are snapshots taken at placement
// time, not references into the live catalog. Total is fixed at creation and
// never recomputed from live product prices.
type Order struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ProductIDs returns the product identities referenced by the order snapshot.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.Product.ID)
	}
	return ids
}
