package ports

import (
	"context"

	"github.com/minimart/storefront-sync/internal/core/domain"
)

// HostIdentity is the numeric id and optional display name supplied by the
// host environment at startup.
type HostIdentity struct {
	ID       int64
	Username string
}

// UserUpsertInput carries the identity fields for get-or-create-user.
type UserUpsertInput struct {
	ID       int64
	Username string
	IsAdmin  bool
}

// ProductInput carries the fields for create-product. The authority assigns
// the identity.
type ProductInput struct {
	Name        string
	Price       float64
	Image       string
	Description string
	Category    string
	InStock     bool
}

// OrderInput carries the fields for create-order. Items is a snapshot of the
// cart at placement time and Total the precomputed sum of price times quantity.
type OrderInput struct {
	UserID int64
	Items  []domain.CartItem
	Total  float64
}

// AuthorityGateway is the request/response surface of the remote store that
// holds the canonical product, order, and user records. Implementations only
// construct requests and decode responses; reconciliation policy lives in the
// store service. Any transport or decode failure surfaces as an error.
type AuthorityGateway interface {
	GetOrCreateUser(ctx context.Context, in UserUpsertInput) (*domain.User, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	// ListAllOrders returns every order in the system (admin scope).
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	// ListUserOrders returns only the given user's orders.
	ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}
