package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/minimart/storefront-sync/internal/api/metrics"
	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
)

// PlacementGuard abstracts the idempotency store (Redis) used to reject a
// replayed order placement within a short window.
type PlacementGuard interface {
	IsDuplicate(ctx context.Context, userID int64, items []domain.CartItem) (bool, error)
	Mark(ctx context.Context, userID int64, items []domain.CartItem) error
}

// StoreService owns the canonical in-memory collections (catalog, cart, user,
// orders), applies optimistic mutations, and reconciles them against the
// authority.
//
// The mutex protects collection integrity against concurrent readers; it does
// not single-flight synchronized operations. Two overlapping PlaceOrder calls
// both reach the authority; callers are expected to serialize mutations.
// Snapshots returned by accessors are copies and must be treated as immutable.
type StoreService struct {
	gateway ports.AuthorityGateway
	guard   PlacementGuard // optional, nil disables placement dedup
	log     zerolog.Logger

	mu       sync.RWMutex
	user     *domain.User
	products []domain.Product
	cart     []domain.CartItem
	orders   []domain.Order
	ready    bool
}

func NewStoreService(gateway ports.AuthorityGateway, guard PlacementGuard, log zerolog.Logger) *StoreService {
	return &StoreService{gateway: gateway, guard: guard, log: log}
}

// ---------------------------------------------------------------------------
// Cart: local-only mutations. The cart has no authority-side representation
// until an order is placed.
// ---------------------------------------------------------------------------

// AddToCart increments the quantity of an existing entry or inserts a new
// quantity-1 entry. There is no failure mode.
func (s *StoreService) AddToCart(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product.ID == p.ID {
			s.cart[i].Quantity++
			return
		}
	}
	s.cart = append(s.cart, domain.CartItem{Product: p, Quantity: 1})
}

// RemoveFromCart deletes the entry for productID. No-op if absent.
func (s *StoreService) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product.ID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

// ClearCart empties the cart unconditionally.
func (s *StoreService) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// ---------------------------------------------------------------------------
// Catalog: local state mutates only after the authority
// confirms, because a phantom or missing product directly misleads purchasing.
// ---------------------------------------------------------------------------

// AddProduct creates the product at the authority and, only on success,
// prepends the created record (carrying the authority-assigned identity) to
// the local catalog. Gateway failures are propagated, never swallowed.
func (s *StoreService) AddProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	created, err := s.gateway.CreateProduct(ctx, in)
	if err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("failed to create product")
		return nil, fmt.Errorf("add product: %w", err)
	}

	s.mu.Lock()
	s.products = append([]domain.Product{*created}, s.products...)
	s.mu.Unlock()

	s.log.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product added")
	return created, nil
}

// RemoveProduct deletes the product at the authority first; the local entry is
// removed only after the delete is acknowledged. On failure the catalog is
// left unchanged and the error propagated.
func (s *StoreService) RemoveProduct(ctx context.Context, productID string) error {
	if err := s.gateway.DeleteProduct(ctx, productID); err != nil {
		s.log.Error().Err(err).Str("product_id", productID).Msg("failed to delete product")
		return fmt.Errorf("remove product: %w", err)
	}

	s.mu.Lock()
	s.removeProductsLocked([]string{productID})
	s.mu.Unlock()

	s.log.Info().Str("product_id", productID).Msg("product removed")
	return nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// PlaceOrder creates an order from the current cart.
//
// An empty cart or absent identity is a silent no-op: (nil, nil), not an
// error. On gateway failure the cart is left untouched and the error is
// propagated, so placement is retryable without re-adding items. On success
// the local order list gets a PENDING order built from the cart snapshot and
// the authority-assigned identity, the cart is cleared, and a full order
// refresh reconciles against authority truth.
func (s *StoreService) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	s.mu.RLock()
	user := s.user
	items := cloneItems(s.cart)
	s.mu.RUnlock()

	if user == nil || len(items) == 0 {
		s.log.Debug().Msg("place order skipped: empty cart or no identity")
		return nil, nil
	}
	total := orderTotal(items)

	if s.guard != nil {
		dup, err := s.guard.IsDuplicate(ctx, user.ID, items)
		if err != nil {
			s.log.Warn().Err(err).Msg("placement guard check failed, placing anyway")
		} else if dup {
			return nil, domain.ErrDuplicatePlacement
		}
	}

	created, err := s.gateway.CreateOrder(ctx, ports.OrderInput{
		UserID: user.ID,
		Items:  items,
		Total:  total,
	})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	if s.guard != nil {
		if err := s.guard.Mark(ctx, user.ID, items); err != nil {
			s.log.Warn().Err(err).Msg("failed to mark placement")
		}
	}

	order := domain.Order{
		ID:        created.ID,
		Username:  user.Username,
		Items:     items,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: created.CreatedAt,
	}

	s.mu.Lock()
	s.orders = append([]domain.Order{order}, s.orders...)
	s.cart = nil
	s.mu.Unlock()

	metrics.OrdersPlacedTotal.Inc()
	s.log.Info().Str("order_id", order.ID).Float64("total", total).Msg("order placed")

	// The authority may apply server-side adjustments; reconcile immediately.
	s.RefreshOrders(ctx)

	return &order, nil
}

// ProcessOrder persists the approve/reject decision for orderID and reconciles
// local state. The status change must succeed at the authority before any
// local mutation. Approval additionally removes every product referenced by
// the order's item snapshot from the live catalog (the inventory-depletion
// side effect), while cancellation leaves the catalog alone. Orders are
// refreshed afterwards either way; the catalog deliberately is not (the local
// removal is an optimistic shortcut verified by the next catalog load).
func (s *StoreService) ProcessOrder(ctx context.Context, orderID string, approved bool) error {
	s.mu.RLock()
	known := s.findOrderLocked(orderID) >= 0
	s.mu.RUnlock()
	if !known {
		return domain.ErrOrderNotFound
	}

	status := domain.StatusForDecision(approved)
	if err := s.gateway.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Str("status", string(status)).Msg("failed to update order status")
		return fmt.Errorf("process order: %w", err)
	}

	s.mu.Lock()
	if idx := s.findOrderLocked(orderID); idx >= 0 {
		if approved {
			s.removeProductsLocked(s.orders[idx].ProductIDs())
		}
		s.orders[idx].Status = status
	}
	s.mu.Unlock()

	if approved {
		metrics.OrdersProcessedTotal.WithLabelValues("confirmed").Inc()
	} else {
		metrics.OrdersProcessedTotal.WithLabelValues("canceled").Inc()
	}
	s.log.Info().Str("order_id", orderID).Str("status", string(status)).Msg("order processed")

	s.RefreshOrders(ctx)
	return nil
}

// RefreshOrders replaces the local order list wholesale with the authority's
// view, scoped to the live identity (all orders for admins). This is the sole
// mechanism by which local order state becomes eventually consistent. A failed
// refresh is logged and the stale local list kept; it must not take down the
// rendering of already-known data.
func (s *StoreService) RefreshOrders(ctx context.Context) {
	if err := s.refreshOrders(ctx); err != nil {
		metrics.OrderRefreshesTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("order refresh failed, keeping stale orders")
		return
	}
	metrics.OrderRefreshesTotal.WithLabelValues("ok").Inc()
}

func (s *StoreService) refreshOrders(ctx context.Context) error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return nil
	}

	var (
		fetched []domain.Order
		err     error
	)
	if user.IsAdmin {
		fetched, err = s.gateway.ListAllOrders(ctx)
	} else {
		fetched, err = s.gateway.ListUserOrders(ctx, user.ID)
	}
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	s.mu.Lock()
	s.orders = fetched
	s.mu.Unlock()
	return nil
}

// RefreshCatalog replaces the local catalog wholesale with the authority's
// view, keeping the authority's own ordering. Failures are logged and the
// stale catalog kept.
func (s *StoreService) RefreshCatalog(ctx context.Context) {
	if err := s.refreshCatalog(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog refresh failed, keeping stale catalog")
	}
}

func (s *StoreService) refreshCatalog(ctx context.Context) error {
	fetched, err := s.gateway.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	s.mu.Lock()
	s.products = fetched
	s.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Products returns a copy of the catalog in display order (newest first for
// locally added products).
func (s *StoreService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product returns the catalog entry for id, if present.
func (s *StoreService) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Cart returns a copy of the current cart entries.
func (s *StoreService) Cart() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.cart)
}

// CartTotal is the sum of price times quantity over current cart entries.
func (s *StoreService) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return orderTotal(s.cart)
}

// Orders returns a copy of the local order list, newest first.
func (s *StoreService) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// User returns a copy of the live identity, or nil before bootstrap.
func (s *StoreService) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser installs the live identity. Called once by the bootstrap sequence.
func (s *StoreService) SetUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Ready reports whether the bootstrap sequence has completed (on any path).
func (s *StoreService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *StoreService) markReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *StoreService) findOrderLocked(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *StoreService) removeProductsLocked(ids []string) {
	for _, id := range ids {
		for i := range s.products {
			if s.products[i].ID == id {
				s.products = append(s.products[:i], s.products[i+1:]...)
				break
			}
		}
	}
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func orderTotal(items []domain.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
