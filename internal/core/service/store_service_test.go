package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub gateway
// ---------------------------------------------------------------------------

type stubGateway struct {
	getOrCreateUserFn func(in ports.UserUpsertInput) (*domain.User, error)
	listProductsFn    func() ([]domain.Product, error)
	createProductFn   func(in ports.ProductInput) (*domain.Product, error)
	deleteProductErr  error
	listAllOrdersFn   func() ([]domain.Order, error)
	listUserOrdersFn  func(userID int64) ([]domain.Order, error)
	createOrderFn     func(in ports.OrderInput) (*domain.Order, error)
	updateStatusErr   error

	createOrderCalls  int
	updateStatusCalls int
	listAllCalls      int
	listUserCalls     int
	lastOrderInput    ports.OrderInput
	lastStatusOrderID string
	lastStatus        domain.OrderStatus
}

func (g *stubGateway) GetOrCreateUser(_ context.Context, in ports.UserUpsertInput) (*domain.User, error) {
	if g.getOrCreateUserFn != nil {
		return g.getOrCreateUserFn(in)
	}
	return &domain.User{ID: in.ID, Username: in.Username, IsAdmin: in.IsAdmin}, nil
}

func (g *stubGateway) ListProducts(_ context.Context) ([]domain.Product, error) {
	if g.listProductsFn != nil {
		return g.listProductsFn()
	}
	return nil, nil
}

func (g *stubGateway) CreateProduct(_ context.Context, in ports.ProductInput) (*domain.Product, error) {
	if g.createProductFn != nil {
		return g.createProductFn(in)
	}
	return &domain.Product{ID: "1", Name: in.Name, Price: in.Price}, nil
}

func (g *stubGateway) DeleteProduct(_ context.Context, _ string) error {
	return g.deleteProductErr
}

func (g *stubGateway) ListAllOrders(_ context.Context) ([]domain.Order, error) {
	g.listAllCalls++
	if g.listAllOrdersFn != nil {
		return g.listAllOrdersFn()
	}
	return nil, nil
}

func (g *stubGateway) ListUserOrders(_ context.Context, userID int64) ([]domain.Order, error) {
	g.listUserCalls++
	if g.listUserOrdersFn != nil {
		return g.listUserOrdersFn(userID)
	}
	return nil, nil
}

func (g *stubGateway) CreateOrder(_ context.Context, in ports.OrderInput) (*domain.Order, error) {
	g.createOrderCalls++
	g.lastOrderInput = in
	if g.createOrderFn != nil {
		return g.createOrderFn(in)
	}
	return &domain.Order{ID: "order_1", Status: domain.StatusPending, CreatedAt: time.Now().UTC()}, nil
}

func (g *stubGateway) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	g.updateStatusCalls++
	g.lastStatusOrderID = orderID
	g.lastStatus = status
	return g.updateStatusErr
}

type stubGuard struct {
	dup      bool
	checkErr error
	marks    int
}

func (s *stubGuard) IsDuplicate(_ context.Context, _ int64, _ []domain.CartItem) (bool, error) {
	return s.dup, s.checkErr
}

func (s *stubGuard) Mark(_ context.Context, _ int64, _ []domain.CartItem) error {
	s.marks++
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errGatewayDown = errors.New("gateway down")

func prod(id, name string, price float64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: price, InStock: true}
}

func newStore(gw *stubGateway) *StoreService {
	s := NewStoreService(gw, nil, discardLogger)
	s.SetUser(domain.User{ID: 42, Username: "alice"})
	return s
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

func TestAddToCart_IncrementsExistingEntry(t *testing.T) {
	s := newStore(&stubGateway{})
	p := prod("1", "apple", 2)

	s.AddToCart(p)
	s.AddToCart(p)
	s.AddToCart(prod("2", "pear", 3))

	cart := s.Cart()
	if len(cart) != 2 {
		t.Fatalf("expected 2 cart entries, got %d", len(cart))
	}
	if cart[0].Product.ID != "1" || cart[0].Quantity != 2 {
		t.Errorf("entry 0 = %+v, want product 1 qty 2", cart[0])
	}
	if cart[1].Product.ID != "2" || cart[1].Quantity != 1 {
		t.Errorf("entry 1 = %+v, want product 2 qty 1", cart[1])
	}
}

func TestCart_QuantityInvariant(t *testing.T) {
	s := newStore(&stubGateway{})
	p1 := prod("1", "apple", 2)
	p2 := prod("2", "pear", 3)

	// Arbitrary sequence of adds and removes.
	s.AddToCart(p1)
	s.AddToCart(p2)
	s.AddToCart(p1)
	s.RemoveFromCart("2")
	s.RemoveFromCart("2") // absent: no-op
	s.AddToCart(p2)
	s.RemoveFromCart("1")

	seen := make(map[string]bool)
	for _, it := range s.Cart() {
		if it.Quantity < 1 {
			t.Errorf("cart entry %s has quantity %d", it.Product.ID, it.Quantity)
		}
		if seen[it.Product.ID] {
			t.Errorf("duplicate cart entry for product %s", it.Product.ID)
		}
		seen[it.Product.ID] = true
	}
}

func TestRemoveFromCart_Absent_NoOp(t *testing.T) {
	s := newStore(&stubGateway{})
	s.AddToCart(prod("1", "apple", 2))

	s.RemoveFromCart("missing")

	if len(s.Cart()) != 1 {
		t.Fatalf("cart changed by removing an absent product")
	}
}

func TestClearCart(t *testing.T) {
	s := newStore(&stubGateway{})
	s.AddToCart(prod("1", "apple", 2))
	s.AddToCart(prod("2", "pear", 3))

	s.ClearCart()

	if len(s.Cart()) != 0 {
		t.Fatalf("cart not empty after clear")
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func TestAddProduct_InsertsOnlyAfterConfirmation(t *testing.T) {
	gw := &stubGateway{
		createProductFn: func(in ports.ProductInput) (*domain.Product, error) {
			return &domain.Product{ID: "77", Name: in.Name, Price: in.Price}, nil
		},
	}
	s := newStore(gw)
	s.AddToCart(prod("1", "seed", 1)) // unrelated state must survive

	created, err := s.AddProduct(context.Background(), ports.ProductInput{Name: "X", Price: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "77" {
		t.Errorf("created id = %s, want authority-assigned 77", created.ID)
	}

	products := s.Products()
	if len(products) != 1 || products[0].ID != "77" {
		t.Fatalf("catalog = %+v, want the confirmed product", products)
	}
}

func TestAddProduct_PrependsNewest(t *testing.T) {
	n := 0
	gw := &stubGateway{
		createProductFn: func(in ports.ProductInput) (*domain.Product, error) {
			n++
			return &domain.Product{ID: map[int]string{1: "10", 2: "11"}[n], Name: in.Name}, nil
		},
	}
	s := newStore(gw)

	if _, err := s.AddProduct(context.Background(), ports.ProductInput{Name: "first"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AddProduct(context.Background(), ports.ProductInput{Name: "second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	products := s.Products()
	if products[0].Name != "second" || products[1].Name != "first" {
		t.Errorf("catalog order %v, want newest first", []string{products[0].Name, products[1].Name})
	}
}

func TestAddProduct_GatewayFailure_CatalogUnchanged(t *testing.T) {
	gw := &stubGateway{
		createProductFn: func(ports.ProductInput) (*domain.Product, error) {
			return nil, errGatewayDown
		},
	}
	s := newStore(gw)

	_, err := s.AddProduct(context.Background(), ports.ProductInput{Name: "X", Price: 5})
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected propagated gateway error, got %v", err)
	}
	if len(s.Products()) != 0 {
		t.Fatalf("catalog mutated despite gateway failure")
	}
}

func TestRemoveProduct_GatewayFailure_CatalogUnchanged(t *testing.T) {
	gw := &stubGateway{
		listProductsFn: func() ([]domain.Product, error) {
			return []domain.Product{prod("5", "apple", 2)}, nil
		},
		deleteProductErr: errGatewayDown,
	}
	s := newStore(gw)
	s.RefreshCatalog(context.Background())

	err := s.RemoveProduct(context.Background(), "5")
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected propagated gateway error, got %v", err)
	}
	if len(s.Products()) != 1 {
		t.Fatalf("catalog mutated despite gateway failure")
	}
}

func TestRemoveProduct_Success(t *testing.T) {
	gw := &stubGateway{
		listProductsFn: func() ([]domain.Product, error) {
			return []domain.Product{prod("5", "apple", 2), prod("6", "pear", 3)}, nil
		},
	}
	s := newStore(gw)
	s.RefreshCatalog(context.Background())

	if err := s.RemoveProduct(context.Background(), "5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	products := s.Products()
	if len(products) != 1 || products[0].ID != "6" {
		t.Fatalf("catalog = %+v, want only product 6", products)
	}
}

// ---------------------------------------------------------------------------
// PlaceOrder
// ---------------------------------------------------------------------------

func TestPlaceOrder_EmptyCart_SilentNoOp(t *testing.T) {
	gw := &stubGateway{}
	s := newStore(gw)

	order, err := s.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Fatalf("expected nil order for empty cart, got %+v", order)
	}
	if gw.createOrderCalls != 0 {
		t.Fatalf("gateway called for an empty cart")
	}
}

func TestPlaceOrder_NoIdentity_SilentNoOp(t *testing.T) {
	gw := &stubGateway{}
	s := NewStoreService(gw, nil, discardLogger) // no user set
	s.AddToCart(prod("1", "apple", 2))

	order, err := s.PlaceOrder(context.Background())
	if err != nil || order != nil {
		t.Fatalf("expected silent no-op, got order=%v err=%v", order, err)
	}
	if gw.createOrderCalls != 0 {
		t.Fatalf("gateway called without an identity")
	}
	if len(s.Cart()) != 1 {
		t.Fatalf("cart changed by a no-op placement")
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gw := &stubGateway{
		createOrderFn: func(in ports.OrderInput) (*domain.Order, error) {
			return &domain.Order{ID: "A1", Status: domain.StatusPending, CreatedAt: createdAt}, nil
		},
		// Refresh failure keeps the optimistic local order visible for
		// assertions; the failed refresh itself must not propagate.
		listUserOrdersFn: func(int64) ([]domain.Order, error) {
			return nil, errGatewayDown
		},
	}
	s := newStore(gw)
	p1 := prod("P1", "widget", 10)
	s.AddToCart(p1)
	s.AddToCart(p1) // qty 2

	order, err := s.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ID != "A1" || order.Status != domain.StatusPending {
		t.Errorf("order = {id:%s status:%s}, want {A1 PENDING}", order.ID, order.Status)
	}
	if order.Total != 20 {
		t.Errorf("total = %v, want 20", order.Total)
	}
	if !order.CreatedAt.Equal(createdAt) {
		t.Errorf("created_at = %v, want authority time %v", order.CreatedAt, createdAt)
	}
	if len(order.Items) != 1 || order.Items[0].Product.ID != "P1" || order.Items[0].Quantity != 2 {
		t.Errorf("items = %+v, want [{P1 qty 2}]", order.Items)
	}

	if gw.lastOrderInput.UserID != 42 || gw.lastOrderInput.Total != 20 {
		t.Errorf("gateway input = %+v, want user 42 total 20", gw.lastOrderInput)
	}

	if len(s.Cart()) != 0 {
		t.Fatalf("cart not cleared after successful placement")
	}
	orders := s.Orders()
	if len(orders) != 1 || orders[0].ID != "A1" {
		t.Fatalf("order not at head of local list: %+v", orders)
	}
	if gw.listUserCalls != 1 {
		t.Fatalf("expected one reconciling refresh, got %d", gw.listUserCalls)
	}
}

func TestPlaceOrder_SnapshotIndependentOfCatalog(t *testing.T) {
	gw := &stubGateway{
		listUserOrdersFn: func(int64) ([]domain.Order, error) { return nil, errGatewayDown },
	}
	s := newStore(gw)
	s.AddToCart(prod("P1", "widget", 10))

	order, err := s.PlaceOrder(context.Background())
	if err != nil || order == nil {
		t.Fatalf("placement failed: order=%v err=%v", order, err)
	}

	// A later catalog removal must not corrupt the historical order.
	s.mu.Lock()
	s.products = nil
	s.mu.Unlock()

	if got := s.Orders()[0]; len(got.Items) != 1 || got.Items[0].Product.Name != "widget" {
		t.Errorf("order snapshot lost after catalog change: %+v", got.Items)
	}
}

func TestPlaceOrder_GatewayFailure_CartUntouched(t *testing.T) {
	gw := &stubGateway{
		createOrderFn: func(ports.OrderInput) (*domain.Order, error) {
			return nil, errGatewayDown
		},
	}
	s := newStore(gw)
	s.AddToCart(prod("1", "apple", 2))

	_, err := s.PlaceOrder(context.Background())
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected propagated gateway error, got %v", err)
	}
	// Placement must be retryable without re-adding items.
	if len(s.Cart()) != 1 {
		t.Fatalf("cart mutated despite gateway failure")
	}
	if len(s.Orders()) != 0 {
		t.Fatalf("order list mutated despite gateway failure")
	}
}

func TestPlaceOrder_DuplicateGuard(t *testing.T) {
	gw := &stubGateway{}
	guard := &stubGuard{dup: true}
	s := NewStoreService(gw, guard, discardLogger)
	s.SetUser(domain.User{ID: 42, Username: "alice"})
	s.AddToCart(prod("1", "apple", 2))

	_, err := s.PlaceOrder(context.Background())
	if !errors.Is(err, domain.ErrDuplicatePlacement) {
		t.Fatalf("expected ErrDuplicatePlacement, got %v", err)
	}
	if gw.createOrderCalls != 0 {
		t.Fatalf("gateway called for a duplicate placement")
	}
	if len(s.Cart()) != 1 {
		t.Fatalf("cart mutated by a rejected placement")
	}
}

func TestPlaceOrder_GuardErrorSoftFails(t *testing.T) {
	gw := &stubGateway{}
	guard := &stubGuard{checkErr: errors.New("redis down")}
	s := NewStoreService(gw, guard, discardLogger)
	s.SetUser(domain.User{ID: 42, Username: "alice"})
	s.AddToCart(prod("1", "apple", 2))

	order, err := s.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("guard failure must not block placement: %v", err)
	}
	if order == nil || gw.createOrderCalls != 1 {
		t.Fatalf("placement did not proceed past a failing guard")
	}
	if guard.marks != 1 {
		t.Errorf("expected the placement to be marked, got %d marks", guard.marks)
	}
}

// ---------------------------------------------------------------------------
// ProcessOrder
// ---------------------------------------------------------------------------

// seedOrder installs an order and the products it references.
func seedOrder(s *StoreService, id string) {
	s.mu.Lock()
	s.products = []domain.Product{prod("P1", "widget", 10), prod("P2", "gadget", 5)}
	s.orders = []domain.Order{{
		ID:     id,
		Items:  []domain.CartItem{{Product: prod("P1", "widget", 10), Quantity: 2}},
		Total:  20,
		Status: domain.StatusPending,
	}}
	s.mu.Unlock()
}

func TestProcessOrder_Approve_DepletesSnapshotProducts(t *testing.T) {
	gw := &stubGateway{
		listUserOrdersFn: func(int64) ([]domain.Order, error) { return nil, errGatewayDown },
	}
	s := newStore(gw)
	seedOrder(s, "A1")

	if err := s.ProcessOrder(context.Background(), "A1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gw.lastStatusOrderID != "A1" || gw.lastStatus != domain.StatusConfirmed {
		t.Errorf("gateway update = (%s, %s), want (A1, CONFIRMED)", gw.lastStatusOrderID, gw.lastStatus)
	}

	// Exactly the snapshot's products are removed, nothing else.
	products := s.Products()
	if len(products) != 1 || products[0].ID != "P2" {
		t.Fatalf("catalog = %+v, want only P2 remaining", products)
	}
	if got := s.Orders()[0].Status; got != domain.StatusConfirmed {
		t.Errorf("local status = %s, want CONFIRMED", got)
	}
	if gw.listUserCalls != 1 {
		t.Errorf("expected a reconciling order refresh")
	}
}

func TestProcessOrder_Reject_CatalogUnchanged(t *testing.T) {
	gw := &stubGateway{
		listUserOrdersFn: func(int64) ([]domain.Order, error) { return nil, errGatewayDown },
	}
	s := newStore(gw)
	seedOrder(s, "A1")

	if err := s.ProcessOrder(context.Background(), "A1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Products()) != 2 {
		t.Fatalf("cancellation must not deplete the catalog")
	}
	if got := s.Orders()[0].Status; got != domain.StatusCanceled {
		t.Errorf("local status = %s, want CANCELED", got)
	}
}

func TestProcessOrder_GatewayFailure_NoLocalMutation(t *testing.T) {
	gw := &stubGateway{updateStatusErr: errGatewayDown}
	s := newStore(gw)
	seedOrder(s, "A1")

	err := s.ProcessOrder(context.Background(), "A1", true)
	if !errors.Is(err, errGatewayDown) {
		t.Fatalf("expected propagated gateway error, got %v", err)
	}
	if len(s.Products()) != 2 {
		t.Fatalf("catalog mutated despite gateway failure")
	}
	if got := s.Orders()[0].Status; got != domain.StatusPending {
		t.Errorf("local status changed despite gateway failure: %s", got)
	}
}

func TestProcessOrder_UnknownOrder(t *testing.T) {
	gw := &stubGateway{}
	s := newStore(gw)

	err := s.ProcessOrder(context.Background(), "nope", true)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if gw.updateStatusCalls != 0 {
		t.Fatalf("gateway called for an unknown order")
	}
}

// ---------------------------------------------------------------------------
// RefreshOrders
// ---------------------------------------------------------------------------

func TestRefreshOrders_ReplacesWholesale(t *testing.T) {
	authoritative := []domain.Order{
		{ID: "B2", Status: domain.StatusConfirmed},
		{ID: "B1", Status: domain.StatusPending},
	}
	gw := &stubGateway{
		listUserOrdersFn: func(userID int64) ([]domain.Order, error) {
			if userID != 42 {
				return nil, errors.New("wrong scope")
			}
			return authoritative, nil
		},
	}
	s := newStore(gw)
	seedOrder(s, "stale")

	s.RefreshOrders(context.Background())

	orders := s.Orders()
	if len(orders) != 2 || orders[0].ID != "B2" || orders[1].ID != "B1" {
		t.Fatalf("orders = %+v, want the authority view", orders)
	}
}

func TestRefreshOrders_Idempotent(t *testing.T) {
	gw := &stubGateway{
		listUserOrdersFn: func(int64) ([]domain.Order, error) {
			return []domain.Order{{ID: "B1", Status: domain.StatusPending, Total: 7}}, nil
		},
	}
	s := newStore(gw)

	s.RefreshOrders(context.Background())
	first := s.Orders()
	s.RefreshOrders(context.Background())
	second := s.Orders()

	if len(first) != len(second) {
		t.Fatalf("refresh not idempotent: %d vs %d orders", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Status != second[i].Status || first[i].Total != second[i].Total {
			t.Errorf("order %d differs between refreshes: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRefreshOrders_AdminSeesAllOrders(t *testing.T) {
	gw := &stubGateway{}
	s := NewStoreService(gw, nil, discardLogger)
	s.SetUser(domain.User{ID: 1, Username: "boss", IsAdmin: true})

	s.RefreshOrders(context.Background())

	if gw.listAllCalls != 1 || gw.listUserCalls != 0 {
		t.Fatalf("admin refresh used wrong scope: all=%d user=%d", gw.listAllCalls, gw.listUserCalls)
	}
}

func TestRefreshOrders_FailureKeepsStaleState(t *testing.T) {
	gw := &stubGateway{
		listUserOrdersFn: func(int64) ([]domain.Order, error) { return nil, errGatewayDown },
	}
	s := newStore(gw)
	seedOrder(s, "A1")

	s.RefreshOrders(context.Background()) // must not panic or propagate

	if len(s.Orders()) != 1 || s.Orders()[0].ID != "A1" {
		t.Fatalf("stale orders dropped on failed refresh")
	}
}

func TestRefreshCatalog_KeepsAuthorityOrdering(t *testing.T) {
	gw := &stubGateway{
		listProductsFn: func() ([]domain.Product, error) {
			return []domain.Product{prod("3", "c", 1), prod("1", "a", 1), prod("2", "b", 1)}, nil
		},
	}
	s := newStore(gw)

	s.RefreshCatalog(context.Background())

	products := s.Products()
	if products[0].ID != "3" || products[1].ID != "1" || products[2].ID != "2" {
		t.Fatalf("catalog order = %+v, want the authority's ordering", products)
	}
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

func TestSnapshots_AreCopies(t *testing.T) {
	gw := &stubGateway{
		listProductsFn: func() ([]domain.Product, error) {
			return []domain.Product{prod("1", "apple", 2)}, nil
		},
	}
	s := newStore(gw)
	s.RefreshCatalog(context.Background())
	s.AddToCart(prod("1", "apple", 2))

	products := s.Products()
	products[0].Name = "mutated"
	cart := s.Cart()
	cart[0].Quantity = 99

	if s.Products()[0].Name != "apple" {
		t.Errorf("catalog snapshot is not a copy")
	}
	if s.Cart()[0].Quantity != 1 {
		t.Errorf("cart snapshot is not a copy")
	}
}
