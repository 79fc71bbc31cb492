package authority

import (
	"strconv"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
)

// Normalization between authority wire records and domain entities. All
// functions are pure and never fail: a malformed record degrades to the most
// defensive default so catalog and order display stay partially functional.

const (
	defaultUsername  = "unknown"
	referralLinkBase = "https://minimart.app/start?ref="
)

func decodeUser(w wireUser) domain.User {
	username := w.Username
	if username == "" {
		username = defaultUsername
	}
	return domain.User{
		ID:           w.ID,
		Username:     username,
		Balance:      w.Balance,
		Referrals:    w.Referrals,
		ReferralLink: referralLinkBase + strconv.FormatInt(w.ID, 10),
		IsAdmin:      w.IsAdmin,
	}
}

// decodeProduct turns the authority's numeric identity into the internal
// string form. Pure formatting, stable and reversible within a session.
func decodeProduct(w wireProduct) domain.Product {
	price := w.Price
	if price < 0 {
		price = 0
	}
	return domain.Product{
		ID:          strconv.FormatInt(w.ID, 10),
		Name:        w.Name,
		Price:       price,
		Image:       w.Image,
		Description: w.Description,
		Category:    w.Category,
		InStock:     w.InStock,
	}
}

func decodeProducts(ws []wireProduct) []domain.Product {
	out := make([]domain.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, decodeProduct(w))
	}
	return out
}

func decodeOrderItem(w wireOrderItem) domain.CartItem {
	qty := w.Quantity
	if qty < 1 {
		qty = 1
	}
	price := w.Price
	if price < 0 {
		price = 0
	}
	return domain.CartItem{
		Product: domain.Product{
			ID:    strconv.FormatInt(w.ProductID, 10),
			Name:  w.Name,
			Price: price,
			Image: w.Image,
		},
		Quantity: qty,
	}
}

func decodeStatus(s string) domain.OrderStatus {
	switch domain.OrderStatus(s) {
	case domain.StatusConfirmed:
		return domain.StatusConfirmed
	case domain.StatusCanceled:
		return domain.StatusCanceled
	default:
		return domain.StatusPending
	}
}

func decodeOrder(w wireOrder) domain.Order {
	username := w.Username
	if username == "" {
		username = defaultUsername
	}
	items := make([]domain.CartItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, decodeOrderItem(it))
	}
	return domain.Order{
		ID:        w.ID,
		Username:  username,
		Items:     items,
		Total:     w.Total,
		Status:    decodeStatus(w.Status),
		CreatedAt: w.CreatedAt,
	}
}

func decodeOrders(ws []wireOrder) []domain.Order {
	out := make([]domain.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, decodeOrder(w))
	}
	return out
}

// encodeOrderItems sends product identities back in the numeric form they
// were decoded from.
func encodeOrderItems(items []domain.CartItem) []wireOrderItem {
	out := make([]wireOrderItem, 0, len(items))
	for _, it := range items {
		id, _ := strconv.ParseInt(it.Product.ID, 10, 64)
		out = append(out, wireOrderItem{
			ProductID: id,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Image:     it.Product.Image,
			Quantity:  it.Quantity,
		})
	}
	return out
}

func encodeProductInput(in ports.ProductInput) createProductRequest {
	return createProductRequest{
		Name:        in.Name,
		Price:       in.Price,
		Image:       in.Image,
		Description: in.Description,
		Category:    in.Category,
		InStock:     in.InStock,
	}
}

func encodeUserInput(in ports.UserUpsertInput) upsertUserRequest {
	return upsertUserRequest{ID: in.ID, Username: in.Username, IsAdmin: in.IsAdmin}
}

func encodeOrderInput(in ports.OrderInput) createOrderRequest {
	return createOrderRequest{
		UserID: in.UserID,
		Items:  encodeOrderItems(in.Items),
		Total:  in.Total,
	}
}
