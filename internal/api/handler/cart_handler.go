package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/service"
)

// CartHandler exposes the local-only cart operations. None of them touch the
// authority; the cart has no server-side representation until placement.
type CartHandler struct {
	store *service.StoreService
}

func NewCartHandler(store *service.StoreService) *CartHandler {
	return &CartHandler{store: store}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type cartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (h *CartHandler) cart() cartResponse {
	return cartResponse{Items: h.store.Cart(), Total: h.store.CartTotal()}
}

// Get handles GET /v1/cart.
func (h *CartHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart())
}

// AddItem handles POST /v1/cart/items. Adding an already-present product
// increments its quantity instead of duplicating the entry.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, ok := h.store.Product(req.ProductID)
	if !ok {
		return domain.ErrProductNotFound
	}
	h.store.AddToCart(product)
	return c.JSON(http.StatusOK, h.cart())
}

// RemoveItem handles DELETE /v1/cart/items/:id. No-op if absent.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	h.store.RemoveFromCart(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
	h.store.ClearCart()
	return c.NoContent(http.StatusNoContent)
}
