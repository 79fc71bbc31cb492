package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/service"
)

// OrderHandler exposes order placement, listing, processing, and refresh.
type OrderHandler struct {
	store *service.StoreService
}

func NewOrderHandler(store *service.StoreService) *OrderHandler {
	return &OrderHandler{store: store}
}

type processOrderRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type processOrderResponse struct {
	OrderID string             `json:"order_id"`
	Status  domain.OrderStatus `json:"status"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// Place handles POST /v1/orders. An empty cart or absent identity is a silent
// no-op answered with 204, deliberately distinct from a failure.
//
// @Summary      Place an order from the current cart
// @Tags         orders
// @Produce      json
// @Success      201  {object}  domain.Order
// @Success      204
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	order, err := h.store.PlaceOrder(c.Request().Context())
	if err != nil {
		return err
	}
	if order == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, ordersResponse{Orders: h.store.Orders()})
}

// Refresh handles POST /v1/orders/refresh. A failed refresh keeps the stale
// list and still answers 204.
func (h *OrderHandler) Refresh(c echo.Context) error {
	h.store.RefreshOrders(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Process handles POST /v1/orders/:id/process (admin).
//
// @Summary      Approve or reject a pending order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order id"
// @Param        body  body      processOrderRequest  true  "Decision"
// @Success      200   {object}  processOrderResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/orders/{id}/process [post]
func (h *OrderHandler) Process(c echo.Context) error {
	var req processOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	orderID := c.Param("id")
	if err := h.store.ProcessOrder(c.Request().Context(), orderID, *req.Approved); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, processOrderResponse{
		OrderID: orderID,
		Status:  domain.StatusForDecision(*req.Approved),
	})
}
