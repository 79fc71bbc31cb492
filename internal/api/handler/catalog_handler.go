package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/ports"
	"github.com/minimart/storefront-sync/internal/core/service"
)

// CatalogHandler exposes the product catalog and its admin mutations.
type CatalogHandler struct {
	store *service.StoreService
}

func NewCatalogHandler(store *service.StoreService) *CatalogHandler {
	return &CatalogHandler{store: store}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	InStock     bool    `json:"in_stock"`
}

type catalogResponse struct {
	Products []domain.Product `json:"products"`
}

// List handles GET /v1/catalog.
//
// @Summary      List the product catalog
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Router       /v1/catalog [get]
func (h *CatalogHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{Products: h.store.Products()})
}

// Create handles POST /v1/catalog (admin). The catalog mutates only after the
// authority confirms creation.
//
// @Summary      Add a product to the catalog
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/catalog [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.store.AddProduct(c.Request().Context(), ports.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Category:    req.Category,
		InStock:     req.InStock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Remove handles DELETE /v1/catalog/:id (admin). The local entry goes away
// only after the authority acknowledges the delete.
//
// @Summary      Remove a product from the catalog
// @Tags         catalog
// @Param        id  path  string  true  "Product id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/catalog/{id} [delete]
func (h *CatalogHandler) Remove(c echo.Context) error {
	if err := h.store.RemoveProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
