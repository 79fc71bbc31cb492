package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
	"github.com/minimart/storefront-sync/internal/core/service"
)

// SessionHandler exposes the live identity and readiness of the sync engine.
type SessionHandler struct {
	store *service.StoreService
	boot  *service.Bootstrapper
}

func NewSessionHandler(store *service.StoreService, boot *service.Bootstrapper) *SessionHandler {
	return &SessionHandler{store: store, boot: boot}
}

type sessionResponse struct {
	User     *domain.User         `json:"user"`
	Identity service.IdentityKind `json:"identity"`
	Ready    bool                 `json:"ready"`
}

// Get handles GET /v1/session.
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResponse{
		User:     h.store.User(),
		Identity: h.boot.Result().Kind,
		Ready:    h.store.Ready(),
	})
}
