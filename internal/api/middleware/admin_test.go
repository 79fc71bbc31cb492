package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/minimart/storefront-sync/internal/core/domain"
)

type stubCurrentUser struct {
	user *domain.User
}

func (s *stubCurrentUser) User() *domain.User { return s.user }

func invoke(t *testing.T, current CurrentUser) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/catalog", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	if err := Admin(current)(next)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec
}

func TestAdmin_AllowsAdminUser(t *testing.T) {
	rec := invoke(t, &stubCurrentUser{user: &domain.User{ID: 1, IsAdmin: true}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdmin_RejectsRegularUser(t *testing.T) {
	rec := invoke(t, &stubCurrentUser{user: &domain.User{ID: 2}})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdmin_RejectsBeforeBootstrap(t *testing.T) {
	rec := invoke(t, &stubCurrentUser{})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
