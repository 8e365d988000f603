package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// Account provisioning is admin-only: there is no self-service signup. These
// tests exercise the Auth + RBAC chain the way the router mounts it on
// POST /v1/auth/register.

func newRegisterTestServer(svc ports.AuthService, created *bool) *echo.Echo {
	e := echo.New()
	e.POST("/v1/auth/register", func(c echo.Context) error {
		*created = true
		return c.NoContent(http.StatusCreated)
	}, Auth(svc), RBAC(domain.RoleAdmin))
	return e
}

func TestRegisterRoute_AnonymousRejected(t *testing.T) {
	created := false
	e := newRegisterTestServer(&stubAuthService{user: &domain.User{ID: "u1"}}, &created)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
	if created {
		t.Fatal("anonymous request must not reach the handler")
	}
}

func TestRegisterRoute_WriterForbidden(t *testing.T) {
	created := false
	writer := &domain.User{ID: "w1", Role: domain.RoleWriter}
	e := newRegisterTestServer(&stubAuthService{user: writer}, &created)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", nil)
	req.Header.Set("Authorization", "Bearer writer-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a writer token, got %d", rec.Code)
	}
	if created {
		t.Fatal("writer must not be able to provision accounts")
	}
}

func TestRegisterRoute_AdminAllowed(t *testing.T) {
	created := false
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin}
	e := newRegisterTestServer(&stubAuthService{user: admin}, &created)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for an admin token, got %d", rec.Code)
	}
	if !created {
		t.Fatal("admin request must reach the handler")
	}
}
