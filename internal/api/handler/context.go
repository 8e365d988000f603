package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Auth
// middleware. Its presence proves the middleware ran; a handler reached
// without it answers 401 rather than panicking downstream.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
