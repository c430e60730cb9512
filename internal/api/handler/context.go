package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/filmlab/photofx/internal/api/middleware"
	"github.com/filmlab/photofx/internal/core/domain"
)

// ctxUserID returns the user id injected by the Auth middleware. An empty
// value means the route was mounted without authentication.
func ctxUserID(c echo.Context) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", domain.ErrNoCredential
	}
	return id, nil
}
