package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/filmlab/photofx/internal/core/domain"
)

const userIDKey = "user_id"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Auth validates the bearer session token and injects the user id into the
// context. Failures are returned as domain errors for the HTTP error handler.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return domain.ErrNoCredential
			}

			userID, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the id set by Auth, or "" when the request is anonymous.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
