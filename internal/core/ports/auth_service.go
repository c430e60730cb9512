package ports

import (
	"context"

	"github.com/filmlab/photofx/internal/core/domain"
)

// AuthService exchanges external identities for session credentials and
// verifies those credentials on protected requests.
type AuthService interface {
	// BeginLogin returns the provider URL the browser is redirected to.
	BeginLogin(ctx context.Context) (string, error)
	// ExchangeIdentity completes the provider round trip and issues a session token.
	ExchangeIdentity(ctx context.Context, code, state string) (string, *domain.User, error)
	// Verify returns the user id bound to token.
	Verify(ctx context.Context, token string) (string, error)
}

// IdentityProvider is the external party asserting user identities.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error)
}

// StateStore keeps short-lived OAuth state values between redirect and callback.
type StateStore interface {
	Save(ctx context.Context, state string) error
	// Consume reports whether state was present, removing it atomically.
	Consume(ctx context.Context, state string) (bool, error)
}
