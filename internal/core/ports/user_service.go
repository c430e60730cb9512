package ports

import (
	"context"

	"github.com/filmlab/photofx/internal/core/domain"
)

// UserService exposes read and administrative operations on user records.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpgradeToPremium(ctx context.Context, email string) (*domain.User, error)
}
