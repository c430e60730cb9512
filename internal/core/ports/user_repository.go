package ports

import (
	"context"

	"github.com/filmlab/photofx/internal/core/domain"
)

// UserRepository defines persistence operations for user records.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts a new user. Duplicate google_id or email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// IncrementImageCount adds one to the user's count only while the count is
	// below the limit of the user's tier, returning the updated record.
	// A user at the ceiling yields domain.ErrQuotaExceeded.
	IncrementImageCount(ctx context.Context, id string) (*domain.User, error)
	// UpgradeToPremium sets tier=premium and resets the count to zero.
	UpgradeToPremium(ctx context.Context, id string) (*domain.User, error)
}
