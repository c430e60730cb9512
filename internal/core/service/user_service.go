package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

// UpgradeToPremium moves the user to the premium tier. The usage counter is
// reset to zero as part of the same store update.
func (s *UserService) UpgradeToPremium(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}

	upgraded, err := s.repo.UpgradeToPremium(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}

	s.log.Info().
		Str("user_id", upgraded.ID).
		Str("previous_tier", string(user.Tier)).
		Int("previous_count", user.ImageCount).
		Msg("user upgraded to premium")
	return upgraded, nil
}
