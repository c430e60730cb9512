package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/core/domain"
)

func TestUserService_Profile_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seed(&domain.User{GoogleID: "g-1", Email: "a@example.com", Name: "A", Tier: domain.TierFree, ImageCount: 3})
	svc := NewUserService(repo, zerolog.Nop())

	first, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	second, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if *first != *second {
		t.Fatalf("expected identical profiles, got %+v and %+v", first, second)
	}
}

func TestUserService_Profile_NotFound(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())

	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpgradeToPremium_ResetsCount(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seed(&domain.User{GoogleID: "g-1", Email: "a@example.com", Tier: domain.TierFree, ImageCount: 5})
	svc := NewUserService(repo, zerolog.Nop())

	upgraded, err := svc.UpgradeToPremium(context.Background(), " a@example.com ")
	if err != nil {
		t.Fatalf("UpgradeToPremium returned error: %v", err)
	}
	if upgraded.Tier != domain.TierPremium || upgraded.ImageCount != 0 {
		t.Fatalf("unexpected upgraded user: %+v", upgraded)
	}
	if q := upgraded.Quota(); q.Remaining != domain.PremiumImageLimit || !q.Allowed {
		t.Fatalf("expected premium quota, got %+v", q)
	}
	if repo.get(user.ID).Tier != domain.TierPremium {
		t.Fatalf("upgrade was not persisted")
	}
}

func TestUserService_UpgradeToPremium_UnknownEmail(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())

	if _, err := svc.UpgradeToPremium(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
