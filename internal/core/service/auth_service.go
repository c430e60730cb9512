package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// AuthService implements the identity exchange and session verification.
type AuthService struct {
	users     ports.UserRepository
	provider  ports.IdentityProvider
	states    ports.StateStore
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	provider ports.IdentityProvider,
	states ports.StateStore,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultSessionTTL
	}
	return &AuthService{
		users:     users,
		provider:  provider,
		states:    states,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// BeginLogin stores a fresh state value and returns the provider consent URL.
func (s *AuthService) BeginLogin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.states.Save(ctx, state); err != nil {
		return "", fmt.Errorf("begin login: save state: %w", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

// ExchangeIdentity validates the callback state, exchanges the authorization
// code for a verified identity, resolves or creates the matching user and
// issues a session token for it.
func (s *AuthService) ExchangeIdentity(ctx context.Context, code, state string) (string, *domain.User, error) {
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", nil, fmt.Errorf("exchange identity: consume state: %w", err)
	}
	if !ok {
		return "", nil, domain.ErrInvalidState
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange identity: %w", err)
	}
	if identity == nil || identity.Subject == "" || identity.Email == "" {
		return "", nil, domain.ErrInvalidIdentity
	}

	user, err := s.findOrCreate(ctx, identity)
	if err != nil {
		return "", nil, fmt.Errorf("exchange identity: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("exchange identity: sign token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("session issued")
	return token, user, nil
}

// findOrCreate relies on the store's unique google_id index: a conflicting
// insert means another login created the record first, so it is re-read.
func (s *AuthService) findOrCreate(ctx context.Context, identity *domain.ExternalIdentity) (*domain.User, error) {
	existing, err := s.users.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		GoogleID:   identity.Subject,
		Email:      identity.Email,
		Name:       identity.Name,
		Tier:       domain.TierFree,
		ImageCount: 0,
		CreatedAt:  s.now().UTC(),
	})
	if errors.Is(err, domain.ErrUserExists) {
		return s.users.FindByGoogleID(ctx, identity.Subject)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user created")
	return created, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Verify checks the token signature and lifetime and confirms the referenced
// user still exists.
func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNoCredential
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrExpiredCredential
		}
		return "", domain.ErrInvalidCredential
	}
	if claims.UserID == "" {
		return "", domain.ErrInvalidCredential
	}

	if _, err := s.users.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUnknownUser
		}
		return "", fmt.Errorf("verify session: %w", err)
	}
	return claims.UserID, nil
}
