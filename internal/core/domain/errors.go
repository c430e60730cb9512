package domain

import (
	"context"
	"errors"
	"fmt"
)

// Authentication errors.
var (
	ErrNoCredential      = errors.New("access token required")
	ErrInvalidCredential = errors.New("invalid token")
	ErrExpiredCredential = errors.New("token expired")
	ErrUnknownUser       = errors.New("token references an unknown user")
	ErrInvalidIdentity   = errors.New("identity assertion rejected")
	ErrInvalidState      = errors.New("oauth state mismatch")
)

// Validation errors.
var (
	ErrMissingParameters = errors.New("image and effect are required")
	ErrInvalidFormat     = errors.New("invalid image format, expected base64 data URL")
	ErrInvalidEffect     = errors.New("invalid effect")
	ErrUnknownEffect     = errors.New("unknown effect")
)

// Store errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Quota and throttling errors.
var (
	ErrQuotaExceeded = errors.New("image processing limit reached, please upgrade to premium")
	ErrRateLimited   = errors.New("too many requests")
)

// Upstream (image model) errors.
var (
	ErrAPIConfig              = errors.New("invalid API key configuration")
	ErrUpstreamQuotaExceeded  = errors.New("upstream quota exceeded")
	ErrInvalidUpstreamRequest = errors.New("upstream rejected the request")
	ErrUpstreamTimeout        = errors.New("upstream timeout")
	ErrNoImageInResponse      = errors.New("no image data found in response")
	ErrUpstreamUnknown        = errors.New("image processing failed")
)

// QuotaError is returned when a user has exhausted their tier limit.
type QuotaError struct {
	Tier      Tier
	Limit     int
	Remaining int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s (tier=%s limit=%d)", ErrQuotaExceeded, e.Tier, e.Limit)
}

// Is lets errors.Is(err, ErrQuotaExceeded) match a QuotaError.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// NewQuotaError builds a QuotaError from an evaluated quota.
func NewQuotaError(q Quota) *QuotaError {
	return &QuotaError{Tier: q.Tier, Limit: q.Limit, Remaining: q.Remaining}
}

// UpstreamErrorReason returns a short label for an image model failure, used
// in logs and metrics.
func UpstreamErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrAPIConfig):
		return "api_config"
	case errors.Is(err, ErrUpstreamQuotaExceeded):
		return "quota"
	case errors.Is(err, ErrInvalidUpstreamRequest):
		return "invalid_request"
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrNoImageInResponse):
		return "no_image"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
