package ports

import (
	"context"
	"time"

	"github.com/filmlab/photofx/internal/core/domain"
)

// ProcessImageInput carries an authenticated processing request.
type ProcessImageInput struct {
	UserID   string
	Image    string
	Effect   string
	Metadata map[string]any
}

// ProcessImageResult is returned after a successful transformation.
type ProcessImageResult struct {
	ProcessedImage string
	ProcessingTime time.Duration
	EffectApplied  string
	Quota          domain.Quota
}

// ServiceHealth describes the image pipeline's readiness.
type ServiceHealth struct {
	Status           string
	AvailableEffects int
	Timestamp        time.Time
}

// ImageService is the quota-gated processing use case.
type ImageService interface {
	ProcessImage(ctx context.Context, in ProcessImageInput) (*ProcessImageResult, error)
	Effects() []domain.Effect
	Health(ctx context.Context) (*ServiceHealth, error)
}

// EffectProcessor applies a catalog effect to an image data URI using the
// external image model and returns the transformed image as a data URI.
type EffectProcessor interface {
	Process(ctx context.Context, image, effectID string) (string, error)
}
