package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

// ImageService sequences a processing request: validate, check quota, call
// the effect processor, record usage and shape the result.
type ImageService struct {
	users     ports.UserRepository
	processor ports.EffectProcessor
	log       zerolog.Logger
	now       func() time.Time
}

func NewImageService(users ports.UserRepository, processor ports.EffectProcessor, log zerolog.Logger) *ImageService {
	return &ImageService{users: users, processor: processor, log: log, now: time.Now}
}

// ProcessImage applies in.Effect to in.Image on behalf of in.UserID.
// Quota is consumed only once the processor has returned an image.
func (s *ImageService) ProcessImage(ctx context.Context, in ports.ProcessImageInput) (*ports.ProcessImageResult, error) {
	if in.Image == "" || in.Effect == "" {
		return nil, domain.ErrMissingParameters
	}
	if !domain.HasImageDataPrefix(in.Image) {
		return nil, domain.ErrInvalidFormat
	}
	if _, ok := domain.LookupEffect(in.Effect); !ok {
		return nil, fmt.Errorf("%w, available effects: %s", domain.ErrInvalidEffect, strings.Join(domain.EffectIDs(), ", "))
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	quota := user.Quota()
	if !quota.Allowed {
		s.log.Info().Str("user_id", user.ID).Str("tier", string(user.Tier)).Int("image_count", user.ImageCount).Msg("quota exceeded")
		return nil, domain.NewQuotaError(quota)
	}

	log := s.log.With().Str("user_id", user.ID).Str("effect", in.Effect).Logger()
	if format, ok := in.Metadata["format"].(string); ok {
		log = log.With().Str("format", format).Logger()
	}
	log.Debug().Int("remaining", quota.Remaining).Msg("processing image")

	start := s.now()
	processed, err := s.processor.Process(ctx, in.Image, in.Effect)
	if err != nil {
		log.Error().Err(err).Msg("effect processing failed")
		return nil, fmt.Errorf("process image: %w", err)
	}

	// The image exists at this point, so usage is recorded even if the caller
	// has gone away.
	updated, err := s.users.IncrementImageCount(context.WithoutCancel(ctx), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			log.Warn().Msg("quota consumed by a concurrent request, result withheld")
			return nil, domain.NewQuotaError(domain.EvaluateQuota(user.Tier, domain.TierLimit(user.Tier)))
		}
		log.Error().Err(err).Msg("failed to record usage")
		return nil, fmt.Errorf("record usage: %w", err)
	}
	elapsed := s.now().Sub(start)

	snapshot := updated.Quota()
	log.Info().
		Dur("processing_time", elapsed).
		Int("image_count", snapshot.Used).
		Int("remaining", snapshot.Remaining).
		Msg("image processed")

	return &ports.ProcessImageResult{
		ProcessedImage: processed,
		ProcessingTime: elapsed,
		EffectApplied:  in.Effect,
		Quota:          snapshot,
	}, nil
}

// Effects returns the catalog of selectable effects.
func (s *ImageService) Effects() []domain.Effect {
	return domain.Effects()
}

// Health reports whether the pipeline can accept work.
func (s *ImageService) Health(_ context.Context) (*ports.ServiceHealth, error) {
	if s.processor == nil {
		return nil, errors.New("image processor is not configured")
	}
	return &ports.ServiceHealth{
		Status:           "healthy",
		AvailableEffects: len(domain.EffectIDs()),
		Timestamp:        s.now().UTC(),
	}, nil
}
