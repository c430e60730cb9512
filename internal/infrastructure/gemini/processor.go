// Package gemini applies film-simulation effects by sending the source image
// and an effect prompt to a Gemini image model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/filmlab/photofx/internal/core/domain"
)

const (
	DefaultModel   = "gemini-2.5-flash-image-preview"
	DefaultTimeout = 120 * time.Second
)

// Config configures the model client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// contentGenerator is the slice of the genai client the processor uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Processor implements ports.EffectProcessor.
type Processor struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Processor backed by the Gemini Developer API.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Processor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrAPIConfig
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	return newProcessor(client.Models, cfg, log), nil
}

func newProcessor(models contentGenerator, cfg Config, log zerolog.Logger) *Processor {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Processor{
		models:  models,
		model:   model,
		timeout: timeout,
		log:     log.With().Str("component", "gemini").Str("model", model).Logger(),
	}
}

// Process applies effectID to a data-URI image and returns the result as a
// data URI.
func (p *Processor) Process(ctx context.Context, image, effectID string) (string, error) {
	effect, ok := domain.LookupEffect(effectID)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownEffect, effectID)
	}

	mimeType, data, err := domain.DecodeImageDataURI(image)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(effect.Prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := p.models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		classified := classify(ctx, err)
		p.log.Error().Err(err).
			Str("effect", effectID).
			Dur("elapsed", time.Since(start)).
			Str("reason", domain.UpstreamErrorReason(classified)).
			Msg("image generation failed")
		return "", classified
	}

	out, err := firstImage(resp)
	if err != nil {
		p.log.Warn().Str("effect", effectID).Msg("model returned no image")
		return "", err
	}

	p.log.Debug().Str("effect", effectID).Dur("elapsed", time.Since(start)).Msg("image generated")
	return out, nil
}

func firstImage(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.ErrNoImageInResponse
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", domain.ErrNoImageInResponse
	}
	for _, part := range cand.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return domain.EncodeImageDataURI(part.InlineData.MIMEType, part.InlineData.Data), nil
	}
	return "", domain.ErrNoImageInResponse
}

// classify maps SDK and transport failures onto domain errors. The original
// error stays in the chain for logging.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr.Code, apiErr.Status, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key"):
		return fmt.Errorf("%w: %v", domain.ErrAPIConfig, err)
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(strings.ToLower(msg), "quota"):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamQuotaExceeded, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnknown, err)
	}
}

func classifyAPIError(code int, status, message string, err error) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden, strings.Contains(message, "API key"):
		return fmt.Errorf("%w: %v", domain.ErrAPIConfig, err)
	case code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %v", domain.ErrUpstreamQuotaExceeded, err)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamRequest, err)
	case code == http.StatusGatewayTimeout, status == "DEADLINE_EXCEEDED":
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnknown, err)
	}
}
