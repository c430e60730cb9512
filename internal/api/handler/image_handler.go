package handler

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/api/metrics"
	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

// ImageHandler serves the effect catalog and the processing endpoint.
type ImageHandler struct {
	service ports.ImageService
	log     zerolog.Logger
}

func NewImageHandler(service ports.ImageService, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{service: service, log: log}
}

type processImageRequest struct {
	Image    string         `json:"image"    validate:"required,startswith=data:image/"`
	Effect   string         `json:"effect"   validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

type quotaView struct {
	Tier       domain.Tier `json:"tier"       example:"free"`
	ImageCount int         `json:"imageCount" example:"1"`
	Remaining  int         `json:"remaining"  example:"4"`
}

type processImageResponse struct {
	ProcessedImage string    `json:"processedImage"`
	ProcessingTime float64   `json:"processingTime" example:"3.42"`
	EffectApplied  string    `json:"effectApplied"  example:"acros_bw"`
	User           quotaView `json:"user"`
}

type effectsResponse struct {
	Effects []domain.Effect `json:"effects"`
	Count   int             `json:"count"`
}

type healthResponse struct {
	Status           string    `json:"status"           example:"healthy"`
	AvailableEffects int       `json:"availableEffects" example:"3"`
	Timestamp        time.Time `json:"timestamp"`
}

// Process applies a film simulation to the uploaded image.
//
// @Summary      Apply an effect
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      processImageRequest  true  "Image data URI and effect id"
// @Success      200   {object}  SuccessResponse{data=processImageResponse}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      408   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /images/process [post]
func (h *ImageHandler) Process(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req processImageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.ProcessImage(c.Request().Context(), ports.ProcessImageInput{
		UserID:   userID,
		Image:    req.Image,
		Effect:   req.Effect,
		Metadata: req.Metadata,
	})
	if err != nil {
		recordFailure(err)
		return err
	}

	metrics.ImagesProcessedTotal.WithLabelValues(res.EffectApplied).Inc()
	metrics.ImageProcessingDuration.WithLabelValues(res.EffectApplied).Observe(res.ProcessingTime.Seconds())

	return ok(c, processImageResponse{
		ProcessedImage: res.ProcessedImage,
		ProcessingTime: res.ProcessingTime.Seconds(),
		EffectApplied:  res.EffectApplied,
		User: quotaView{
			Tier:       res.Quota.Tier,
			ImageCount: res.Quota.Used,
			Remaining:  res.Quota.Remaining,
		},
	})
}

// Effects lists the available film simulations.
//
// @Summary      List effects
// @Tags         images
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=effectsResponse}
// @Router       /images/effects [get]
func (h *ImageHandler) Effects(c echo.Context) error {
	effects := h.service.Effects()
	return ok(c, effectsResponse{Effects: effects, Count: len(effects)})
}

// Health reports whether the processing pipeline is available.
//
// @Summary      Image service health
// @Tags         images
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=healthResponse}
// @Failure      500  {object}  ErrorResponse
// @Router       /images/health [get]
func (h *ImageHandler) Health(c echo.Context) error {
	health, err := h.service.Health(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, healthResponse{
		Status:           health.Status,
		AvailableEffects: health.AvailableEffects,
		Timestamp:        health.Timestamp,
	})
}

func recordFailure(err error) {
	var qe *domain.QuotaError
	switch {
	case errors.As(err, &qe):
		metrics.QuotaRejectionsTotal.WithLabelValues(string(qe.Tier)).Inc()
	case isUpstreamError(err):
		metrics.UpstreamErrorsTotal.WithLabelValues(domain.UpstreamErrorReason(err)).Inc()
	}
}

func isUpstreamError(err error) bool {
	for _, target := range []error{
		domain.ErrAPIConfig,
		domain.ErrUpstreamQuotaExceeded,
		domain.ErrInvalidUpstreamRequest,
		domain.ErrUpstreamTimeout,
		domain.ErrNoImageInResponse,
		domain.ErrUpstreamUnknown,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
