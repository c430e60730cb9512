package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/api/handler"
	"github.com/filmlab/photofx/internal/core/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
	// message overrides the sentinel text shown to the client.
	message string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{domain.ErrNoCredential, http.StatusUnauthorized, "NO_TOKEN", "Access token required"},
	{domain.ErrUnknownUser, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token - user not found"},
	{domain.ErrExpiredCredential, http.StatusForbidden, "TOKEN_EXPIRED", "Token expired"},
	{domain.ErrInvalidCredential, http.StatusForbidden, "TOKEN_INVALID", "Invalid token"},
	{domain.ErrMissingParameters, http.StatusBadRequest, "MISSING_PARAMETERS", "Image and effect are required"},
	{domain.ErrInvalidFormat, http.StatusBadRequest, "INVALID_FORMAT", "Invalid image format. Expected base64 data URL"},
	{domain.ErrInvalidEffect, http.StatusBadRequest, "INVALID_EFFECT", ""},
	{domain.ErrUnknownEffect, http.StatusBadRequest, "INVALID_EFFECT", ""},
	{domain.ErrQuotaExceeded, http.StatusTooManyRequests, "QUOTA_EXCEEDED", "Image processing limit reached. Please upgrade to premium."},
	{domain.ErrUpstreamQuotaExceeded, http.StatusTooManyRequests, "QUOTA_EXCEEDED", "API quota exceeded. Please try again later."},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please slow down"},
	{domain.ErrUpstreamTimeout, http.StatusRequestTimeout, "TIMEOUT_ERROR", "Request timeout. Please try again with a smaller image."},
	{domain.ErrAPIConfig, http.StatusInternalServerError, "API_CONFIG_ERROR", "Invalid API key configuration"},
	{domain.ErrInvalidUpstreamRequest, http.StatusInternalServerError, "PROCESSING_ERROR", "Invalid request. Please check your image format."},
	{domain.ErrNoImageInResponse, http.StatusInternalServerError, "PROCESSING_ERROR", "No processed image was returned. Please try again."},
	{domain.ErrUpstreamUnknown, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to process image"},
	{domain.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
}

type quotaErrorData struct {
	Remaining int         `json:"remaining"`
	Limit     int         `json:"limit"`
	Tier      domain.Tier `json:"tier"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// failure as {success:false, error, code}. Unexpected errors are logged and
// reported without detail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  httpErrorCode(he.Code),
		}
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		resp := handler.ErrorResponse{Error: m.message, Code: m.code}
		if resp.Error == "" {
			resp.Error = err.Error()
		}

		var qe *domain.QuotaError
		if errors.As(err, &qe) {
			resp.Data = quotaErrorData{Remaining: qe.Remaining, Limit: qe.Limit, Tier: qe.Tier}
		}

		if m.status >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("code", m.code).
				Msg("request failed")
		}
		return m.status, resp
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "Internal server error", Code: "INTERNAL_ERROR"}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
