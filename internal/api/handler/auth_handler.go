package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/filmlab/photofx/internal/api/metrics"
	"github.com/filmlab/photofx/internal/core/domain"
	"github.com/filmlab/photofx/internal/core/ports"
)

// Redirect error codes understood by the web client.
const (
	loginErrAuthFailed   = "auth_failed"
	loginErrOAuthDenied  = "oauth_denied"
	loginErrNoCode       = "no_code"
	loginErrInvalidToken = "invalid_token"
)

type AuthHandler struct {
	auth      ports.AuthService
	users     ports.UserService
	clientURL string
	log       zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService, clientURL string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, clientURL: clientURL, log: log}
}

type profileResponse struct {
	User *domain.User `json:"user"`
}

// GoogleLogin redirects the browser to Google's consent screen.
//
// @Summary      Begin Google sign-in
// @Tags         auth
// @Success      302
// @Router       /auth/google [get]
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	target, err := h.auth.BeginLogin(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to start google login")
		return h.redirectError(c, loginErrAuthFailed)
	}
	return c.Redirect(http.StatusFound, target)
}

// GoogleCallback completes the OAuth round trip and hands the session token
// to the web client.
//
// @Summary      Google OAuth callback
// @Tags         auth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "State issued by /auth/google"
// @Param        error  query  string  false  "Error reported by Google"
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.log.Warn().Str("provider_error", providerErr).Msg("google login denied")
		return h.redirectError(c, loginErrOAuthDenied)
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.redirectError(c, loginErrNoCode)
	}

	token, user, err := h.auth.ExchangeIdentity(c.Request().Context(), code, c.QueryParam("state"))
	if err != nil {
		reason := loginErrAuthFailed
		if errors.Is(err, domain.ErrInvalidIdentity) {
			reason = loginErrInvalidToken
		}
		h.log.Warn().Err(err).Str("reason", reason).Msg("google login failed")
		return h.redirectError(c, reason)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info().Str("user_id", user.ID).Msg("user signed in")
	return c.Redirect(http.StatusFound, h.clientRedirect(url.Values{"token": {token}}))
}

// Profile returns the authenticated user's record.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=profileResponse}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(c, profileResponse{User: user})
}

func (h *AuthHandler) redirectError(c echo.Context, reason string) error {
	metrics.LoginsTotal.WithLabelValues(reason).Inc()
	return c.Redirect(http.StatusFound, h.clientRedirect(url.Values{"error": {reason}}))
}

func (h *AuthHandler) clientRedirect(q url.Values) string {
	return h.clientURL + "?" + q.Encode()
}
