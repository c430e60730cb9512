package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/filmlab/photofx/docs"
	"github.com/filmlab/photofx/internal/api/handler"
	"github.com/filmlab/photofx/internal/api/middleware"
	"github.com/filmlab/photofx/internal/core/ports"
	"github.com/filmlab/photofx/internal/infrastructure/http/handlers"
)

const defaultBodyLimit = "50M"

// Deps carries everything the router needs. Services are constructed by the
// caller.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Images ports.ImageService

	// Readiness checks keyed by dependency name, e.g. "mongodb".
	Readiness map[string]handlers.Check

	ClientURL string
	BodyLimit string
	RateLimit middleware.RateLimitConfig

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	promCfg := echoprometheus.MiddlewareConfig{Namespace: "photofx"}
	metricsHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Users, d.ClientURL, d.Log)
	imageHandler := handler.NewImageHandler(d.Images, d.Log)
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.Readiness)

	requireAuth := middleware.Auth(d.Auth)

	api := e.Group("/api")

	// --- Auth routes ---
	api.GET("/auth/google", authHandler.GoogleLogin)
	api.GET("/auth/google/callback", authHandler.GoogleCallback)
	api.GET("/auth/profile", authHandler.Profile, requireAuth)

	// --- Image routes ---
	api.POST("/images/process", imageHandler.Process, requireAuth, middleware.RateLimit(d.RateLimit))
	api.GET("/images/effects", imageHandler.Effects)
	api.GET("/images/health", imageHandler.Health)

	// --- Operational endpoints (no auth required) ---
	api.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURIPath:   true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("user_id", middleware.UserID(c)).
				Msg("request")
			return nil
		},
	})
}
