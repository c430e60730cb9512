package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/filmlab/photofx/internal/api"
	"github.com/filmlab/photofx/internal/api/middleware"
	"github.com/filmlab/photofx/internal/core/service"
	"github.com/filmlab/photofx/internal/infrastructure/config"
	mongostore "github.com/filmlab/photofx/internal/infrastructure/db/mongo"
	redisstore "github.com/filmlab/photofx/internal/infrastructure/db/redis"
	"github.com/filmlab/photofx/internal/infrastructure/gemini"
	"github.com/filmlab/photofx/internal/infrastructure/google"
	"github.com/filmlab/photofx/internal/infrastructure/http/handlers"
	"github.com/filmlab/photofx/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "photofx",
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "photofx",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongostore.Disconnect(context.Background(), db); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- External services ---
	processor, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, log)
	if err != nil {
		return err
	}

	provider := google.NewProvider(google.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURI:  cfg.Google.RedirectURI,
	})

	// --- Services ---
	authService := service.NewAuthService(
		users,
		provider,
		redisstore.NewStateStore(rdb, cfg.Google.StateTTL),
		cfg.Session.JWTSecret,
		cfg.Session.TTL,
		log,
	)
	userService := service.NewUserService(users, log)
	imageService := service.NewImageService(users, processor, log)

	e := api.NewRouter(api.Deps{
		Auth:   authService,
		Users:  userService,
		Images: imageService,
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		ClientURL: cfg.ClientURL,
		BodyLimit: cfg.BodyLimit,
		RateLimit: middleware.RateLimitConfig{RPS: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst},
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("model", cfg.Gemini.Model).
			Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
