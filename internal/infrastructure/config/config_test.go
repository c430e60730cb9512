package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":           "s3cret",
		"GOOGLE_CLIENT_ID":     "client-id",
		"GOOGLE_CLIENT_SECRET": "client-secret",
		"GOOGLE_REDIRECT_URI":  "http://localhost:3001/api/auth/google/callback",
		"GEMINI_API_KEY":       "key",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Equal(t, "50M", cfg.BodyLimit)
	assert.Equal(t, 720*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Google.StateTTL)
	assert.Equal(t, "gemini-2.5-flash-image-preview", cfg.Gemini.Model)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "photofx", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 1.0, cfg.RateLimit.RPS)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoadWith_Overrides(t *testing.T) {
	env := requiredEnv()
	env["ENV"] = "production"
	env["GEMINI_TIMEOUT"] = "45s"
	env["RATE_LIMIT_BURST"] = "10"
	env["MONGODB_DB"] = "photofx_test"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "photofx_test", cfg.Mongo.Database)
}

func TestLoadWith_MissingRequired(t *testing.T) {
	for key := range requiredEnv() {
		t.Run(key, func(t *testing.T) {
			env := requiredEnv()
			delete(env, key)

			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
