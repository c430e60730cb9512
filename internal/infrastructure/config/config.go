package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=3001"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	ClientURL string `env:"CLIENT_URL, default=http://localhost:5173"`
	BodyLimit string `env:"BODY_LIMIT, default=50M"`

	Session   SessionConfig
	Google    GoogleConfig
	Gemini    GeminiConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type SessionConfig struct {
	JWTSecret string        `env:"JWT_SECRET,  required"`
	TTL       time.Duration `env:"SESSION_TTL, default=720h"`
}

type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_CLIENT_ID,     required"`
	ClientSecret string        `env:"GOOGLE_CLIENT_SECRET, required"`
	RedirectURI  string        `env:"GOOGLE_REDIRECT_URI,  required"`
	StateTTL     time.Duration `env:"OAUTH_STATE_TTL,      default=10m"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY, required"`
	Model   string        `env:"GEMINI_MODEL,   default=gemini-2.5-flash-image-preview"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT, default=120s"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGODB_DB,  default=photofx"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS,   default=1"`
	Burst int     `env:"RATE_LIMIT_BURST, default=3"`
}

// StoreConfig is the subset needed by operator commands that only touch the
// user store.
type StoreConfig struct {
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Mongo    MongoConfig
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the full server configuration. A .env file in the working
// directory is applied first when present.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the server configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadStore reads only the user store settings.
func LoadStore(ctx context.Context) (*StoreConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg StoreConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}
