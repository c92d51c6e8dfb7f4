package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr            string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL     string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL        string `default:"" usage:"Redis URL for session storage (STORE_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	Session         SessionConfig
	Images          ImagesConfig
	SignInRateLimit RateLimitConfig
	CORS            CORSConfig
	Graceful        GracefulConfig
}

// SessionConfig controls session tokens and the session cookie.
type SessionConfig struct {
	Secret       string        `usage:"HMAC secret for session tokens (STORE_SESSION_SECRET)" flag:"session-secret"`
	TTL          time.Duration `default:"24h" usage:"Session lifetime" flag:"session-ttl"`
	CookieName   string        `default:"session" usage:"Session cookie name" flag:"session-cookie"`
	SecureCookie bool          `default:"false" usage:"Mark the session cookie Secure" flag:"session-secure-cookie"`
}

// ImagesConfig controls product image storage.
type ImagesConfig struct {
	Dir            string `default:"data/images" usage:"Directory for uploaded product images" flag:"images-dir"`
	BaseURL        string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com)" flag:"image-base-url"`
	MaxUploadBytes int64  `default:"10485760" usage:"Maximum product image size in bytes" flag:"images-max-bytes"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"10" usage:"Max failed sign-ins per window"`
	Window time.Duration `default:"15m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RedisURL == "" {
		c.RedisURL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	case c.RedisURL == "":
		return errors.New("redis URL is required: set STORE_REDIS_URL or REDIS_URL")
	case c.Session.Secret == "":
		return errors.New("session secret is required: set STORE_SESSION_SECRET")
	case c.SignInRateLimit.Max <= 0 || c.SignInRateLimit.Window <= 0:
		return errors.New("sign-in rate limit max and window must be positive")
	}
	return nil
}
