package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Environment string `default:"development" usage:"Deployment environment (development or production)"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL    string `default:"redis://localhost:6379" usage:"Redis connection URL (STORE_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	Token       TokenConfig
	Stripe      StripeConfig
	Checkout    CheckoutConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// TokenConfig holds the session credential secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string        `usage:"HMAC secret for access tokens (STORE_TOKEN_ACCESS_SECRET)" flag:"access-secret"`
	RefreshSecret string        `usage:"HMAC secret for refresh tokens (STORE_TOKEN_REFRESH_SECRET)" flag:"refresh-secret"`
	AccessTTL     time.Duration `default:"30m" usage:"Access token lifetime"`
	RefreshTTL    time.Duration `default:"24h" usage:"Refresh token lifetime"`
}

// StripeConfig holds the payment gateway credentials.
type StripeConfig struct {
	SecretKey string        `usage:"Stripe API secret key (STORE_STRIPE_SECRET_KEY)" flag:"stripe-secret-key"`
	Currency  string        `default:"usd" usage:"ISO currency code for checkout sessions"`
	Timeout   time.Duration `default:"10s" usage:"Gateway request timeout"`
}

// CheckoutConfig controls the checkout flow policy.
type CheckoutConfig struct {
	SuccessURL      string `default:"http://localhost:3000/checkout/success" usage:"Redirect after successful payment" flag:"success-url"`
	CancelURL       string `default:"http://localhost:3000/checkout/cancel" usage:"Redirect after cancelled payment" flag:"cancel-url"`
	RewardThreshold int64  `default:"20000" usage:"Order total in minor units earning a reward coupon" flag:"reward-threshold"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"http://localhost:3000" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// Production reports whether the service runs in a production environment.
// Session cookies are marked Secure only in production.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Token.AccessSecret == "" || cfg.Token.RefreshSecret == "" {
		return nil, errors.New("token secrets are required: set STORE_TOKEN_ACCESS_SECRET and STORE_TOKEN_REFRESH_SECRET")
	}
	if cfg.Stripe.SecretKey == "" {
		return nil, errors.New("stripe secret key is required: set STORE_STRIPE_SECRET_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" && c.RedisURL == "redis://localhost:6379" {
		c.RedisURL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
