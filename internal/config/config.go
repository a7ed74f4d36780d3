package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Database
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"pagecraft"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"pagecraft"`
	DBName      string `env:"DB_NAME" envDefault:"pagecraft"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis
	EnableRedis bool   `env:"ENABLE_REDIS" envDefault:"true"`
	RedisURL    string `env:"REDIS_URL" envDefault:"localhost:6379"`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTTTLHrs int    `env:"JWT_TTL_HOURS" envDefault:"72"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	PublicURL   string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080"`

	// Upload
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadURL     string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads/"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"104857600"`

	// Remote asset host. When RemoteStoreURL is set uploads are pushed there
	// instead of the local upload directory.
	RemoteStoreURL       string `env:"REMOTE_STORE_URL"`
	RemoteStoreToken     string `env:"REMOTE_STORE_TOKEN"`
	RemoteStorePublicURL string `env:"REMOTE_STORE_PUBLIC_URL"`

	// Rate Limiting
	RateLimitRequests int `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   int `env:"RATE_LIMIT_WINDOW" envDefault:"60"`
	RateLimitBurst    int `env:"RATE_LIMIT_BURST" envDefault:"0"`

	UploadRateLimitRequests int `env:"UPLOAD_RATE_LIMIT_REQUESTS" envDefault:"10"`
	UploadRateLimitWindow   int `env:"UPLOAD_RATE_LIMIT_WINDOW" envDefault:"300"`

	// Features
	EnableCache   bool `env:"ENABLE_CACHE" envDefault:"true"`
	EnableMetrics bool `env:"ENABLE_METRICS" envDefault:"true"`
	SeedTemplates bool `env:"SEED_TEMPLATES" envDefault:"true"`

	// Bootstrap superadmin, created on first start when both are set.
	SuperadminEmail    string `env:"SUPERADMIN_EMAIL"`
	SuperadminPassword string `env:"SUPERADMIN_PASSWORD"`

	// Layout used by the render endpoint when the request does not name one.
	DefaultLayout string `env:"DEFAULT_LAYOUT" envDefault:"sequential"`
}

// New reads the configuration from the environment.
func New() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("error reading env config: %w", err)
	}

	for i := range c.CORSOrigins {
		c.CORSOrigins[i] = strings.TrimSpace(c.CORSOrigins[i])
	}
	if !strings.HasSuffix(c.UploadURL, "/") {
		c.UploadURL += "/"
	}

	if c.DatabaseURL == "" {
		c.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
		)
	}

	return c, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
