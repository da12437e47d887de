package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the public origin of the site; redirect targets are
	// normalized against it.
	BaseURL       string        `env:"AUTH_URL,    default=http://localhost:8080"`
	SessionSecret string        `env:"AUTH_SECRET, required"`
	SessionTTL    time.Duration `env:"SESSION_TTL, default=720h"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Google   GoogleConfig
	WebAuthn WebAuthnConfig
	Events   EventsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// GoogleConfig leaves the provider disabled when ClientID is empty.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
}

type WebAuthnConfig struct {
	RPID          string        `env:"WEBAUTHN_RP_ID,           default=localhost"`
	RPDisplayName string        `env:"WEBAUTHN_RP_DISPLAY_NAME, default=Account Portal"`
	RPOrigins     []string      `env:"WEBAUTHN_RP_ORIGINS"`
	CeremonyTTL   time.Duration `env:"WEBAUTHN_CEREMONY_TTL,    default=5m"`
}

type EventsConfig struct {
	Workers int `env:"EVENT_WORKERS, default=4"`
}

// Debug reports whether verbose development logging is on.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Env, "development")
}

// SecureCookies reports whether cookies must carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(strings.ToLower(c.BaseURL), "https://")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse reads configuration from lookuper and fills derived defaults.
func Parse(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("AUTH_URL must be an absolute URL, got %q", cfg.BaseURL)
	}
	if len(cfg.WebAuthn.RPOrigins) == 0 {
		cfg.WebAuthn.RPOrigins = []string{base.Scheme + "://" + base.Host}
	}
	return &cfg, nil
}
