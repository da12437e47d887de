package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected base url: %s", cfg.BaseURL)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Fatalf("unexpected session ttl: %v", cfg.SessionTTL)
	}
	if len(cfg.WebAuthn.RPOrigins) != 1 || cfg.WebAuthn.RPOrigins[0] != "http://localhost:8080" {
		t.Fatalf("unexpected rp origins: %v", cfg.WebAuthn.RPOrigins)
	}
	if !cfg.Debug() {
		t.Fatalf("expected debug in development")
	}
	if cfg.SecureCookies() {
		t.Fatalf("expected insecure cookies for http base url")
	}
}

func TestParse_MissingSecret(t *testing.T) {
	if _, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without AUTH_SECRET")
	}
}

func TestParse_Production(t *testing.T) {
	cfg, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET":         "secret",
		"AUTH_URL":            "https://accounts.example.com/",
		"ENV":                 "production",
		"WEBAUTHN_RP_ORIGINS": "https://accounts.example.com,https://example.com",
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BaseURL != "https://accounts.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.BaseURL)
	}
	if cfg.Debug() || !cfg.SecureCookies() {
		t.Fatalf("unexpected production flags: debug=%v secure=%v", cfg.Debug(), cfg.SecureCookies())
	}
	if len(cfg.WebAuthn.RPOrigins) != 2 {
		t.Fatalf("unexpected rp origins: %v", cfg.WebAuthn.RPOrigins)
	}
}

func TestParse_RelativeBaseURL(t *testing.T) {
	_, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET": "secret",
		"AUTH_URL":    "/relative",
	}))
	if err == nil {
		t.Fatalf("expected error for relative AUTH_URL")
	}
}

func TestParse_Redis(t *testing.T) {
	cfg, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUTH_SECRET":    "secret",
		"REDIS_ADDR":     "cache:6380",
		"REDIS_PASSWORD": "pw",
		"REDIS_DB":       "2",
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Redis.Addr != "cache:6380" || cfg.Redis.Password != "pw" || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}
