package config

import (
	"net/http"
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leadcall")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD", "pw")
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "HTTP_ADDR", "SESSION_TTL", "SESSION_COOKIE_SECURE", "SESSION_COOKIE_SAMESITE",
		"CORS_ORIGINS", "TWILIO_REGION", "TWILIO_API_BASE_URL", "TWILIO_ACCOUNT_SID", "MINIO_ENDPOINT",
		"MINIO_BUCKET_IMPORTS", "IMPORT_MAX_ROWS", "ASYNQ_QUEUE", "ASYNQ_CONCURRENCY")
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults: %q %q", cfg.HTTPAddr, cfg.Env)
	}
	if cfg.SessionTTL != 168*time.Hour || cfg.SessionCookieSecure || cfg.SessionCookieSameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected session defaults: %v %v %v", cfg.SessionTTL, cfg.SessionCookieSecure, cfg.SessionCookieSameSite)
	}
	if cfg.TwilioRegion != "ie1" || cfg.TwilioAPIBaseURL != "https://api.twilio.com" || cfg.IsTwilioConfigured() {
		t.Fatalf("unexpected twilio defaults: %+v", cfg)
	}
	if cfg.IsMinIOEnabled() || cfg.MinioBucketImports != "lead-imports" || cfg.ImportMaxRows != 5000 {
		t.Fatalf("unexpected import defaults: %+v", cfg)
	}
	if cfg.AsynqQueueName != "imports" || cfg.AsynqConcurrency != 2 {
		t.Fatalf("unexpected queue defaults: %q %d", cfg.AsynqQueueName, cfg.AsynqConcurrency)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSettings(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"database", "DATABASE_URL"},
		{"session secret", "SESSION_SECRET"},
		{"admin password", "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "ADMIN_PASSWORD_HASH")
			setRequired(t)
			t.Setenv(tt.unset, "")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error without %s", tt.unset)
			}
		})
	}
}

func TestLoadProductionCookieAndOverrides(t *testing.T) {
	unsetEnv(t, "SESSION_COOKIE_SECURE")
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_COOKIE_SAMESITE", "strict")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TWILIO_API_BASE_URL", "http://localhost:9999/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.SessionCookieSecure || cfg.SessionCookieSameSite != http.SameSiteStrictMode {
		t.Fatalf("expected secure strict cookie, got %v %v", cfg.SessionCookieSecure, cfg.SessionCookieSameSite)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.GetTwilioAPIBaseURL() != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.GetTwilioAPIBaseURL())
	}
}

func TestIsTwilioConfiguredRejectsPlaceholder(t *testing.T) {
	cfg := &Config{TwilioAccountSID: "your_account_sid", TwilioAPIKeySID: "SK", TwilioAPIKeySecret: "x"}
	if cfg.IsTwilioConfigured() {
		t.Fatal("placeholder account sid must count as not configured")
	}
	cfg.TwilioAccountSID = "AC123"
	if !cfg.IsTwilioConfigured() {
		t.Fatal("expected configured")
	}
}

func TestInvalidNumbersFailValidation(t *testing.T) {
	setRequired(t)
	t.Setenv("IMPORT_MAX_ROWS", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric IMPORT_MAX_ROWS")
	}
	t.Setenv("IMPORT_MAX_ROWS", "10")
	t.Setenv("SESSION_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable SESSION_TTL")
	}
}
