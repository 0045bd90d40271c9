// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// LogConfig provides logger settings.
type LogConfig interface {
	GetEnv() string
	GetLogFile() string
}

// SessionConfig provides settings for signing and validating operator sessions.
type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetSessionCookieName() string
}

// AuthConfig provides settings needed by the auth module.
type AuthConfig interface {
	SessionConfig
	GetAdminUsername() string
	GetAdminPassword() string
	GetAdminPasswordHash() string
	GetSessionCookieSecure() bool
	GetSessionCookieSameSite() http.SameSite
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// TwilioConfig provides the telephony credential set.
type TwilioConfig interface {
	GetTwilioAccountSID() string
	GetTwilioAuthToken() string
	GetTwilioAPIKeySID() string
	GetTwilioAPIKeySecret() string
	GetTwilioTwiMLAppSID() string
	GetTwilioPhoneNumber() string
	GetTwilioRegion() string
	GetTwilioAPIBaseURL() string
	IsTwilioConfigured() bool
}

// SchedulerConfig provides settings for the asynq import queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketImports() string
	IsMinIOEnabled() bool
}

// ImportConfig provides settings for spreadsheet imports.
type ImportConfig interface {
	GetImportSynonymsFile() string
	GetImportMaxRows() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	LogFile               string
	AdminUsername         string
	AdminPassword         string
	AdminPasswordHash     string
	SessionSecret         string
	SessionTTL            time.Duration
	SessionCookieName     string
	SessionCookieSecure   bool
	SessionCookieSameSite http.SameSite
	CORSOrigins           []string
	CORSAllowCreds        bool
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioAPIKeySID       string
	TwilioAPIKeySecret    string
	TwilioTwiMLAppSID     string
	TwilioPhoneNumber     string
	TwilioRegion          string
	TwilioAPIBaseURL      string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinioBucketImports    string
	ImportSynonymsFile    string
	ImportMaxRows         int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// LogConfig implementation
func (c *Config) GetEnv() string     { return c.Env }
func (c *Config) GetLogFile() string { return c.LogFile }

// SessionConfig implementation
func (c *Config) GetSessionSecret() string     { return c.SessionSecret }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }
func (c *Config) GetSessionCookieName() string { return c.SessionCookieName }

// AuthConfig implementation
func (c *Config) GetAdminUsername() string                { return c.AdminUsername }
func (c *Config) GetAdminPassword() string                { return c.AdminPassword }
func (c *Config) GetAdminPasswordHash() string            { return c.AdminPasswordHash }
func (c *Config) GetSessionCookieSecure() bool            { return c.SessionCookieSecure }
func (c *Config) GetSessionCookieSameSite() http.SameSite { return c.SessionCookieSameSite }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// TwilioConfig implementation
func (c *Config) GetTwilioAccountSID() string   { return c.TwilioAccountSID }
func (c *Config) GetTwilioAuthToken() string    { return c.TwilioAuthToken }
func (c *Config) GetTwilioAPIKeySID() string    { return c.TwilioAPIKeySID }
func (c *Config) GetTwilioAPIKeySecret() string { return c.TwilioAPIKeySecret }
func (c *Config) GetTwilioTwiMLAppSID() string  { return c.TwilioTwiMLAppSID }
func (c *Config) GetTwilioPhoneNumber() string  { return c.TwilioPhoneNumber }
func (c *Config) GetTwilioRegion() string       { return c.TwilioRegion }
func (c *Config) GetTwilioAPIBaseURL() string   { return c.TwilioAPIBaseURL }

// IsTwilioConfigured reports whether the credentials needed to mint access tokens are present.
// The placeholder account SID shipped in example env files counts as absent.
func (c *Config) IsTwilioConfigured() bool {
	return c.TwilioAccountSID != "" &&
		c.TwilioAccountSID != "your_account_sid" &&
		c.TwilioAPIKeySID != "" &&
		c.TwilioAPIKeySecret != ""
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64    { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketImports() string { return c.MinioBucketImports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// ImportConfig implementation
func (c *Config) GetImportSynonymsFile() string { return c.ImportSynonymsFile }
func (c *Config) GetImportMaxRows() int         { return c.ImportMaxRows }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	cookieSecure := strings.EqualFold(getEnv("SESSION_COOKIE_SECURE", ""), "true")
	if getEnv("SESSION_COOKIE_SECURE", "") == "" {
		cookieSecure = strings.EqualFold(env, "production")
	}

	cfg := &Config{
		Env:                   env,
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		LogFile:               getEnv("LOG_FILE", ""),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:         getEnv("SESSION_SECRET", ""),
		SessionTTL:            mustDuration(getEnv("SESSION_TTL", "168h")),
		SessionCookieName:     getEnv("SESSION_COOKIE_NAME", "auth_token"),
		SessionCookieSecure:   cookieSecure,
		SessionCookieSameSite: parseSameSite(getEnv("SESSION_COOKIE_SAMESITE", "Lax")),
		CORSOrigins:           splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		TwilioAccountSID:      getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioAPIKeySID:       getEnv("TWILIO_API_KEY_SID", ""),
		TwilioAPIKeySecret:    getEnv("TWILIO_API_KEY_SECRET", ""),
		TwilioTwiMLAppSID:     getEnv("TWILIO_TWIML_APP_SID", ""),
		TwilioPhoneNumber:     getEnv("TWILIO_PHONE_NUMBER", ""),
		TwilioRegion:          getEnv("TWILIO_REGION", "ie1"),
		TwilioAPIBaseURL:      strings.TrimRight(getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"), "/"),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "imports"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "2")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:      mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "20971520")),
		MinioBucketImports:    getEnv("MINIO_BUCKET_IMPORTS", "lead-imports"),
		ImportSynonymsFile:    getEnv("IMPORT_SYNONYMS_FILE", ""),
		ImportMaxRows:         mustInt(getEnv("IMPORT_MAX_ROWS", "5000")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if c.ImportMaxRows < 1 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}
