package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Goal engine
	Timezone           string        // IANA name; the server's local time is authoritative for periods
	WeekStart          time.Weekday  // First day of a weekly period
	AggregationTimeout time.Duration // Upper bound for a single activity log query
	RefreshInterval    time.Duration // Client scheduler tick
	GoalNotifications  bool          // Email when a goal is reached

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, optional: meal photos are disabled without a bucket)
	S3Region             string
	S3Bucket             string
	S3AccessKey          string
	S3SecretKey          string
	S3Endpoint           string
	S3PresignExpiry      time.Duration
	MaxPhotoUploadMemory int64
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "FitFuel"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/fitfuel.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Goal engine
		Timezone:           envString("APP_TIMEZONE", "Local"),
		WeekStart:          envWeekday("WEEK_START", time.Sunday),
		AggregationTimeout: envDuration("AGGREGATION_TIMEOUT", 5*time.Second),
		RefreshInterval:    envDuration("REFRESH_INTERVAL", time.Minute),
		GoalNotifications:  envBool("GOAL_NOTIFICATIONS", true),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:             envString("S3_REGION", "us-east-1"),
		S3Bucket:             envString("S3_BUCKET", ""),
		S3AccessKey:          envString("S3_ACCESS_KEY", ""),
		S3SecretKey:          envString("S3_SECRET_KEY", ""),
		S3Endpoint:           envString("S3_ENDPOINT", ""),
		S3PresignExpiry:      envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),
		MaxPhotoUploadMemory: envInt64("MAX_PHOTO_UPLOAD_MEMORY", 8<<20),
	}

	if _, err := cfg.Location(); err != nil {
		slog.Error("config invalid timezone", "key", "APP_TIMEZONE", "value", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to use log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.GoalNotifications && cfg.ResendAPIKey == "" {
		slog.Error("production deployment with goal notifications requires RESEND_API_KEY",
			"hint", "set GOAL_NOTIFICATIONS=false or APP_ENV=development")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envWeekday(key string, def time.Weekday) time.Weekday {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, ok := ParseWeekday(v)
	if !ok {
		slog.Warn("config invalid weekday, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// ParseWeekday accepts full or three-letter English day names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return time.Sunday, false
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves the configured timezone. "Local" and "" map to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// PhotosEnabled reports whether meal photo uploads have a storage backend.
func (c *Config) PhotosEnabled() bool {
	return c.S3Bucket != ""
}
