package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by TRIAGE_BACKEND and APPOINTMENT_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds application configuration
type Config struct {
	Env       string
	LogLevel  string
	LogFormat string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	StoreTimeout  time.Duration

	// Triage desk
	TriageBackend    string
	TriageMinUrgency int
	TriageMaxUrgency int

	// Collaborators
	AppointmentBackend string
	NoteHistoryLimit   int

	// Export
	ExportDir    string
	ExportBucket string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		StoreTimeout:  getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),

		TriageBackend:    strings.ToLower(strings.TrimSpace(getEnv("TRIAGE_BACKEND", BackendMemory))),
		TriageMinUrgency: getEnvAsInt("TRIAGE_MIN_URGENCY", 1),
		TriageMaxUrgency: getEnvAsInt("TRIAGE_MAX_URGENCY", 5),

		AppointmentBackend: strings.ToLower(strings.TrimSpace(getEnv("APPOINTMENT_BACKEND", BackendMemory))),
		NoteHistoryLimit:   getEnvAsInt("NOTE_HISTORY_LIMIT", 100),

		ExportDir:    getEnv("EXPORT_DIR", ""),
		ExportBucket: getEnv("EXPORT_BUCKET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// Validate reports configuration that cannot produce a working desk.
func (c *Config) Validate() error {
	var errs []error
	if c.TriageMinUrgency > c.TriageMaxUrgency {
		errs = append(errs, fmt.Errorf("config: TRIAGE_MIN_URGENCY %d exceeds TRIAGE_MAX_URGENCY %d", c.TriageMinUrgency, c.TriageMaxUrgency))
	}
	switch c.TriageBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("config: unknown TRIAGE_BACKEND %q", c.TriageBackend))
	}
	switch c.AppointmentBackend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("config: unknown APPOINTMENT_BACKEND %q", c.AppointmentBackend))
	}
	if c.TriageBackend == BackendPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("config: DATABASE_URL is required for the postgres triage backend"))
	}
	if c.NoteHistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("config: NOTE_HISTORY_LIMIT must not be negative, got %d", c.NoteHistoryLimit))
	}
	return errors.Join(errs...)
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.TriageBackend == BackendRedis || c.AppointmentBackend == BackendRedis
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
