// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Storage
	DataBackend  string
	SQLiteDBPath string
	PostgresURL  string

	// AMQP; an empty URL disables ledger events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Timezone defines "today" for date checks.
	Timezone string

	// Google Sheets report export
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	LogLevel string
}

var defaults = map[string]any{
	"PORT":                        "8081",
	"CORS_ALLOWED_ORIGINS":        "",
	"RATE_LIMIT_PER_MINUTE":       60,
	"DATA_BACKEND":                BackendSQLite,
	"SQLITE_DB_PATH":              "./data/finman.db",
	"POSTGRES_URL":                "",
	"AMQP_URL":                    "",
	"AMQP_EXCHANGE":               "finman",
	"AMQP_QUEUE":                  "ledger_events",
	"JWT_SECRET":                  "",
	"TOKEN_TTL":                   "24h",
	"TIMEZONE":                    "UTC",
	"GOOGLE_SPREADSHEET_ID":       "",
	"GOOGLE_SERVICE_ACCOUNT_FILE": "",
	"GOOGLE_SERVICE_ACCOUNT_JSON": "",
	"LOG_LEVEL":                   "info",
}

// Load reads the configuration from environment variables, falling back to
// defaults. A .env file, when wanted, must be loaded into the environment
// beforehand.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:               v.GetString("PORT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),

		DataBackend:  strings.ToLower(strings.TrimSpace(v.GetString("DATA_BACKEND"))),
		SQLiteDBPath: v.GetString("SQLITE_DB_PATH"),
		PostgresURL:  v.GetString("POSTGRES_URL"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  v.GetDuration("TOKEN_TTL"),

		Timezone: v.GetString("TIMEZONE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings every process needs and returns all problems
// at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresURL) == "" {
			errors = append(errors, "POSTGRES_URL is required when using postgres backend")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.DataBackend, BackendSQLite, BackendPostgres, BackendMemory))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateServer adds the checks only the API server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("configuration validation failed:\n- JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// ValidateWorker adds the checks only the report worker needs.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required by the worker")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided with GOOGLE_SPREADSHEET_ID")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock returns the current time in the configured timezone.
func (c *Config) Clock() func() time.Time {
	loc := c.Location()
	return func() time.Time { return time.Now().In(loc) }
}
