// Package config loads the configuration of the backend from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/budgenv/backend/internal/auth"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// MinSecretLength is the minimum length of the token signing secret in bytes.
const MinSecretLength = 32

// Config is the configuration of the backend.
//
// Every field is read from the upper case version of its mapstructure key,
// e.g. AppEnv from APP_ENV.
type Config struct {
	AppEnv            string        `mapstructure:"app_env"`
	Port              int           `mapstructure:"port"`
	APIURL            string        `mapstructure:"api_url"`
	DBPath            string        `mapstructure:"db_path"`
	DBHost            string        `mapstructure:"db_host"`
	DBPort            int           `mapstructure:"db_port"`
	DBUser            string        `mapstructure:"db_user"`
	DBPassword        string        `mapstructure:"db_password"`
	DBName            string        `mapstructure:"db_name"`
	Secret            string        `mapstructure:"api_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	AuthBypass        bool          `mapstructure:"auth_bypass"`
	CORSAllowOrigins  string        `mapstructure:"cors_allow_origins"`
	EnablePprof       bool          `mapstructure:"enable_pprof"`
	LogFormat         string        `mapstructure:"log_format"`
	LogLevel          string        `mapstructure:"log_level"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	GinMode           string        `mapstructure:"gin_mode"`
}

var defaults = map[string]any{
	"app_env":            EnvProduction,
	"port":               8080,
	"api_url":            "http://localhost:8080",
	"db_path":            "data/budgenv.db",
	"db_host":            "",
	"db_port":            5432,
	"db_user":            "",
	"db_password":        "",
	"db_name":            "",
	"api_secret":         "",
	"token_ttl":          "168h",
	"auth_bypass":        false,
	"cors_allow_origins": "",
	"enable_pprof":       false,
	"log_format":         "",
	"log_level":          "",
	"reconcile_interval": "5m",
	"gin_mode":           "release",
}

// Load reads the configuration from the environment.
//
// It does not validate the values, call Validate for that.
func Load() (Config, error) {
	v := viper.New()

	// Keys only show up in Unmarshal when viper knows them
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	return c, nil
}

// Error lists all problems found in a configuration.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the configuration and returns an *Error listing every problem.
func (c Config) Validate() error {
	var problems []string

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		problems = append(problems, fmt.Sprintf("APP_ENV must be %q or %q, not %q", EnvDevelopment, EnvProduction, c.AppEnv))
	}

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be between 1 and 65535, not %d", c.Port))
	}

	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("API_URL must be an absolute URL, not %q", c.APIURL))
	}

	if len(c.Secret) < MinSecretLength {
		problems = append(problems, fmt.Sprintf("API_SECRET must be at least %d bytes long", MinSecretLength))
	}

	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}

	if c.AuthBypass && !auth.BypassAvailable {
		problems = append(problems, "AUTH_BYPASS is only available in builds with the devauth tag")
	}

	if c.AuthBypass && c.AppEnv == EnvProduction {
		problems = append(problems, "AUTH_BYPASS must not be enabled in production")
	}

	if c.DBHost != "" && (c.DBUser == "" || c.DBName == "") {
		problems = append(problems, "DB_USER and DB_NAME are required when DB_HOST is set")
	}

	if c.DBHost == "" && c.DBPath == "" {
		problems = append(problems, "DB_PATH must be set when DB_HOST is not")
	}

	if c.LogFormat != "" && c.LogFormat != "human" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be \"human\" or \"json\", not %q", c.LogFormat))
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
		}
	}

	if c.ReconcileInterval < 0 {
		problems = append(problems, "RECONCILE_INTERVAL must not be negative")
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}

	return nil
}

// Development reports if the backend runs in development mode.
func (c Config) Development() bool {
	return c.AppEnv == EnvDevelopment
}

// URL returns the parsed API_URL. Call it only on a validated configuration.
func (c Config) URL() *url.URL {
	u, _ := url.Parse(strings.TrimSuffix(c.APIURL, "/"))
	return u
}

// AllowOrigins returns the CORS origin patterns.
func (c Config) AllowOrigins() []string {
	return strings.Fields(c.CORSAllowOrigins)
}

// Level returns the log level. It defaults to debug in development
// and to info otherwise.
func (c Config) Level() zerolog.Level {
	if level, err := zerolog.ParseLevel(c.LogLevel); err == nil && c.LogLevel != "" {
		return level
	}

	if c.Development() {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// HumanLogs reports if logs are written for humans instead of as JSON.
func (c Config) HumanLogs() bool {
	if c.LogFormat == "" {
		return c.Development()
	}
	return c.LogFormat == "human"
}

// Postgres reports if PostgreSQL is used instead of SQLite.
func (c Config) Postgres() bool {
	return c.DBHost != ""
}

// PostgresDSN returns the DSN for the PostgreSQL database.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=prefer", c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
