// Package config loads and validates client configuration from env and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds configuration for the client binaries, loaded from the
// environment.
type Config struct {
	// APIBaseURL is the Codgoo API root.
	APIBaseURL string `mapstructure:"CODGOO_API_BASE_URL"`
	// Locale is the Accept-Language value sent on every request.
	Locale string `mapstructure:"CODGOO_LOCALE"`
	// HTTPTimeout is the transport timeout (e.g. "30s").
	HTTPTimeout string `mapstructure:"CODGOO_HTTP_TIMEOUT"`
	// SessionSensitivePaths is a comma-separated list of path fragments
	// where a 401 forces a logout. Empty means the stock list.
	SessionSensitivePaths string `mapstructure:"CODGOO_SESSION_SENSITIVE_PATHS"`
	// BestEffortPaths is a comma-separated list of path fragments where a
	// 401 never forces a logout. Empty means the stock list.
	BestEffortPaths string `mapstructure:"CODGOO_BEST_EFFORT_PATHS"`
	// SessionFile is the path where the CLI persists the session; empty
	// means the default under the user config dir.
	SessionFile string `mapstructure:"CODGOO_SESSION_FILE"`
	// SessionScope keys the session row/entry for the Redis and Postgres
	// credential stores.
	SessionScope string `mapstructure:"CODGOO_SESSION_SCOPE"`
	// DatabaseURL is the Postgres DSN for the Postgres credential store;
	// empty disables it.
	DatabaseURL string `mapstructure:"CODGOO_DATABASE_URL"`
	// RedisURL is the Redis URL for the Redis credential store; empty
	// disables it.
	RedisURL string `mapstructure:"CODGOO_REDIS_URL"`
	// OTLPEndpoint enables telemetry export when set (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"CODGOO_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"CODGOO_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"CODGOO_APP_ENV"`

	// Devserver-only settings.
	// DevAddr is the dev stub server listen address.
	DevAddr string `mapstructure:"CODGOO_DEV_ADDR"`
	// DevJWTSecret signs the dev stub's HS256 tokens. The default value is
	// rejected when Env is production.
	DevJWTSecret string `mapstructure:"CODGOO_DEV_JWT_SECRET"`
	// DevAccessTTL is the dev stub access token lifetime (e.g. "1h").
	DevAccessTTL string `mapstructure:"CODGOO_DEV_ACCESS_TTL"`
	// DevRefreshTTL is the dev stub refresh token lifetime (e.g. "720h").
	DevRefreshTTL string `mapstructure:"CODGOO_DEV_REFRESH_TTL"`
	// BcryptCost is the dev stub's bcrypt cost factor (4–31).
	BcryptCost int `mapstructure:"CODGOO_BCRYPT_COST"`
	// DevAttendOpen opens the dev stub's attendance window; when false the
	// attendance endpoints return 401 (the best-effort scenario).
	DevAttendOpen bool `mapstructure:"CODGOO_DEV_ATTEND_OPEN"`
}

const defaultDevSecret = "codgoo-dev-secret"

// Load reads .env (if present), then builds and validates Config from the
// environment. Missing .env is ignored; env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("CODGOO_API_BASE_URL", "https://back.codgoo.com/codgoo/public/api")
	v.SetDefault("CODGOO_LOCALE", "en")
	v.SetDefault("CODGOO_HTTP_TIMEOUT", "30s")
	v.SetDefault("CODGOO_SESSION_SENSITIVE_PATHS", "")
	v.SetDefault("CODGOO_BEST_EFFORT_PATHS", "")
	v.SetDefault("CODGOO_SESSION_FILE", "")
	v.SetDefault("CODGOO_SESSION_SCOPE", "default")
	v.SetDefault("CODGOO_DATABASE_URL", "")
	v.SetDefault("CODGOO_REDIS_URL", "")
	v.SetDefault("CODGOO_OTLP_ENDPOINT", "")
	v.SetDefault("CODGOO_OTLP_INSECURE", false)
	v.SetDefault("CODGOO_APP_ENV", "")
	v.SetDefault("CODGOO_DEV_ADDR", ":8089")
	v.SetDefault("CODGOO_DEV_JWT_SECRET", defaultDevSecret)
	v.SetDefault("CODGOO_DEV_ACCESS_TTL", "1h")
	v.SetDefault("CODGOO_DEV_REFRESH_TTL", "720h")
	v.SetDefault("CODGOO_BCRYPT_COST", 12)
	v.SetDefault("CODGOO_DEV_ATTEND_OPEN", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, errors.New("config: CODGOO_API_BASE_URL must be set")
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: CODGOO_BCRYPT_COST must be between 4 and 31")
	}
	if cfg.Env == "production" && cfg.DevJWTSecret == defaultDevSecret {
		return nil, errors.New("config: CODGOO_DEV_JWT_SECRET must be overridden when CODGOO_APP_ENV=production")
	}

	return &cfg, nil
}

// Timeout parses HTTPTimeout as a time.Duration. Returns 30s if unset or
// invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AccessTTL parses DevAccessTTL. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.DevAccessTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RefreshTTL parses DevRefreshTTL. Returns 720h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.DevRefreshTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// SessionSensitiveList returns the configured session-sensitive path
// fragments, or nil when the stock list should apply.
func (c *Config) SessionSensitiveList() []string {
	return splitList(c.SessionSensitivePaths)
}

// BestEffortList returns the configured best-effort path fragments, or nil
// when the stock list should apply.
func (c *Config) BestEffortList() []string {
	return splitList(c.BestEffortPaths)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
