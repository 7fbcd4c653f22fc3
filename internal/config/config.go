package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSecretKey is only acceptable outside prod.
const DefaultSecretKey = "it's a secret"

type Config struct {
	// Env is "dev" (default) or "prod". Prod refuses DefaultSecretKey.
	Env  string
	Addr string

	// DatabasePath is the SQLite file. DATABASE_URL is honoured as well.
	DatabasePath string
	SecretKey    string

	LogLevel  string
	LogFormat string

	// AuthRatePerMinute limits POST /login and /signup per client IP. 0 disables it.
	AuthRatePerMinute int
	AuthRateBurst     int

	// TrustProxy makes the limiter key on X-Forwarded-For.
	TrustProxy bool

	SecureCookies bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from .env, the environment and an optional warbler.yaml.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("env", "dev")
	v.SetDefault("addr", ":5000")
	v.SetDefault("database_path", "warbler.db")
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("auth_rate_per_minute", 10)
	v.SetDefault("auth_rate_burst", 5)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("read_timeout", "10s")
	v.SetDefault("write_timeout", "10s")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetEnvPrefix("WARBLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by earlier deployments.
	_ = v.BindEnv("database_path", "WARBLER_DATABASE_PATH", "DATABASE_URL")
	_ = v.BindEnv("secret_key", "WARBLER_SECRET_KEY", "SECRET_KEY")

	v.SetConfigName("warbler")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	cfg := Config{
		Env:               v.GetString("env"),
		Addr:              v.GetString("addr"),
		DatabasePath:      strings.TrimPrefix(v.GetString("database_path"), "sqlite://"),
		SecretKey:         v.GetString("secret_key"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		AuthRatePerMinute: v.GetInt("auth_rate_per_minute"),
		AuthRateBurst:     v.GetInt("auth_rate_burst"),
		TrustProxy:        v.GetBool("trust_proxy"),
		SecureCookies:     v.GetBool("secure_cookies"),
		ReadTimeout:       v.GetDuration("read_timeout"),
		WriteTimeout:      v.GetDuration("write_timeout"),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
	}
	if cfg.Env == "prod" && cfg.SecretKey == DefaultSecretKey {
		return Config{}, errors.New("SECRET_KEY must be set in prod")
	}
	return cfg, nil
}
