package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Argon2     Argon2Config
	Activation ActivationConfig
	Mail       MailConfig
	OAuth      OAuthConfig
	Secure     SecureConfig
	CORS       CORSConfig
	Worker     WorkerConfig
	APIVersion string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig points at Postgres. An empty URL runs against the in-memory store.
type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
	MaxConns    int32
}

// RedisConfig enables the asynq queue when URL is set.
type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	PrivateKeyPath string // empty generates an ephemeral key
	Issuer         string
	Audience       string
	AccessExpiry   int64 // seconds
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

type ActivationConfig struct {
	BaseURL string
}

type MailConfig struct {
	RelayURL  string // empty logs messages instead of sending them
	From      string
	AuthToken string
}

type OAuthConfig struct {
	CallbackBaseURL    string
	RedirectURL        string
	SessionSecret      string
	GitHubClientID     string
	GitHubClientSecret string
}

type SecureConfig struct {
	IsDevelopment bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
			MaxConns:    v.GetInt32("DATABASE_MAX_CONNS"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
			Issuer:         v.GetString("JWT_ISSUER"),
			Audience:       v.GetString("JWT_AUDIENCE"),
			AccessExpiry:   v.GetInt64("JWT_ACCESS_EXPIRY"),
		},
		Argon2: Argon2Config{
			Memory:      v.GetUint32("ARGON2_MEMORY"),
			Iterations:  v.GetUint32("ARGON2_ITERATIONS"),
			Parallelism: uint8(v.GetUint("ARGON2_PARALLELISM")),
		},
		Activation: ActivationConfig{
			BaseURL: v.GetString("ACTIVATION_BASE_URL"),
		},
		Mail: MailConfig{
			RelayURL:  v.GetString("MAIL_RELAY_URL"),
			From:      v.GetString("MAIL_FROM"),
			AuthToken: v.GetString("MAIL_AUTH_TOKEN"),
		},
		OAuth: OAuthConfig{
			CallbackBaseURL:    v.GetString("OAUTH_CALLBACK_BASE_URL"),
			RedirectURL:        v.GetString("OAUTH_REDIRECT_URL"),
			SessionSecret:      v.GetString("OAUTH_SESSION_SECRET"),
			GitHubClientID:     v.GetString("GITHUB_CLIENT_ID"),
			GitHubClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
		},
		Secure: SecureConfig{
			IsDevelopment: v.GetBool("SECURE_DEVELOPMENT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
		APIVersion: v.GetString("API_VERSION"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("DATABASE_MAX_CONNS", 10)
	v.SetDefault("JWT_ISSUER", "accountd")
	v.SetDefault("JWT_AUDIENCE", "accountd")
	v.SetDefault("JWT_ACCESS_EXPIRY", 3600)
	v.SetDefault("ARGON2_MEMORY", 64*1024)
	v.SetDefault("ARGON2_ITERATIONS", 3)
	v.SetDefault("ARGON2_PARALLELISM", 2)
	v.SetDefault("ACTIVATION_BASE_URL", "http://localhost:8080/accounts/activate")
	v.SetDefault("MAIL_FROM", "noreply@localhost")
	v.SetDefault("OAUTH_CALLBACK_BASE_URL", "http://localhost:8080")
	v.SetDefault("WORKER_CONCURRENCY", 5)
	v.SetDefault("API_VERSION", "1")
}

func (c *Config) validate() error {
	if c.JWT.AccessExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive")
	}
	if c.Argon2.Memory == 0 || c.Argon2.Iterations == 0 || c.Argon2.Parallelism == 0 {
		return fmt.Errorf("argon2 parameters must be positive")
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if c.OAuth.GitHubClientID != "" && c.OAuth.SessionSecret == "" {
		return fmt.Errorf("OAUTH_SESSION_SECRET is required when GitHub sign-in is enabled")
	}
	return nil
}

// AccessTTL is the lifetime of issued access tokens.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessExpiry) * time.Second
}

// GitHubEnabled reports whether federated GitHub sign-in is configured.
func (c *Config) GitHubEnabled() bool {
	return c.OAuth.GitHubClientID != "" && c.OAuth.GitHubClientSecret != ""
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
