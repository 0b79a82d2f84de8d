package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration: configs/config.yaml overlaid by
// .env and then by the process environment
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Studio   StudioConfig   `yaml:"studio"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port      string `yaml:"port" env:"SERVER_PORT"`
	Mode      string `yaml:"mode" env:"SERVER_MODE"`
	PublicURL string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
}

// DatabaseConfig describes the Postgres pool. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL             string `yaml:"url" env:"DATABASE_URL"`
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	Schema          string `yaml:"schema" env:"DB_SCHEMA"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// JWTConfig signs the session access tokens
type JWTConfig struct {
	Secret                 string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
	Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
}

// SessionConfig names the session cookies and the pages the middleware redirects to
type SessionConfig struct {
	CookiePrefix string   `yaml:"cookie_prefix" env:"SESSION_COOKIE_PREFIX"`
	CookieDomain string   `yaml:"cookie_domain" env:"SESSION_COOKIE_DOMAIN"`
	Secure       bool     `yaml:"secure" env:"SESSION_COOKIE_SECURE"`
	LoginPath    string   `yaml:"login_path" env:"SESSION_LOGIN_PATH"`
	ErrorPath    string   `yaml:"error_path" env:"SESSION_ERROR_PATH"`
	PublicPaths  []string `yaml:"public_paths" env:"SESSION_PUBLIC_PATHS"`
}

// RedisConfig backs the view cache
type RedisConfig struct {
	URL     string `yaml:"url" env:"REDIS_URL"`
	ViewTTL string `yaml:"view_ttl" env:"REDIS_VIEW_TTL"`
}

// SMTPConfig delivers the confirmation, magic link and recovery emails
type SMTPConfig struct {
	Host      string `yaml:"host" env:"SMTP_HOST"`
	Port      int    `yaml:"port" env:"SMTP_PORT"`
	Username  string `yaml:"username" env:"SMTP_USERNAME"`
	Password  string `yaml:"password" env:"SMTP_PASSWORD"`
	FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
	FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
}

// StudioConfig holds studio-wide settings
type StudioConfig struct {
	Name     string `yaml:"name" env:"STUDIO_NAME"`
	TimeZone string `yaml:"time_zone" env:"STUDIO_TIME_ZONE"`
}

// LoggingConfig selects level and json/text output
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// LoadConfig builds the configuration. A missing config file or .env file is
// not an error; the environment always has the last word.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	file, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server = ServerConfig{Port: "8080", Mode: "development", PublicURL: "http://localhost:8080"}

	cfg.Database = DatabaseConfig{
		Host:            "localhost",
		Port:            "5432",
		User:            "postgres",
		Password:        "postgres",
		DBName:          "dancestudio",
		SSLMode:         "disable",
		Schema:          "public",
		MaxIdleConns:    2,
		MaxOpenConns:    20,
		ConnMaxLifetime: "1h",
	}

	cfg.JWT = JWTConfig{AccessTokenExpiration: "1h", RefreshTokenExpiration: "720h", Issuer: "dancestudio"}

	cfg.Session = SessionConfig{
		CookiePrefix: "sb-studio-",
		LoginPath:    "/login",
		ErrorPath:    "/auth/auth-code-error",
	}

	cfg.Redis = RedisConfig{URL: "redis://localhost:6379/0", ViewTTL: "10m"}
	cfg.SMTP = SMTPConfig{Port: 587, FromName: "Dance Studio"}
	cfg.Studio = StudioConfig{Name: "Dance Studio", TimeZone: "Asia/Seoul"}
	cfg.Logging = LoggingConfig{Level: "info", Format: "json"}
}

func (c *Config) validate() error {
	if c.Database.URL == "" && c.Database.Host == "" {
		return errors.New("database url or host is required")
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required")
	}

	for name, value := range map[string]string{
		"JWT access token expiration":  c.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": c.JWT.RefreshTokenExpiration,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	for _, p := range append([]string{c.Session.LoginPath, c.Session.ErrorPath}, c.Session.PublicPaths...) {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("session path %q must be absolute", p)
		}
	}

	if _, err := time.LoadLocation(c.Studio.TimeZone); err != nil {
		return fmt.Errorf("invalid studio time zone: %w", err)
	}
	return nil
}

// GetPostgresConnectionString returns the pool DSN
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

// StudioLocation returns the studio time zone. validate has already loaded it once.
func (c *Config) StudioLocation() *time.Location {
	loc, err := time.LoadLocation(c.Studio.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
