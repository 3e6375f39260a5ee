package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL      string `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath  string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		CookieSecure bool   `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Auth struct {
		// MissingProfileRole is the role granted to a verified identity with no
		// users row. Empty means such identities are denied.
		MissingProfileRole string `yaml:"missing_profile_role" env:"AUTH_MISSING_PROFILE_ROLE"`
		AllowRegistration  bool   `yaml:"allow_registration" env:"AUTH_ALLOW_REGISTRATION"`

		OIDC struct {
			IssuerURL    string   `yaml:"issuer_url" env:"OIDC_ISSUER_URL"`
			ClientID     string   `yaml:"client_id" env:"OIDC_CLIENT_ID"`
			ClientSecret string   `yaml:"client_secret" env:"OIDC_CLIENT_SECRET"`
			RedirectURL  string   `yaml:"redirect_url" env:"OIDC_REDIRECT_URL"`
			Scopes       []string `yaml:"scopes" env:"OIDC_SCOPES"`
		} `yaml:"oidc"`
	} `yaml:"auth"`

	Storage struct {
		Driver       string `yaml:"driver" env:"STORAGE_DRIVER"`
		Bucket       string `yaml:"bucket" env:"STORAGE_S3_BUCKET"`
		Region       string `yaml:"region" env:"STORAGE_S3_REGION"`
		Endpoint     string `yaml:"endpoint" env:"STORAGE_S3_ENDPOINT"`
		AccessKey    string `yaml:"access_key" env:"STORAGE_S3_ACCESS_KEY"`
		SecretKey    string `yaml:"secret_key" env:"STORAGE_S3_SECRET_KEY"`
		UsePathStyle bool   `yaml:"use_path_style" env:"STORAGE_S3_USE_PATH_STYLE"`
	} `yaml:"storage"`

	Redis struct {
		URL         string `yaml:"url" env:"REDIS_URL"`
		LoginLimit  int    `yaml:"login_limit" env:"REDIS_LOGIN_LIMIT"`
		LoginWindow string `yaml:"login_window" env:"REDIS_LOGIN_WINDOW"`
	} `yaml:"redis"`

	Email struct {
		Host          string `yaml:"host" env:"SMTP_HOST"`
		Port          int    `yaml:"port" env:"SMTP_PORT"`
		Username      string `yaml:"username" env:"SMTP_USERNAME"`
		Password      string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName      string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail     string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS        bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		NotifyByEmail bool   `yaml:"notify_by_email" env:"EMAIL_NOTIFICATIONS"`
	} `yaml:"email"`

	Scheduler struct {
		Enabled              bool   `yaml:"enabled" env:"SCHEDULER_ENABLED"`
		InternCompletionSpec string `yaml:"intern_completion_spec" env:"SCHEDULER_INTERN_COMPLETION_SPEC"`
		TokenCleanupSpec     string `yaml:"token_cleanup_spec" env:"SCHEDULER_TOKEN_CLEANUP_SPEC"`
	} `yaml:"scheduler"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.StoragePath = "uploads"

	// Database defaults
	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "internhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "internhub.app"

	config.Auth.MissingProfileRole = "intern"
	config.Auth.AllowRegistration = true

	config.Storage.Driver = "local"
	config.Storage.Region = "us-east-1"

	config.Redis.LoginLimit = 10
	config.Redis.LoginWindow = "1m"

	config.Email.Port = 587
	config.Email.FromName = "InternHub"

	config.Scheduler.Enabled = true
	config.Scheduler.InternCompletionSpec = "0 2 * * *"
	config.Scheduler.TokenCleanupSpec = "30 3 * * *"

	config.Seed.AdminEmail = "admin@internhub.app"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Auth.MissingProfileRole {
	case "", "admin", "hr", "tutor", "intern":
	default:
		return fmt.Errorf("invalid missing profile role: %q", config.Auth.MissingProfileRole)
	}

	switch strings.ToLower(config.Storage.Driver) {
	case "local":
		if config.Server.StoragePath == "" {
			return fmt.Errorf("storage path is required for local storage")
		}
	case "s3":
		if config.Storage.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}

	if config.Redis.URL != "" {
		if _, err := time.ParseDuration(config.Redis.LoginWindow); err != nil {
			return fmt.Errorf("invalid login rate limit window: %w", err)
		}
	}

	if config.Auth.OIDC.IssuerURL != "" && config.Auth.OIDC.ClientID == "" {
		return fmt.Errorf("OIDC client id is required when an issuer is configured")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
