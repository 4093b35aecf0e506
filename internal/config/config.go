// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port       string `mapstructure:"PORT"`
	Env        string `mapstructure:"APP_ENV"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	RedisURL   string `mapstructure:"REDIS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Identity provider (Clerk-style): tokens it issues and the webhook it signs.
	IdentityBaseURL   string `mapstructure:"IDENTITY_BASE_URL"`
	IdentityAPIKey    string `mapstructure:"IDENTITY_API_KEY"`
	IdentityJWTSecret string `mapstructure:"IDENTITY_JWT_SECRET"`
	IdentityIssuer    string `mapstructure:"IDENTITY_ISSUER"`
	IdentityAudience  string `mapstructure:"IDENTITY_AUDIENCE"`
	WebhookSecret     string `mapstructure:"IDENTITY_WEBHOOK_SECRET"`

	// Generative text/image API.
	GeneratorBaseURL string `mapstructure:"GENERATOR_BASE_URL"`
	GeneratorAPIKey  string `mapstructure:"GENERATOR_API_KEY"`

	// Blob store / image CDN.
	BlobStoreBaseURL string `mapstructure:"BLOBSTORE_BASE_URL"`
	BlobStoreAPIKey  string `mapstructure:"BLOBSTORE_API_KEY"`
	BlobStoreFolder  string `mapstructure:"BLOBSTORE_FOLDER"`

	// FreeUsageLimit is the number of free-tier generations per account.
	FreeUsageLimit int `mapstructure:"FREE_USAGE_LIMIT"`

	// Tracing
	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config.
	// The config file is optional; env vars and defaults are enough.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			log.Printf("No profile-specific config 'config.%s.yml' found, using base config and env", env)
		}
	}

	viper.SetDefault("PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "quickforge")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("IDENTITY_BASE_URL", "https://api.identity.local")
	viper.SetDefault("IDENTITY_JWT_SECRET", "dev-identity-secret-change-in-production")
	viper.SetDefault("IDENTITY_ISSUER", "quickforge-identity")
	viper.SetDefault("IDENTITY_AUDIENCE", "quickforge-client")
	viper.SetDefault("GENERATOR_BASE_URL", "https://api.generator.local")
	viper.SetDefault("BLOBSTORE_BASE_URL", "https://api.blobstore.local")
	viper.SetDefault("BLOBSTORE_FOLDER", "quickforge/images")
	viper.SetDefault("FREE_USAGE_LIMIT", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 0.1)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.IdentityJWTSecret == "" {
		return errors.New("IDENTITY_JWT_SECRET is required")
	}
	if c.FreeUsageLimit <= 0 {
		return errors.New("FREE_USAGE_LIMIT must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.IdentityJWTSecret == "dev-identity-secret-change-in-production" {
			return errors.New("IDENTITY_JWT_SECRET must be changed from the default value in production")
		}
		if len(c.IdentityJWTSecret) < 32 {
			return errors.New("IDENTITY_JWT_SECRET must be at least 32 characters in production")
		}
		if c.GeneratorAPIKey == "" {
			return errors.New("GENERATOR_API_KEY is required in production")
		}
		if c.WebhookSecret == "" {
			return errors.New("IDENTITY_WEBHOOK_SECRET is required in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}
