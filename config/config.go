package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names recognized by the service. The test-domain bypass is only
// honored outside production.
const (
	EnvProduction  = "production"
	EnvStaging     = "staging"
	EnvDevelopment = "development"
)

// ServerConfig holds all configuration for the service.
// Tags use mapstructure for Viper unmarshalling and env variable binding.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// One-time-code store. Backend is one of "mongo", "redis", "memory".
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDBName    string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`

	// Challenge parameters.
	CodeLength     int `mapstructure:"CODE_LENGTH"`
	CodeTTLSeconds int `mapstructure:"CODE_TTL_SECONDS"`

	// Outbound mail. SenderAddress must be pre-verified with the mail relay.
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	SenderAddress string `mapstructure:"SENDER_ADDRESS"`

	// End-to-end test bypass: emails with this suffix get a fixed code and no
	// outbound mail. Empty suffix disables the bypass entirely.
	TestEmailSuffix string `mapstructure:"TEST_EMAIL_SUFFIX"`
	TestBypassCode  string `mapstructure:"TEST_BYPASS_CODE"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// CodeTTL returns the configured one-time-code lifetime.
func (c *ServerConfig) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLSeconds) * time.Second
}

// TestBypassEnabled reports whether the test-domain bypass may trigger. It is
// hard-gated off in production regardless of the configured suffix.
func (c *ServerConfig) TestBypassEnabled() bool {
	return c.Environment != EnvProduction && c.TestEmailSuffix != ""
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/passwordless/")
	v.AddConfigPath("$HOME/.passwordless")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("STORAGE_BACKEND", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/passwordless_dev")
	v.SetDefault("MONGO_DB_NAME", "passwordless_dev")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CODE_LENGTH", 6)
	v.SetDefault("CODE_TTL_SECONDS", 300) // 5 minutes
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SENDER_ADDRESS", "yo@baliciaga.com")
	v.SetDefault("TEST_BYPASS_CODE", "123456")
	v.SetDefault("OTEL_SERVICE_NAME", "passwordless-auth")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on defaults and env vars.
		// Anything else (permissions, malformed yaml) is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
