package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	BillingWebhookSecret             string `mapstructure:"BILLING_WEBHOOK_SECRET"`
	GenAIAPIKey                      string `mapstructure:"GENAI_API_KEY"`
	GenAIModel                       string `mapstructure:"GENAI_MODEL"`
	RedisAddr                        string `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int    `mapstructure:"REDIS_DB"`
	AMQPURL                          string `mapstructure:"AMQP_URL"`
	SMTPHost                         string `mapstructure:"SMTP_HOST"`
	SMTPPort                         string `mapstructure:"SMTP_PORT"`
	SMTPUsername                     string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword                     string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender                       string `mapstructure:"SMTP_SENDER"`
	RevealTokenAllowance             int    `mapstructure:"REVEAL_TOKEN_ALLOWANCE"`
}

var appConfig *Config

// LoadConfig loads configuration from environment variables using Viper.
// FIREBASE_PROJECT_ID and BILLING_WEBHOOK_SECRET are required. The explicit
// credential sources are optional: when neither GOOGLE_APPLICATION_CREDENTIALS
// nor FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is set, the Firebase SDK falls back
// to Application Default Credentials at init time. The side-channel
// integrations (GenAI, Redis, AMQP, SMTP) are optional and their features are
// disabled when unset.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("GENAI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("SMTP_PORT", "2525")
	viper.SetDefault("REVEAL_TOKEN_ALLOWANCE", 3)

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("BILLING_WEBHOOK_SECRET")
	viper.BindEnv("GENAI_API_KEY")
	viper.BindEnv("GENAI_MODEL")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("REDIS_DB")
	viper.BindEnv("AMQP_URL")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("SMTP_USERNAME")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("SMTP_SENDER")
	viper.BindEnv("REVEAL_TOKEN_ALLOWANCE")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.BillingWebhookSecret == "" {
		return nil, errors.New("BILLING_WEBHOOK_SECRET is required")
	}
	if cfg.RevealTokenAllowance < 0 {
		return nil, errors.New("REVEAL_TOKEN_ALLOWANCE cannot be negative")
	}

	appConfig = &cfg
	return appConfig, nil
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
