package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Stage       string
	Version     string
	Function    FunctionConfig
	AI          AIConfig
	HTTP        HTTPConfig
	Log         LogConfig
}

// FunctionConfig describes the deployed function
type FunctionConfig struct {
	Name   string
	Region string
}

// AIConfig holds the AI model configuration
type AIConfig struct {
	ModelID     string
	Region      string
	Timeout     time.Duration
	Temperature float32
}

// HTTPConfig holds outbound request configuration
type HTTPConfig struct {
	RequestTimeout time.Duration
	FetchURL       string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("STAGE", "dev")
	viper.SetDefault("APP_VERSION", "2.0.0")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_LAMBDA_FUNCTION_NAME", "api-function")
	viper.SetDefault("BEDROCK_MODEL_ID", "amazon.nova-lite-v1:0")
	viper.SetDefault("AI_TIMEOUT", 30)
	viper.SetDefault("AI_TEMPERATURE", 0.7)
	viper.SetDefault("REQUEST_TIMEOUT", 10)
	viper.SetDefault("FETCH_URL", "https://httpbin.org/json")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	region := viper.GetString("AWS_REGION")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Stage:       viper.GetString("STAGE"),
		Version:     viper.GetString("APP_VERSION"),
		Function: FunctionConfig{
			Name:   viper.GetString("AWS_LAMBDA_FUNCTION_NAME"),
			Region: region,
		},
		AI: AIConfig{
			ModelID:     viper.GetString("BEDROCK_MODEL_ID"),
			Region:      region,
			Timeout:     seconds(viper.GetInt("AI_TIMEOUT")),
			Temperature: float32(viper.GetFloat64("AI_TEMPERATURE")),
		},
		HTTP: HTTPConfig{
			RequestTimeout: seconds(viper.GetInt("REQUEST_TIMEOUT")),
			FetchURL:       viper.GetString("FETCH_URL"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return config, nil
}

func seconds(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Second
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
