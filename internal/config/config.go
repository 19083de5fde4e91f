package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Stock catalog backing file.
	StockFile string

	// Session store.
	SessionTTL time.Duration

	// Hosted scoring deployments (IBM Watson Machine Learning).
	WatsonAPIKey             string
	WatsonIAMURL             string
	WatsonFloodEndpoint      string
	WatsonEarthquakeEndpoint string
	WatsonTimeout            time.Duration
	PredictionEnabled        bool

	// Allocation event publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sessionTTL, err := parsePositiveDuration("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}

	watsonTimeout, err := parsePositiveDuration("WATSON_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("WATSON_API_KEY")
	predictionEnabled := apiKey != ""
	if v := os.Getenv("PREDICTION_ENABLED"); v != "" {
		predictionEnabled = v == "true"
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := brokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StockFile:  sharedcfg.EnvOrDefault("STOCK_FILE", "resources_data.csv"),
		SessionTTL: sessionTTL,

		WatsonAPIKey:             apiKey,
		WatsonIAMURL:             sharedcfg.EnvOrDefault("WATSON_IAM_URL", "https://iam.cloud.ibm.com/identity/token"),
		WatsonFloodEndpoint:      os.Getenv("WATSON_FLOOD_ENDPOINT"),
		WatsonEarthquakeEndpoint: os.Getenv("WATSON_EARTHQUAKE_ENDPOINT"),
		WatsonTimeout:            watsonTimeout,
		PredictionEnabled:        predictionEnabled,

		KafkaBrokers: sharedcfg.ParseBrokers(brokers),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "stock-allocations"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.StockFile == "" {
		return nil, errors.New("STOCK_FILE is required")
	}
	if cfg.PredictionEnabled {
		if cfg.WatsonAPIKey == "" {
			return nil, errors.New("PREDICTION_ENABLED is true but WATSON_API_KEY is not set")
		}
		if cfg.WatsonFloodEndpoint == "" || cfg.WatsonEarthquakeEndpoint == "" {
			return nil, errors.New("WATSON_FLOOD_ENDPOINT and WATSON_EARTHQUAKE_ENDPOINT are required when predictions are enabled")
		}
	}
	if cfg.KafkaEnabled {
		if brokers == "" || len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
