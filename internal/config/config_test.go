package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey     = "test-api-key"
	testFloodURL   = "https://ml.example.test/v4/deployments/flood/predictions"
	testQuakeURL   = "https://ml.example.test/v4/deployments/quake/predictions"
	defaultIAMURL  = "https://iam.cloud.ibm.com/identity/token"
	defaultAddress = ":8080"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultAddress, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "resources_data.csv", cfg.StockFile)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, defaultIAMURL, cfg.WatsonIAMURL)
	assert.Equal(t, 15*time.Second, cfg.WatsonTimeout)
	assert.False(t, cfg.PredictionEnabled)
	assert.Empty(t, cfg.WatsonAPIKey)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "stock-allocations", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STOCK_FILE", "/data/stock.csv")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("WATSON_API_KEY", testAPIKey)
	t.Setenv("WATSON_IAM_URL", "https://iam.example.test/token")
	t.Setenv("WATSON_FLOOD_ENDPOINT", testFloodURL)
	t.Setenv("WATSON_EARTHQUAKE_ENDPOINT", testQuakeURL)
	t.Setenv("WATSON_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-allocations")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/stock.csv", cfg.StockFile)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.PredictionEnabled)
	assert.Equal(t, testAPIKey, cfg.WatsonAPIKey)
	assert.Equal(t, "https://iam.example.test/token", cfg.WatsonIAMURL)
	assert.Equal(t, testFloodURL, cfg.WatsonFloodEndpoint)
	assert.Equal(t, testQuakeURL, cfg.WatsonEarthquakeEndpoint)
	assert.Equal(t, 3*time.Second, cfg.WatsonTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-allocations", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL", "-5m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestLoad_InvalidWatsonTimeout(t *testing.T) {
	t.Setenv("WATSON_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATSON_TIMEOUT")
}

func TestLoad_PredictionEnabledWithoutKey(t *testing.T) {
	t.Setenv("PREDICTION_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATSON_API_KEY")
}

func TestLoad_PredictionRequiresEndpoints(t *testing.T) {
	t.Setenv("WATSON_API_KEY", testAPIKey)
	t.Setenv("WATSON_FLOOD_ENDPOINT", testFloodURL)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATSON_EARTHQUAKE_ENDPOINT")
}

func TestLoad_PredictionExplicitlyDisabled(t *testing.T) {
	t.Setenv("WATSON_API_KEY", testAPIKey)
	t.Setenv("PREDICTION_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.PredictionEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
