package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8080/data", cfg.DataBaseURL)
	assert.Equal(t, "aew_tracks_{year}_interactive.json", cfg.DataPathTemplate)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "2012", cfg.DefaultYear)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "aew-map-interactions", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_BASE_URL", "https://tracks.example.org/aew/")
	t.Setenv("DATA_PATH_TEMPLATE", "{year}.json")
	t.Setenv("DATA_DIR", "")
	t.Setenv("DEFAULT_YEAR", "1995")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://tracks.example.org/aew", cfg.DataBaseURL)
	assert.Equal(t, "{year}.json", cfg.DataPathTemplate)
	assert.Empty(t, cfg.DataDir)
	assert.Equal(t, "1995", cfg.DefaultYear)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_TemplateWithoutYear(t *testing.T) {
	t.Setenv("DATA_PATH_TEMPLATE", "tracks.json")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_PATH_TEMPLATE")
}

func TestLoad_InvalidDefaultYear(t *testing.T) {
	t.Setenv("DEFAULT_YEAR", "12")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_YEAR")
}
