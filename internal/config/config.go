package config

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// YearPlaceholder is substituted with the requested year in DATA_PATH_TEMPLATE.
const YearPlaceholder = "{year}"

var yearRe = regexp.MustCompile(`^\d{4}$`)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Track data source.
	DataBaseURL      string
	DataPathTemplate string
	DataDir          string
	DefaultYear      string
	FetchTimeout     time.Duration

	// Optional interaction event sink.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataBaseURL:      strings.TrimRight(sharedcfg.EnvOrDefault("DATA_BASE_URL", "http://localhost:8080/data"), "/"),
		DataPathTemplate: sharedcfg.EnvOrDefault("DATA_PATH_TEMPLATE", "aew_tracks_{year}_interactive.json"),
		DataDir:          dataDir(),
		DefaultYear:      sharedcfg.EnvOrDefault("DEFAULT_YEAR", "2012"),
		FetchTimeout:     fetchTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "aew-map-interactions"),
	}

	if cfg.DataBaseURL == "" {
		return nil, errors.New("DATA_BASE_URL is required")
	}
	if !strings.Contains(cfg.DataPathTemplate, YearPlaceholder) {
		return nil, errors.New("DATA_PATH_TEMPLATE must contain {year}")
	}
	if !yearRe.MatchString(cfg.DefaultYear) {
		return nil, errors.New("DEFAULT_YEAR must be a four-digit year")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// dataDir allows DATA_DIR to be explicitly set empty to disable the static route.
func dataDir() string {
	if v, ok := os.LookupEnv("DATA_DIR"); ok {
		return v
	}
	return "data"
}
