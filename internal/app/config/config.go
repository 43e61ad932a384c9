package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	"github.com/copallet/copallet-api/internal/platform/observability"
)

// Config carries the settings shared by the API and worker processes. Values come from an
// optional app.env file and are overridden by environment variables of the same name.
type Config struct {
	Port                    string `mapstructure:"PORT"`
	PostgresDSN             string `mapstructure:"POSTGRES_DSN"`
	TemporalAddress         string `mapstructure:"TEMPORAL_ADDRESS"`
	TemporalNamespace       string `mapstructure:"TEMPORAL_NAMESPACE"`
	TemporalDisabled        bool   `mapstructure:"TEMPORAL_DISABLED"`
	KafkaBrokers            string `mapstructure:"KAFKA_BROKERS"`
	KafkaNotificationsTopic string `mapstructure:"KAFKA_NOTIFICATIONS_TOPIC"`
	RequestTimeoutSeconds   int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	ConflictRetries         int    `mapstructure:"CONFLICT_RETRIES"`
	Environment             string `mapstructure:"ENVIRONMENT"`
	LogLevel                string `mapstructure:"LOG_LEVEL"`
	OTLPEndpoint            string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure            bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"POSTGRES_DSN":                "",
	"TEMPORAL_ADDRESS":            client.DefaultHostPort,
	"TEMPORAL_NAMESPACE":          client.DefaultNamespace,
	"TEMPORAL_DISABLED":           false,
	"KAFKA_BROKERS":               "",
	"KAFKA_NOTIFICATIONS_TOPIC":   "shipments.notifications",
	"REQUEST_TIMEOUT_SECONDS":     10,
	"CONFLICT_RETRIES":            3,
	"ENVIRONMENT":                 "local",
	"LOG_LEVEL":                   "info",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_INSECURE": true,
}

// Load reads app.env from path when present, applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read app.env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	if cfg.RequestTimeoutSeconds <= 0 {
		return Config{}, errors.New("REQUEST_TIMEOUT_SECONDS must be a positive integer")
	}
	if cfg.ConflictRetries < 0 {
		return Config{}, errors.New("CONFLICT_RETRIES must not be negative")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// RequestTimeout bounds a single HTTP request, retries included.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Telemetry returns the observability settings for the named process.
func (c Config) Telemetry(serviceName string) observability.Settings {
	return observability.Settings{
		ServiceName:  serviceName,
		Environment:  c.Environment,
		LogLevel:     c.LogLevel,
		OTLPEndpoint: strings.TrimSpace(c.OTLPEndpoint),
		OTLPInsecure: c.OTLPInsecure,
	}
}

// Brokers splits KAFKA_BROKERS on commas.
func (c Config) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
