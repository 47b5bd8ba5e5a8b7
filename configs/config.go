package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileConfig defines the structure loaded from the YAML configuration file.
// Only the app settings live here; addresses, timeouts and the like are
// env-only. Env vars always win over file values.
type FileConfig struct {
	AppURL   string `yaml:"app_url"`
	APIToken string `yaml:"api_token"`
	APIMode  string `yaml:"api_mode"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields are loaded from environment variables with
// the prefix "BUBBLE_", potentially overriding file settings.
type Config struct {
	// Config File Path (Loaded first from env). Empty means env-only
	// configuration; a set but unreadable path is a hard error.
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// AppURL is the base URL of the Bubble application, e.g.
	// "https://myapp.bubbleapps.io". Required.
	AppURL string `envconfig:"APP_URL"`

	// APIToken is the bearer credential for the Data and Workflow APIs.
	// May be empty when the app exposes public read endpoints.
	APIToken string `envconfig:"API_TOKEN"`

	// APIMode gates the mutating tools. The literal value "read-write"
	// enables them; anything else, the empty default included, leaves the
	// server read-only.
	APIMode string `envconfig:"API_MODE"`

	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	OpsListenAddr            string        `envconfig:"OPS_LISTEN_ADDR" default:":8081"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	ServerIdleTimeout        time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ReadWrite reports whether the mutating tools are enabled.
func (c *Config) ReadWrite() bool {
	return c.APIMode == "read-write"
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the file
// path), then from the specified YAML file, and finally processes environment
// variables again so they override file settings.
func Load() (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process("bubble", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
	}

	finalCfg := initialCfg
	if fileCfg.AppURL != "" {
		finalCfg.AppURL = fileCfg.AppURL
	}
	if fileCfg.APIToken != "" {
		finalCfg.APIToken = fileCfg.APIToken
	}
	if fileCfg.APIMode != "" {
		finalCfg.APIMode = fileCfg.APIMode
	}

	// Process environment variables again so they override file settings.
	// The app fields carry no envconfig defaults, so an unset variable
	// leaves the file value in place.
	if err := envconfig.Process("bubble", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
