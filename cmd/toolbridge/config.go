package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/phuslu/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/skosovsky/toolbridge/toolkits/calendly"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Addr    string `toml:"addr"`
}

// SpecsConfig holds tool spec loading settings.
type SpecsConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// RemoteConfig holds remote MCP discovery settings.
type RemoteConfig struct {
	Endpoint string `toml:"endpoint"`
}

// LimitsConfig holds dispatch and HTTP limits.
type LimitsConfig struct {
	HTTPTimeoutSeconds int   `toml:"http_timeout_seconds"`
	MaxResponseSize    int64 `toml:"max_response_size"`
	MaxConcurrency     int   `toml:"max_concurrency"`
}

// TavilyConfig holds web search settings.
type TavilyConfig struct {
	APIKey string `toml:"api_key"`
}

// CalendlyConfig holds Calendly scheduling tool settings. The tools are only
// registered when a token is configured.
type CalendlyConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config holds all toolbridge CLI configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Specs    SpecsConfig    `toml:"specs"`
	Remote   RemoteConfig   `toml:"remote"`
	Limits   LimitsConfig   `toml:"limits"`
	Tavily   TavilyConfig   `toml:"tavily"`
	Calendly CalendlyConfig `toml:"calendly"`
	Logging  LoggingConfig  `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "toolbridge",
			Version: "0.1.0",
			Addr:    ":8390",
		},
		Specs: SpecsConfig{
			Path: "tools.json",
		},
		Limits: LimitsConfig{
			HTTPTimeoutSeconds: 15,
			MaxResponseSize:    100_000,
			MaxConcurrency:     10,
		},
		Calendly: CalendlyConfig{
			BaseURL: calendly.DefaultBaseURL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env
// overrides. A missing file is not an error; a malformed one is.
func loadConfig(path string) (Config, error) {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// File not found, use defaults
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if p := os.Getenv("TOOLBRIDGE_SPECS"); p != "" {
		cfg.Specs.Path = p
	}
	if addr := os.Getenv("TOOLBRIDGE_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if ep := os.Getenv("MCP_ENDPOINT"); ep != "" {
		cfg.Remote.Endpoint = ep
	}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		cfg.Tavily.APIKey = key
	}
	if tok := os.Getenv("CALENDLY_TOKEN"); tok != "" {
		cfg.Calendly.Token = tok
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if t := os.Getenv("HTTP_TIMEOUT_SECONDS"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %q", t)
		}
		cfg.Limits.HTTPTimeoutSeconds = n
	}

	return cfg, nil
}

// httpTimeout returns the configured timeout as a duration.
func (c Config) httpTimeout() time.Duration {
	return time.Duration(c.Limits.HTTPTimeoutSeconds) * time.Second
}

// newLogger builds a structured console logger and its slog bridge for the
// library packages.
func newLogger(cfg LoggingConfig) *slog.Logger {
	l := log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: false,
		},
	}
	return l.Slog()
}
