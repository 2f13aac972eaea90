package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Pebble    PebbleConfig    `yaml:"pebble"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Wipe      WipeConfig      `yaml:"wipe"`
	API       APIConfig       `yaml:"api"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// PebbleConfig represents the Pebble database configuration
type PebbleConfig struct {
	Path string `yaml:"path"`
}

// ArtifactsConfig represents the evidence artifact storage configuration
type ArtifactsConfig struct {
	Path string `yaml:"path"`
}

// WipeConfig represents the sanitization configuration
type WipeConfig struct {
	DefaultMethod   string   `yaml:"default_method"`
	AllowedMethods  []string `yaml:"allowed_methods"`
	SimulateDelayMS int      `yaml:"simulate_delay_ms"` // simulated driver run time
	AppendRetries   int      `yaml:"append_retries"`
	AppendBackoffMS int      `yaml:"append_backoff_ms"`
	AppendTimeoutMS int      `yaml:"append_timeout_ms"`
}

// APIConfig represents rate limiting for the public API
type APIConfig struct {
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	RateBurst int     `yaml:"rate_burst"`
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Pebble: PebbleConfig{
			Path: "./data/pebble",
		},
		Artifacts: ArtifactsConfig{
			Path: "./data/artifacts",
		},
		Wipe: WipeConfig{
			DefaultMethod:   "DoD 5220.22-M",
			AllowedMethods:  []string{"DoD 5220.22-M", "Gutmann Method", "NIST 800-88 Purge"},
			SimulateDelayMS: 500,
			AppendRetries:   3,
			AppendBackoffMS: 100,
			AppendTimeoutMS: 5000,
		},
		API: APIConfig{
			RateLimit: 5,
			RateBurst: 5,
		},
	}

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.loadEnv()

	return cfg, nil
}

func (c *Config) loadEnv() {
	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Storage config
	if path := os.Getenv("PEBBLE_PATH"); path != "" {
		c.Pebble.Path = path
	}
	if path := os.Getenv("ARTIFACTS_PATH"); path != "" {
		c.Artifacts.Path = path
	}

	// Wipe config
	if method := os.Getenv("WIPE_DEFAULT_METHOD"); method != "" {
		c.Wipe.DefaultMethod = method
	}
	if methods := os.Getenv("WIPE_ALLOWED_METHODS"); methods != "" {
		parts := strings.Split(methods, ",")
		allowed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				allowed = append(allowed, p)
			}
		}
		if len(allowed) > 0 {
			c.Wipe.AllowedMethods = allowed
		}
	}
	if delay := os.Getenv("WIPE_SIMULATE_DELAY_MS"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.Wipe.SimulateDelayMS = d
		}
	}
	if retries := os.Getenv("WIPE_APPEND_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			c.Wipe.AppendRetries = r
		}
	}

	// API config
	if limit := os.Getenv("API_RATE_LIMIT"); limit != "" {
		if l, err := strconv.ParseFloat(limit, 64); err == nil {
			c.API.RateLimit = l
		}
	}
	if burst := os.Getenv("API_RATE_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			c.API.RateBurst = b
		}
	}
}
