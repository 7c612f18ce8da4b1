package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort      string   `yaml:"server_port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	MaxRequestBytes int64    `yaml:"max_request_bytes"`

	// Gemini
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	// Client
	RelayURL       string        `yaml:"relay_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// AWS (bundle export to S3)
	AWSRegion string `yaml:"aws_region"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxRequestBytes: 32 << 20,
		GeminiModel:     "gemini-1.5-flash",
		RelayURL:        "http://localhost:8080",
		RequestTimeout:  2 * time.Minute,
		AWSRegion:       "us-east-1",
	}
}

// Load loads configuration from an optional YAML file named by
// FURNITURE_CONFIG, then from environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("FURNITURE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.RelayURL = getEnv("RELAY_URL", cfg.RelayURL)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if raw := getEnv("MAX_REQUEST_BYTES", ""); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, errors.Errorf("invalid MAX_REQUEST_BYTES %q", raw)
		}
		cfg.MaxRequestBytes = n
	}

	if raw := getEnv("REQUEST_TIMEOUT", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid REQUEST_TIMEOUT")
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}

// loadFile overlays values from a YAML file onto cfg
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(err, "failed to parse config file")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
