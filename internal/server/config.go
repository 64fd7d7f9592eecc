package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize string               `yaml:"maxBodySize"`
	Strict      bool                 `yaml:"strict"`
	RateLimit   RateLimitConfig      `yaml:"rateLimit"`
	Tracing     TracingConfig        `yaml:"tracing"`
	Logging     config.LoggingConfig `yaml:"logging"`
	bodySize    int64
}

// RateLimitConfig configures the per-client token bucket. Zero requests disables it.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// TracingConfig configures OpenTelemetry export. An empty endpoint keeps spans local.
type TracingConfig struct {
	ServiceName string `yaml:"serviceName"`
	Endpoint    string `yaml:"endpoint"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		RateLimit: RateLimitConfig{
			Requests: constants.DefaultRateLimitRequests,
			Window:   constants.DefaultRateLimitWindow,
		},
		Tracing:  TracingConfig{ServiceName: constants.DefaultServiceName},
		bodySize: constants.DefaultMaxBodySizeBytes,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured maximum request body size in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySize
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = constants.DefaultServiceName
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rateLimit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = constants.DefaultRateLimitWindow
	}

	bytes, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySize = bytes
	c.MaxBodySize = fmt.Sprintf("%d", bytes)
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "64K", "1M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
