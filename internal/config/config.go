// ABOUTME: Configuration loading and parsing for degov-oracle
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultLocalEndpoint is the local replica endpoint used when neither the
// config file nor the environment names one.
const DefaultLocalEndpoint = "http://localhost:4943/?canisterId=rdmx6-jaaaa-aaaaa-aaadq-cai"

// Config represents the complete degov-oracle configuration
type Config struct {
	Agent    AgentConfig    `yaml:"agent"`
	Server   ServerConfig   `yaml:"server"`
	Canister CanisterConfig `yaml:"canister"`
	Chat     ChatConfig     `yaml:"chat"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AgentConfig holds the agent's identity
type AgentConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// CanisterConfig holds the governance canister endpoint. The endpoint may be
// a bare canister id, a gateway-style host, or a local replica URL with a
// canisterId query parameter.
type CanisterConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ChatConfig holds message handling limits
type ChatConfig struct {
	RatePerSender float64 `yaml:"rate_per_sender"`
	Burst         int     `yaml:"burst"`

	DedupeTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	DedupeTTLRaw string `yaml:"dedupe_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given: the
// canister endpoint comes from the environment, everything else from
// defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset fields. The canister endpoint falls back through
// CANISTER_URL, then LOCAL_CANISTER_URL, then the local replica default.
func (c *Config) applyDefaults() {
	if c.Agent.Name == "" {
		c.Agent.Name = "degov-oracle"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8080"
	}
	if c.Canister.Endpoint == "" {
		c.Canister.Endpoint = os.Getenv("CANISTER_URL")
	}
	if c.Canister.Endpoint == "" {
		c.Canister.Endpoint = os.Getenv("LOCAL_CANISTER_URL")
	}
	if c.Canister.Endpoint == "" {
		c.Canister.Endpoint = DefaultLocalEndpoint
	}
	if c.Chat.RatePerSender == 0 {
		c.Chat.RatePerSender = 1
	}
	if c.Chat.Burst == 0 {
		c.Chat.Burst = 5
	}
	if c.Chat.DedupeTTL == 0 {
		c.Chat.DedupeTTL = 10 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Canister.Endpoint == "" {
		return fmt.Errorf("canister.endpoint is required")
	}
	if c.Chat.RatePerSender < 0 {
		return fmt.Errorf("chat.rate_per_sender must not be negative")
	}
	if c.Chat.Burst < 0 {
		return fmt.Errorf("chat.burst must not be negative")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Chat.DedupeTTLRaw != "" {
		d, err := time.ParseDuration(cfg.Chat.DedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_ttl %q: %w", cfg.Chat.DedupeTTLRaw, err)
		}
		cfg.Chat.DedupeTTL = d
	}
	return nil
}
