package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the discovery API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds settings for the classification and description capability.
type LLMConfig struct {
	APIKey               string  `yaml:"api_key"`
	BaseURL              string  `yaml:"base_url"`
	ClassifierModel      string  `yaml:"classifier_model"`
	DescriberModel       string  `yaml:"describer_model"`
	DescriberTemperature float32 `yaml:"describer_temperature"`
	ClassifyTimeoutMs    int     `yaml:"classify_timeout_ms"`
	Disabled             bool    `yaml:"disabled"` // keyword fallback only, no API calls
}

// DiscoveryConfig holds ranking and preference tracking settings.
type DiscoveryConfig struct {
	ResultLimit      int `yaml:"result_limit"`       // max ranked results per request
	SearchLogCap     int `yaml:"search_log_cap"`     // retained search-log entries per guest
	CatalogRetries   int `yaml:"catalog_retries"`    // retries for transient catalog read failures
	EnvelopeTTLHours int `yaml:"envelope_ttl_hours"` // retention of published result envelopes
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.LLM.ClassifierModel == "" {
		c.LLM.ClassifierModel = "gpt-4o-mini"
	}
	if c.LLM.DescriberModel == "" {
		c.LLM.DescriberModel = c.LLM.ClassifierModel
	}
	if c.LLM.DescriberTemperature <= 0 {
		c.LLM.DescriberTemperature = 0.7
	}
	if c.LLM.ClassifyTimeoutMs <= 0 {
		c.LLM.ClassifyTimeoutMs = 3000
	}
	if c.Discovery.ResultLimit <= 0 {
		c.Discovery.ResultLimit = 5
	}
	if c.Discovery.SearchLogCap <= 0 {
		c.Discovery.SearchLogCap = 100
	}
	if c.Discovery.CatalogRetries <= 0 {
		c.Discovery.CatalogRetries = 2
	}
	if c.Discovery.EnvelopeTTLHours <= 0 {
		c.Discovery.EnvelopeTTLHours = 24
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "discovery:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if !c.LLM.Disabled && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required unless llm.disabled is set")
	}
	if c.Discovery.CatalogRetries > 5 {
		return fmt.Errorf("discovery.catalog_retries must be at most 5, got %d", c.Discovery.CatalogRetries)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
