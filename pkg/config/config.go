package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"reposnap/pkg/github"
)

// EnvConfigPath overrides the default configuration file location
const EnvConfigPath = "REPOSNAP_CONFIG"

// Config represents the reposnap configuration
type Config struct {
	LogLevel string       `yaml:"log_level"`
	GitHub   GitHubConfig `yaml:"github"`
	Cache    CacheConfig  `yaml:"cache"`
	Output   OutputConfig `yaml:"output"`
}

// GitHubConfig represents API access settings
type GitHubConfig struct {
	APIURL      string        `yaml:"api_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	ClosedCount string        `yaml:"closed_count"`
}

// CacheConfig represents snapshot cache settings. A zero TTL disables the cache.
type CacheConfig struct {
	TTL  time.Duration `yaml:"ttl"`
	Size int           `yaml:"size"`
}

// OutputConfig represents rendering defaults
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Output formats understood by the snapshot command
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		GitHub: GitHubConfig{
			APIURL:      github.DefaultAPIBaseURL,
			Timeout:     github.DefaultTimeout,
			MaxRetries:  0,
			ClosedCount: string(github.ClosedBySubtraction),
		},
		Cache: CacheConfig{
			TTL:  0,
			Size: github.DefaultCacheSize,
		},
		Output: OutputConfig{
			Format: FormatJSON,
		},
	}
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path. Values missing
// from the file keep their defaults.
func LoadConfigFromPath(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the configuration file path, honoring REPOSNAP_CONFIG
func GetConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".reposnap", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs github.ValidationErrors

	if c.GitHub.APIURL != "" {
		if err := github.ValidateEndpoint(c.GitHub.APIURL); err != nil {
			errs.Add("github.api_url", c.GitHub.APIURL, "must be an absolute http(s) URL")
		}
	}

	if c.GitHub.Timeout < 0 {
		errs.Add("github.timeout", c.GitHub.Timeout.String(), "must not be negative")
	}

	if c.GitHub.MaxRetries < 0 {
		errs.Add("github.max_retries", fmt.Sprint(c.GitHub.MaxRetries), "must not be negative")
	}

	if !github.ClosedCountPolicy(c.GitHub.ClosedCount).Valid() {
		errs.Add("github.closed_count", c.GitHub.ClosedCount, "must be one of: subtract, state")
	}

	if c.Cache.TTL < 0 {
		errs.Add("cache.ttl", c.Cache.TTL.String(), "must not be negative")
	}

	if c.Cache.Size < 0 {
		errs.Add("cache.size", fmt.Sprint(c.Cache.Size), "must not be negative")
	}

	switch c.Output.Format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		errs.Add("output.format", c.Output.Format, "must be one of: json, yaml, text")
	}

	switch c.LogLevel {
	case "", "panic", "fatal", "error", "warn", "warning", "info", "debug", "trace":
	default:
		errs.Add("log_level", c.LogLevel, "unknown log level")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// RetryConfig builds the fetch retry policy from the configuration
func (c *Config) RetryConfig() *github.RetryConfig {
	retry := github.DefaultRetryConfig()
	retry.MaxRetries = c.GitHub.MaxRetries
	return retry
}
