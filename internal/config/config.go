package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/constants"
	"github.com/spf13/viper"
)

// Default server and output settings
const (
	// DefaultServerURL points at a local SonarQube installation
	DefaultServerURL = "http://localhost:9000"

	// DefaultTimeoutSeconds bounds each request to the server
	DefaultTimeoutSeconds = 30

	// DefaultRequestsPerSecond paces requests; 0 means unlimited
	DefaultRequestsPerSecond = 0

	// DefaultOutputFormat is used when no format is configured
	DefaultOutputFormat = "text"

	// DefaultLogLevel keeps the CLI quiet unless something goes wrong
	DefaultLogLevel = "warn"

	// EnvPrefix prefixes environment overrides, e.g. SQGATE_SERVER_TOKEN
	EnvPrefix = constants.EnvVarPrefix
)

// Config represents the main configuration structure
type Config struct {
	// Server holds connection settings for the analysis server
	Server ServerConfig `json:"server" mapstructure:"server" yaml:"server"`

	// Project identifies the analyzed project
	Project ProjectConfig `json:"project" mapstructure:"project" yaml:"project"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Logging holds diagnostic logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds connection settings
type ServerConfig struct {
	// URL is the server base address, including any context path
	URL string `json:"url" mapstructure:"url" yaml:"url" validate:"required,url"`

	// Token is a user token sent as basic auth; prefer SQGATE_SERVER_TOKEN over the file
	Token string `json:"token,omitempty" mapstructure:"token" yaml:"token,omitempty"`

	// TimeoutSeconds bounds each request
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=1,lte=600"`

	// RequestsPerSecond paces requests (0 = unlimited)
	RequestsPerSecond float64 `json:"requests_per_second" mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
}

// ProjectConfig identifies the project whose gate is evaluated
type ProjectConfig struct {
	Key    string `json:"key" mapstructure:"key" yaml:"key"`
	Branch string `json:"branch,omitempty" mapstructure:"branch" yaml:"branch,omitempty"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Formats lists output formats: text, json, yaml, csv, html
	Formats []string `json:"formats" mapstructure:"formats" yaml:"formats" validate:"min=1,dive,required"`

	// Directory receives report files; empty writes to stdout
	Directory string `json:"directory,omitempty" mapstructure:"directory" yaml:"directory,omitempty"`

	// ShowPassing includes passing conditions in text output
	ShowPassing bool `json:"show_passing" mapstructure:"show_passing" yaml:"show_passing"`

	// MetricsFile receives gate results in Prometheus text format; empty disables export
	MetricsFile string `json:"metrics_file,omitempty" mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
}

// LoggingConfig holds diagnostic logging configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               DefaultServerURL,
			TimeoutSeconds:    DefaultTimeoutSeconds,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Output: OutputConfig{
			Formats: []string{DefaultOutputFormat},
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file from
// targetPath upward when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file.
// Environment overrides apply with or without a file.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// newViper registers every key with its default so AutomaticEnv can override it
func newViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultConfig()

	v.SetDefault("server.url", defaults.Server.URL)
	v.SetDefault("server.token", defaults.Server.Token)
	v.SetDefault("server.timeout_seconds", defaults.Server.TimeoutSeconds)
	v.SetDefault("server.requests_per_second", defaults.Server.RequestsPerSecond)
	v.SetDefault("project.key", defaults.Project.Key)
	v.SetDefault("project.branch", defaults.Project.Branch)
	v.SetDefault("output.formats", defaults.Output.Formats)
	v.SetDefault("output.directory", defaults.Output.Directory)
	v.SetDefault("output.show_passing", defaults.Output.ShowPassing)
	v.SetDefault("output.metrics_file", defaults.Output.MetricsFile)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// configCandidates lists config file names in priority order
var configCandidates = []string{
	"sqgate.yaml",
	"sqgate.yml",
	"sqgate.json",
	".sqgate.yaml",
	".sqgate.yml",
	".sqgate.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for a config file from targetPath upward, then in the
// working directory, XDG config, the home directory and finally SQGATE_CONFIG
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		if absPath, err := filepath.Abs(targetPath); err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "sqgate"), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "sqgate"), configCandidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("SQGATE_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

var validate = validator.New()

// Validate checks struct constraints and output formats
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for _, format := range c.Output.Formats {
		if !domain.OutputFormat(strings.ToLower(format)).IsValid() {
			return fmt.Errorf("invalid output.formats entry '%s', must be one of: text, json, yaml, csv, html", format)
		}
	}

	return nil
}

// OutputFormats returns the configured formats as domain values
func (c *OutputConfig) OutputFormats() []domain.OutputFormat {
	formats := make([]domain.OutputFormat, 0, len(c.Formats))
	for _, f := range c.Formats {
		formats = append(formats, domain.OutputFormat(strings.ToLower(f)))
	}
	return formats
}

// SaveConfig writes the configuration as YAML; the token is never persisted
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server.url", config.Server.URL)
	v.Set("server.timeout_seconds", config.Server.TimeoutSeconds)
	v.Set("server.requests_per_second", config.Server.RequestsPerSecond)
	v.Set("project.key", config.Project.Key)
	v.Set("project.branch", config.Project.Branch)
	v.Set("output.formats", config.Output.Formats)
	v.Set("output.directory", config.Output.Directory)
	v.Set("output.show_passing", config.Output.ShowPassing)
	v.Set("output.metrics_file", config.Output.MetricsFile)
	v.Set("logging.level", config.Logging.Level)

	return v.WriteConfig()
}
