package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path.
// An empty path discovers sqgate.yaml from the working directory upward.
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.ReportRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	req := c.convertToReportRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// LoadDefaultConfig loads the discovered configuration, falling back to defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.ReportRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return c.convertToReportRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	cfg = config.DefaultConfig()
	return c.convertToReportRequest(cfg)
}

// MergeConfig merges CLI flags with configuration file.
// Non-zero override values win.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.ReportRequest, override *domain.ReportRequest) *domain.ReportRequest {
	merged := *base

	// Server connection
	if override.ServerURL != "" {
		merged.ServerURL = override.ServerURL
	}
	if override.Token != "" {
		merged.Token = override.Token
	}
	if override.TimeoutSeconds > 0 {
		merged.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.RequestsPerSecond > 0 {
		merged.RequestsPerSecond = override.RequestsPerSecond
	}

	// Project
	if override.ProjectKey != "" {
		merged.ProjectKey = override.ProjectKey
	}
	if override.Branch != "" {
		merged.Branch = override.Branch
	}

	// Output configuration
	if len(override.OutputFormats) > 0 {
		merged.OutputFormats = append([]domain.OutputFormat(nil), override.OutputFormats...)
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputDirectory != "" {
		merged.OutputDirectory = override.OutputDirectory
	}
	if override.ShowPassing {
		merged.ShowPassing = true
	}
	if override.MetricsFile != "" {
		merged.MetricsFile = override.MetricsFile
	}

	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
	}

	// Config path is always from override if provided
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// convertToReportRequest converts a Config to ReportRequest
func (c *ConfigurationLoaderImpl) convertToReportRequest(cfg *config.Config) *domain.ReportRequest {
	return &domain.ReportRequest{
		ServerURL:         cfg.Server.URL,
		Token:             cfg.Server.Token,
		TimeoutSeconds:    cfg.Server.TimeoutSeconds,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,

		ProjectKey: cfg.Project.Key,
		Branch:     cfg.Project.Branch,

		OutputFormats:   cfg.Output.OutputFormats(),
		OutputDirectory: cfg.Output.Directory,
		ShowPassing:     cfg.Output.ShowPassing,
		MetricsFile:     cfg.Output.MetricsFile,

		LogLevel: cfg.Logging.Level,
	}
}

// ValidateConfig validates a merged request before any server call
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.ReportRequest) error {
	if strings.TrimSpace(req.ServerURL) == "" {
		return domain.NewBadRequestError("server URL is required", nil)
	}

	if strings.TrimSpace(req.ProjectKey) == "" {
		return domain.NewBadRequestError("project key is required (--project or project.key)", nil)
	}

	if req.TimeoutSeconds < 0 {
		return domain.NewValidationError(fmt.Sprintf("timeout cannot be negative, got %d", req.TimeoutSeconds))
	}

	if req.RequestsPerSecond < 0 {
		return domain.NewValidationError(fmt.Sprintf("requests per second cannot be negative, got %v", req.RequestsPerSecond))
	}

	if len(req.OutputFormats) == 0 {
		return domain.NewValidationError("at least one output format is required")
	}

	for _, format := range req.OutputFormats {
		if !format.IsValid() {
			return domain.NewUnsupportedFormatError(string(format))
		}
	}

	return nil
}
