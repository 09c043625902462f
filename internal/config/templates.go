package config

import (
	"strconv"
	"strings"
)

// ServerType represents the kind of analysis server the project reports to
type ServerType string

const (
	ServerTypeSonarQube  ServerType = "sonarqube"
	ServerTypeSonarCloud ServerType = "sonarcloud"
)

// OutputProfile represents how reports are delivered
type OutputProfile string

const (
	OutputProfileConsole OutputProfile = "console"
	OutputProfileCI      OutputProfile = "ci"
	OutputProfileFull    OutputProfile = "full"
)

// ServerPreset holds connection defaults for a server type
type ServerPreset struct {
	URL               string
	RequestsPerSecond float64
}

// OutputPreset holds output defaults for a profile
type OutputPreset struct {
	Formats     []string
	Directory   string
	ShowPassing bool
	MetricsFile string
}

// GetServerPresets returns presets for different server types
func GetServerPresets() map[ServerType]ServerPreset {
	return map[ServerType]ServerPreset{
		ServerTypeSonarQube: {
			URL:               DefaultServerURL,
			RequestsPerSecond: 0, // No limit
		},
		ServerTypeSonarCloud: {
			URL:               "https://sonarcloud.io",
			RequestsPerSecond: 5,
		},
	}
}

// GetOutputPresets returns presets for different output profiles
func GetOutputPresets() map[OutputProfile]OutputPreset {
	return map[OutputProfile]OutputPreset{
		OutputProfileConsole: {
			Formats:     []string{"text"},
			ShowPassing: true,
		},
		OutputProfileCI: {
			Formats:     []string{"json"},
			Directory:   ".sqgate/reports",
			MetricsFile: ".sqgate/reports/quality-gate.prom",
		},
		OutputProfileFull: {
			Formats:     []string{"text", "json", "yaml", "csv", "html"},
			Directory:   ".sqgate/reports",
			ShowPassing: true,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(serverType ServerType, profile OutputProfile, projectKey string) string {
	server := GetServerPresets()[serverType]
	output := GetOutputPresets()[profile]
	if server.URL == "" {
		server = GetServerPresets()[ServerTypeSonarQube]
	}
	if len(output.Formats) == 0 {
		output = GetOutputPresets()[OutputProfileConsole]
	}
	if projectKey == "" {
		projectKey = "my-project"
	}

	return `# sqgate Configuration
# Documentation: https://github.com/ludo-technologies/sqgate

# ============================================================================
# SERVER
# ============================================================================
server:
  # Base address of the server, including any context path
  url: ` + quoteYAML(server.URL) + `

  # Token: set SQGATE_SERVER_TOKEN instead of writing it here
  # token: ""

  # Per-request timeout in seconds
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `

  # Request pacing (0 = unlimited)
  requests_per_second: ` + strconv.FormatFloat(server.RequestsPerSecond, 'f', -1, 64) + `

# ============================================================================
# PROJECT
# ============================================================================
project:
  # Project key as shown in the server UI
  key: ` + quoteYAML(projectKey) + `

  # Branch to evaluate (empty = main branch)
  branch: ""

# ============================================================================
# OUTPUT SETTINGS
# ============================================================================
output:
  # Output formats: text, json, yaml, csv, html
  formats: ` + formatYAMLList(output.Formats) + `

  # Directory for report files (empty = stdout)
  directory: ` + quoteYAML(output.Directory) + `

  # Include passing conditions in text output
  show_passing: ` + strconv.FormatBool(output.ShowPassing) + `

  # Prometheus textfile for node_exporter (empty = disabled)
  metrics_file: ` + quoteYAML(output.MetricsFile) + `

# ============================================================================
# LOGGING
# ============================================================================
logging:
  # Diagnostic level: debug, info, warn, error (written to stderr)
  level: ` + DefaultLogLevel + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate(projectKey string) string {
	if projectKey == "" {
		projectKey = "my-project"
	}
	return `# sqgate Configuration (minimal)
# See full options: https://github.com/ludo-technologies/sqgate

server:
  url: ` + quoteYAML(DefaultServerURL) + `

project:
  key: ` + quoteYAML(projectKey) + `
`
}

// formatYAMLList formats a string slice as a YAML flow sequence
func formatYAMLList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, quoteYAML(item))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func quoteYAML(s string) string {
	return strconv.Quote(s)
}
