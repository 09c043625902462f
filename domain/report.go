package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatHTML OutputFormat = "html"
)

// SupportedOutputFormats lists every format the report can be written in
func SupportedOutputFormats() []OutputFormat {
	return []OutputFormat{
		OutputFormatText,
		OutputFormatJSON,
		OutputFormatYAML,
		OutputFormatCSV,
		OutputFormatHTML,
	}
}

// IsValid reports whether the format is supported
func (f OutputFormat) IsValid() bool {
	for _, format := range SupportedOutputFormats() {
		if f == format {
			return true
		}
	}
	return false
}

// Extension returns the file extension used when the report is written to a directory
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatText:
		return "txt"
	case OutputFormatYAML:
		return "yaml"
	default:
		return string(f)
	}
}

// ReportRequest represents a request for a quality gate report
type ReportRequest struct {
	// Server connection
	ServerURL         string
	Token             string
	TimeoutSeconds    int
	RequestsPerSecond float64

	// Analyzed project
	ProjectKey string
	Branch     string

	// Output configuration
	OutputFormats   []OutputFormat
	OutputWriter    io.Writer
	OutputDirectory string
	ShowPassing     bool
	MetricsFile     string

	// Configuration
	ConfigPath string
	LogLevel   string
}

// ReportSummary holds aggregate counts of a quality gate report
type ReportSummary struct {
	TotalConditions  int  `json:"total_conditions" yaml:"total_conditions"`
	FailedConditions int  `json:"failed_conditions" yaml:"failed_conditions"`
	PassedConditions int  `json:"passed_conditions" yaml:"passed_conditions"`
	Passed           bool `json:"passed" yaml:"passed"`
}

// QualityGateReport is the outcome of one evaluation pass for one project
type QualityGateReport struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	ProjectKey  string             `json:"project_key" yaml:"project_key"`
	Branch      string             `json:"branch,omitempty" yaml:"branch,omitempty"`
	QualityGate *QualityGate       `json:"quality_gate" yaml:"quality_gate"`
	Status      *QualityGateStatus `json:"status" yaml:"status"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
	GeneratedAt string             `json:"generated_at" yaml:"generated_at"`
	DurationMs  int64              `json:"duration_ms" yaml:"duration_ms"`
	Version     string             `json:"version" yaml:"version"`
}

// Summarize computes the report summary from its status
func (r *QualityGateReport) Summarize() ReportSummary {
	summary := ReportSummary{Passed: true}
	if r.Status == nil {
		return summary
	}
	summary.TotalConditions = len(r.Status.Conditions)
	summary.FailedConditions = len(r.Status.Failed())
	summary.PassedConditions = summary.TotalConditions - summary.FailedConditions
	summary.Passed = r.Status.Passed()
	return summary
}

// OutputFormatter defines the interface for writing quality gate reports
type OutputFormatter interface {
	// Write writes the report in the specified format
	Write(report *QualityGateReport, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*ReportRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *ReportRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *ReportRequest, override *ReportRequest) *ReportRequest
}

// ProgressManager creates progress tasks for long-running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks one progress task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a unit of work run by the parallel executor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
