package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "sqgate"

	// ConfigFileName is the default config file name
	ConfigFileName = "sqgate.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "SQGATE"

	// ReportFilePrefix names report files written to an output directory
	ReportFilePrefix = "quality-gate"
)

// Exit codes of the check command
const (
	ExitCodePassed = 0
	ExitCodeFailed = 1
	ExitCodeError  = 2
)
