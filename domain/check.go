package domain

// CheckResult represents the result of a quality gate check
type CheckResult struct {
	RunID       string           `json:"run_id"`
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	ProjectKey  string           `json:"project_key"`
	Branch      string           `json:"branch,omitempty"`
	QualityGate string           `json:"quality_gate"`
	Violations  []CheckViolation `json:"violations"`
	Summary     ReportSummary    `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single failing quality gate condition
type CheckViolation struct {
	Metric      string `json:"metric"`                // Metric key, e.g. new_coverage
	MetricName  string `json:"metric_name,omitempty"` // Server display name
	Comparator  string `json:"comparator"`            // GT, LT
	Message     string `json:"message"`               // Human-readable description
	Actual      string `json:"actual"`                // Raw actual value
	Threshold   string `json:"threshold"`             // Raw error threshold
	Explanation string `json:"explanation"`           // e.g. " (E is worse than A)"
}

// NewCheckResult builds a check result from a quality gate report
func NewCheckResult(report *QualityGateReport) *CheckResult {
	result := &CheckResult{
		RunID:       report.RunID,
		Passed:      true,
		ProjectKey:  report.ProjectKey,
		Branch:      report.Branch,
		Violations:  []CheckViolation{},
		Summary:     report.Summarize(),
		Duration:    report.DurationMs,
		GeneratedAt: report.GeneratedAt,
		Version:     report.Version,
	}
	if report.QualityGate != nil {
		result.QualityGate = report.QualityGate.Name
	}
	if report.Status == nil {
		return result
	}

	result.Passed = report.Status.Passed()
	for _, c := range report.Status.Failed() {
		result.Violations = append(result.Violations, CheckViolation{
			Metric:      c.MetricKey,
			MetricName:  c.MetricName,
			Comparator:  string(c.Condition.Comparator),
			Message:     c.DisplayName() + c.Explanation,
			Actual:      c.ActualValue,
			Threshold:   c.Condition.ErrorThreshold,
			Explanation: c.Explanation,
		})
	}
	if !result.Passed {
		result.ExitCode = 1
	}
	return result
}
