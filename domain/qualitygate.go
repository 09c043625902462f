package domain

import (
	"context"
	"encoding/json"
)

// Comparator is the operator of a quality gate condition, as reported by the server
type Comparator string

const (
	ComparatorGreaterThan Comparator = "GT"
	ComparatorLessThan    Comparator = "LT"
)

// MetricType is the display type of a metric. The zero value is MetricTypeInteger,
// which also absorbs every type tag the server may report that is not listed here.
type MetricType int

const (
	MetricTypeInteger MetricType = iota
	MetricTypeRating
	MetricTypeWorkDuration
	MetricTypePercent
	MetricTypeMilliseconds
)

// Metric type tags used by the analysis server
const (
	MetricTypeTagInteger      = "INT"
	MetricTypeTagRating       = "RATING"
	MetricTypeTagWorkDuration = "WORK_DUR"
	MetricTypeTagPercent      = "PERCENT"
	MetricTypeTagMilliseconds = "MILLISEC"
)

// ParseMetricType maps a server type tag onto a MetricType
func ParseMetricType(tag string) MetricType {
	switch tag {
	case MetricTypeTagRating:
		return MetricTypeRating
	case MetricTypeTagWorkDuration:
		return MetricTypeWorkDuration
	case MetricTypeTagPercent:
		return MetricTypePercent
	case MetricTypeTagMilliseconds:
		return MetricTypeMilliseconds
	default:
		return MetricTypeInteger
	}
}

// String returns the server tag of the metric type
func (t MetricType) String() string {
	switch t {
	case MetricTypeRating:
		return MetricTypeTagRating
	case MetricTypeWorkDuration:
		return MetricTypeTagWorkDuration
	case MetricTypePercent:
		return MetricTypeTagPercent
	case MetricTypeMilliseconds:
		return MetricTypeTagMilliseconds
	default:
		return MetricTypeTagInteger
	}
}

// MarshalText encodes the metric type as its server tag
func (t MetricType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a server tag
func (t *MetricType) UnmarshalText(text []byte) error {
	*t = ParseMetricType(string(text))
	return nil
}

// Condition status values reported by the server
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
	StatusWarn  = "WARN"
	StatusNone  = "NONE"
)

// Condition is one metric-level rule of a quality gate.
// ErrorThreshold is kept exactly as the server reported it.
type Condition struct {
	Metric         string     `json:"metric" yaml:"metric"`
	Comparator     Comparator `json:"comparator" yaml:"comparator"`
	ErrorThreshold string     `json:"error_threshold" yaml:"error_threshold"`
	Type           MetricType `json:"type" yaml:"type"`
}

// QualityGate is a named set of conditions known to the server
type QualityGate struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	IsDefault  bool        `json:"is_default" yaml:"is_default"`
}

// ConditionStatus is the live evaluation of one condition for the analyzed project
type ConditionStatus struct {
	MetricKey   string    `json:"metric_key" yaml:"metric_key"`
	MetricName  string    `json:"metric_name" yaml:"metric_name"`
	Status      string    `json:"status" yaml:"status"`
	ActualValue string    `json:"actual_value" yaml:"actual_value"`
	Passed      bool      `json:"passed" yaml:"passed"`
	Condition   Condition `json:"condition" yaml:"condition"`
	Explanation string    `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Display returns the status followed by its explanation, e.g. "ERROR (E is worse than A)"
func (c ConditionStatus) Display() string {
	return c.Status + c.Explanation
}

// DisplayName returns the metric name, falling back to the metric key
func (c ConditionStatus) DisplayName() string {
	if c.MetricName != "" {
		return c.MetricName
	}
	return c.MetricKey
}

// QualityGateStatus is the project's live quality gate evaluation, in server order
type QualityGateStatus struct {
	Status     string            `json:"status" yaml:"status"`
	Conditions []ConditionStatus `json:"conditions" yaml:"conditions"`
}

// Passed reports whether the project passes its quality gate
func (s *QualityGateStatus) Passed() bool {
	return s.Status != StatusError
}

// Lookup returns the condition status for a metric key
func (s *QualityGateStatus) Lookup(metricKey string) (ConditionStatus, bool) {
	for _, c := range s.Conditions {
		if c.MetricKey == metricKey {
			return c, true
		}
	}
	return ConditionStatus{}, false
}

// Displays maps each metric key to its display string
func (s *QualityGateStatus) Displays() map[string]string {
	res := make(map[string]string, len(s.Conditions))
	for _, c := range s.Conditions {
		res[c.MetricKey] = c.Display()
	}
	return res
}

// Failed returns the failing conditions in server order
func (s *QualityGateStatus) Failed() []ConditionStatus {
	var failed []ConditionStatus
	for _, c := range s.Conditions {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// QualityGateFetcher retrieves raw documents from the analysis server.
// Implementations own transport, authentication and project/branch scoping.
type QualityGateFetcher interface {
	// FetchQualityGates returns the catalog of quality gates
	FetchQualityGates(ctx context.Context) (json.RawMessage, error)

	// FetchQualityGateDetails returns the conditions of one quality gate
	FetchQualityGateDetails(ctx context.Context, gate QualityGate) (json.RawMessage, error)

	// FetchProject returns the project's configuration, including its gate binding
	FetchProject(ctx context.Context) (json.RawMessage, error)

	// FetchQualityGateStatus returns the project's live quality gate status
	FetchQualityGateStatus(ctx context.Context) (json.RawMessage, error)

	// FetchMetric returns the metadata of one metric
	FetchMetric(ctx context.Context, metricKey string) (json.RawMessage, error)
}

// QualityGateService defines the quality gate evaluation logic
type QualityGateService interface {
	// QualityGates returns every quality gate known to the server, with conditions
	QualityGates(ctx context.Context) ([]QualityGate, error)

	// ProjectQualityGate resolves the gate bound to the project among gates
	ProjectQualityGate(ctx context.Context, gates []QualityGate) (*QualityGate, error)

	// QualityGateStatus evaluates the project's conditions and explains failures
	QualityGateStatus(ctx context.Context) (*QualityGateStatus, error)
}
