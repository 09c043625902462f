package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ludo-technologies/sqgate/domain"
)

// flexString decodes a JSON string, number or null into its textual form.
// Servers report ids and thresholds as either strings or numbers depending on version.
type flexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
	}
	return nil
}

type qualityGatesPayload struct {
	Default      *flexString          `json:"default"`
	QualityGates []qualityGatePayload `json:"qualitygates"`
}

type qualityGatePayload struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	IsDefault bool       `json:"isDefault"`
}

type qualityGateDetailsPayload struct {
	Conditions []conditionPayload `json:"conditions"`
}

type conditionPayload struct {
	Metric string     `json:"metric"`
	Op     string     `json:"op"`
	Error  flexString `json:"error"`
}

type projectPayload struct {
	QualityGate *projectGatePayload `json:"qualityGate"`
}

type projectGatePayload struct {
	ID   flexString `json:"id"`
	Key  flexString `json:"key"`
	Name string     `json:"name"`
}

// identifier returns the bound gate identifier, preferring key over id
func (p *projectGatePayload) identifier() string {
	if p.Key != "" {
		return string(p.Key)
	}
	return string(p.ID)
}

type projectStatusPayload struct {
	ProjectStatus struct {
		Status     string                   `json:"status"`
		Conditions []conditionStatusPayload `json:"conditions"`
	} `json:"projectStatus"`
}

type conditionStatusPayload struct {
	Status         string     `json:"status"`
	MetricKey      string     `json:"metricKey"`
	Comparator     string     `json:"comparator"`
	ErrorThreshold flexString `json:"errorThreshold"`
	ActualValue    flexString `json:"actualValue"`
}

type metricPayload struct {
	Metric  *metricInfoPayload  `json:"metric"`
	Metrics []metricInfoPayload `json:"metrics"`
}

type metricInfoPayload struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// find returns the metadata of metricKey; a single unkeyed entry is accepted as-is
func (p *metricPayload) find(metricKey string) (metricInfoPayload, bool) {
	if p.Metric != nil && (p.Metric.Key == "" || p.Metric.Key == metricKey) {
		return *p.Metric, true
	}
	for _, m := range p.Metrics {
		if m.Key == metricKey {
			return m, true
		}
	}
	return metricInfoPayload{}, false
}

// decodePayload decodes a raw server document. An empty document decodes to the zero value.
func decodePayload(raw json.RawMessage, v interface{}, what string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.NewServerError(fmt.Sprintf("malformed %s response", what), err)
	}
	return nil
}
