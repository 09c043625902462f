// Package testutil provides test doubles and fixtures for sqgate components
package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ludo-technologies/sqgate/domain"
)

// Canned server documents shared by package tests
const (
	QualityGatesJSON = `{
		"default": "1",
		"qualitygates": [
			{"id": 1, "name": "Sonar way"},
			{"id": "2", "name": "Strict"}
		]
	}`

	SonarWayDetailsJSON = `{
		"id": 1,
		"name": "Sonar way",
		"conditions": [
			{"id": 10, "metric": "new_reliability_rating", "op": "GT", "error": "1"},
			{"id": 11, "metric": "new_coverage", "op": "LT", "error": "80"},
			{"id": 12, "metric": "new_technical_debt", "op": "GT", "error": "0"}
		]
	}`

	StrictDetailsJSON = `{
		"id": "2",
		"name": "Strict",
		"conditions": [
			{"id": 20, "metric": "new_coverage", "op": "LT", "error": "90"}
		]
	}`

	UnboundProjectJSON = `{"key": "my-project", "name": "My Project"}`

	StrictProjectJSON = `{"key": "my-project", "qualityGate": {"key": "2", "name": "Strict", "isDefault": false}}`

	FailingStatusJSON = `{
		"projectStatus": {
			"status": "ERROR",
			"conditions": [
				{"status": "ERROR", "metricKey": "new_reliability_rating", "comparator": "GT", "errorThreshold": "1", "actualValue": "5"},
				{"status": "ERROR", "metricKey": "new_coverage", "comparator": "LT", "errorThreshold": "80", "actualValue": "50.314"},
				{"status": "OK", "metricKey": "new_technical_debt", "comparator": "GT", "errorThreshold": "0", "actualValue": "0"}
			]
		}
	}`

	PassingStatusJSON = `{
		"projectStatus": {
			"status": "OK",
			"conditions": [
				{"status": "OK", "metricKey": "new_coverage", "comparator": "LT", "errorThreshold": "80", "actualValue": "92.1"}
			]
		}
	}`
)

// MetricJSON builds a metric metadata document
func MetricJSON(key, name, metricType string) string {
	doc := map[string]interface{}{
		"component": map[string]string{"key": "my-project"},
		"metrics": []map[string]string{
			{"key": key, "name": name, "type": metricType},
		},
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

// FakeFetcher implements domain.QualityGateFetcher with canned documents.
// Errors take precedence over documents.
type FakeFetcher struct {
	QualityGates       string
	QualityGateDetails map[string]string // by gate id
	Project            string
	QualityGateStatus  string
	Metrics            map[string]string // by metric key

	QualityGatesErr error
	DetailsErr      error
	ProjectErr      error
	StatusErr       error
	MetricErr       error

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeFetcher returns a fetcher serving two gates, a project bound to nothing
// and a failing status
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		QualityGates: QualityGatesJSON,
		QualityGateDetails: map[string]string{
			"1": SonarWayDetailsJSON,
			"2": StrictDetailsJSON,
		},
		Project:           UnboundProjectJSON,
		QualityGateStatus: FailingStatusJSON,
		Metrics: map[string]string{
			"new_reliability_rating": MetricJSON("new_reliability_rating", "Reliability Rating on New Code", "RATING"),
			"new_coverage":           MetricJSON("new_coverage", "Coverage on New Code", "PERCENT"),
			"new_technical_debt":     MetricJSON("new_technical_debt", "Added Technical Debt", "WORK_DUR"),
		},
	}
}

// Calls returns how many times the named fetch method was called
func (f *FakeFetcher) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeFetcher) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

// FetchQualityGates implements domain.QualityGateFetcher
func (f *FakeFetcher) FetchQualityGates(_ context.Context) (json.RawMessage, error) {
	f.record("FetchQualityGates")
	if f.QualityGatesErr != nil {
		return nil, f.QualityGatesErr
	}
	return json.RawMessage(f.QualityGates), nil
}

// FetchQualityGateDetails implements domain.QualityGateFetcher
func (f *FakeFetcher) FetchQualityGateDetails(_ context.Context, gate domain.QualityGate) (json.RawMessage, error) {
	f.record("FetchQualityGateDetails")
	if f.DetailsErr != nil {
		return nil, f.DetailsErr
	}
	return json.RawMessage(f.QualityGateDetails[gate.ID]), nil
}

// FetchProject implements domain.QualityGateFetcher
func (f *FakeFetcher) FetchProject(_ context.Context) (json.RawMessage, error) {
	f.record("FetchProject")
	if f.ProjectErr != nil {
		return nil, f.ProjectErr
	}
	return json.RawMessage(f.Project), nil
}

// FetchQualityGateStatus implements domain.QualityGateFetcher
func (f *FakeFetcher) FetchQualityGateStatus(_ context.Context) (json.RawMessage, error) {
	f.record("FetchQualityGateStatus")
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	return json.RawMessage(f.QualityGateStatus), nil
}

// FetchMetric implements domain.QualityGateFetcher
func (f *FakeFetcher) FetchMetric(_ context.Context, metricKey string) (json.RawMessage, error) {
	f.record("FetchMetric")
	if f.MetricErr != nil {
		return nil, f.MetricErr
	}
	return json.RawMessage(f.Metrics[metricKey]), nil
}
