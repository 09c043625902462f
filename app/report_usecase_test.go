package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/testutil"
	"github.com/ludo-technologies/sqgate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestReportUseCase(t *testing.T, fetcher domain.QualityGateFetcher) *ReportUseCase {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return start.Add(time.Duration(ticks-1) * 250 * time.Millisecond)
	}

	uc, err := NewReportUseCaseBuilder().
		WithService(service.NewQualityGateService(fetcher, logger)).
		WithReportWriter(service.NewReportWriter(service.NewOutputFormatter(), service.NewParallelExecutor())).
		WithLogger(logger).
		WithClock(clock).
		WithIDGenerator(func() string { return "run-1" }).
		Build()
	require.NoError(t, err)
	return uc
}

func TestReportUseCaseBuilder_RequiresService(t *testing.T) {
	_, err := NewReportUseCaseBuilder().Build()
	assert.Error(t, err)
}

func TestReportUseCase_EvaluateFailingProject(t *testing.T) {
	fetcher := testutil.NewFakeFetcher()
	uc := newTestReportUseCase(t, fetcher)

	report, err := uc.Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project", Branch: "main"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "my-project", report.ProjectKey)
	assert.Equal(t, "main", report.Branch)
	require.NotNil(t, report.QualityGate)
	assert.Equal(t, "Sonar way", report.QualityGate.Name)
	assert.Equal(t, domain.StatusError, report.Status.Status)
	assert.Equal(t, "2024-03-01T12:00:00Z", report.GeneratedAt)
	assert.Equal(t, int64(250), report.DurationMs)
	assert.Equal(t, domain.ReportSummary{TotalConditions: 3, FailedConditions: 2, PassedConditions: 1}, report.Summary)
}

func TestReportUseCase_EvaluateBoundProject(t *testing.T) {
	fetcher := testutil.NewFakeFetcher()
	fetcher.Project = testutil.StrictProjectJSON
	fetcher.QualityGateStatus = testutil.PassingStatusJSON

	report, err := newTestReportUseCase(t, fetcher).Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	require.NoError(t, err)
	assert.Equal(t, "Strict", report.QualityGate.Name)
	assert.True(t, report.Summary.Passed)
	assert.Equal(t, 0, fetcher.Calls("FetchMetric"))
}

func TestReportUseCase_ValidatesRequest(t *testing.T) {
	tests := []struct {
		name string
		req  domain.ReportRequest
		code string
	}{
		{"missing project key", domain.ReportRequest{}, domain.ErrCodeBadRequest},
		{"blank project key", domain.ReportRequest{ProjectKey: "  "}, domain.ErrCodeBadRequest},
		{"unknown format", domain.ReportRequest{ProjectKey: "p", OutputFormats: []domain.OutputFormat{"pdf"}}, domain.ErrCodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := testutil.NewFakeFetcher()
			_, err := newTestReportUseCase(t, fetcher).Evaluate(context.Background(), tt.req)
			assert.Equal(t, tt.code, domain.ErrorCode(err))
			assert.Equal(t, 0, fetcher.Calls("FetchQualityGates"), "no request is sent for an invalid request")
		})
	}
}

func TestReportUseCase_PropagatesFetchErrors(t *testing.T) {
	fetcher := testutil.NewFakeFetcher()
	fetcher.StatusErr = domain.NewServerError("status unavailable", errors.New("502"))

	_, err := newTestReportUseCase(t, fetcher).Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	assert.True(t, domain.IsServerError(err))
}

func TestReportUseCase_UnknownBoundGate(t *testing.T) {
	fetcher := testutil.NewFakeFetcher()
	fetcher.Project = `{"key": "my-project", "qualityGate": {"key": "99", "name": "Gone"}}`

	_, err := newTestReportUseCase(t, fetcher).Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	assert.True(t, domain.IsUnknownQualityGate(err))
	assert.Equal(t, 0, fetcher.Calls("FetchQualityGateStatus"))
}

func TestReportUseCase_ExecuteWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	req := domain.ReportRequest{
		ProjectKey:    "my-project",
		OutputFormats: []domain.OutputFormat{domain.OutputFormatJSON},
		OutputWriter:  &buf,
	}

	report, paths, err := newTestReportUseCase(t, testutil.NewFakeFetcher()).Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Empty(t, paths)
	assert.Contains(t, buf.String(), `"project_key": "my-project"`)
}

func TestReportUseCase_ExecuteDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := newTestReportUseCase(t, testutil.NewFakeFetcher()).Execute(context.Background(),
		domain.ReportRequest{ProjectKey: "my-project", OutputWriter: &buf})
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "Quality Gate Report"))
}

func TestReportUseCase_ExecuteWritesFiles(t *testing.T) {
	dir := t.TempDir()
	req := domain.ReportRequest{
		ProjectKey:      "my-project",
		Branch:          "main",
		OutputFormats:   []domain.OutputFormat{domain.OutputFormatJSON, domain.OutputFormatHTML},
		OutputDirectory: dir,
	}

	_, paths, err := newTestReportUseCase(t, testutil.NewFakeFetcher()).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "quality-gate-my-project-main.json"),
		filepath.Join(dir, "quality-gate-my-project-main.html"),
	}, paths)
}

func TestReportUseCase_ExecuteExportsMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "quality-gate.prom")
	req := domain.ReportRequest{
		ProjectKey:   "my-project",
		OutputWriter: &bytes.Buffer{},
		MetricsFile:  path,
	}

	_, _, err := newTestReportUseCase(t, testutil.NewFakeFetcher()).Execute(context.Background(), req)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gate="Sonar way",project="my-project"} 0`)
}

func TestReportUseCase_DefaultRunIDIsUnique(t *testing.T) {
	uc, err := NewReportUseCaseBuilder().
		WithService(service.NewQualityGateService(testutil.NewFakeFetcher(), nil)).
		Build()
	require.NoError(t, err)

	first, err := uc.Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	require.NoError(t, err)
	second, err := uc.Evaluate(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	require.NoError(t, err)

	assert.Len(t, first.RunID, 36)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Status, second.Status, "identical inputs evaluate identically")
}

func TestReportUseCase_Check(t *testing.T) {
	result, err := newTestReportUseCase(t, testutil.NewFakeFetcher()).Check(context.Background(), domain.ReportRequest{ProjectKey: "my-project"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, "Sonar way", result.QualityGate)
	require.Len(t, result.Violations, 2)
	assert.Equal(t, "Reliability Rating on New Code", result.Violations[0].MetricName)
	assert.Equal(t, " (E is worse than A)", result.Violations[0].Explanation)
}

func TestGatesUseCase_Execute(t *testing.T) {
	fetcher := testutil.NewFakeFetcher()
	svc := service.NewQualityGateService(fetcher, zaptest.NewLogger(t).Sugar())
	uc, err := NewGatesUseCase(svc, service.NewOutputFormatter())
	require.NoError(t, err)

	var buf bytes.Buffer
	gates, err := uc.Execute(context.Background(), domain.OutputFormatText, &buf)
	require.NoError(t, err)
	assert.Len(t, gates, 2)
	assert.Contains(t, buf.String(), "Sonar way")
	assert.Contains(t, buf.String(), "Strict")
}

func TestGatesUseCase_RequiresDependencies(t *testing.T) {
	_, err := NewGatesUseCase(nil, service.NewOutputFormatter())
	assert.Error(t, err)

	svc := service.NewQualityGateService(testutil.NewFakeFetcher(), nil)
	_, err = NewGatesUseCase(svc, nil)
	assert.Error(t, err)
}
