package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/metrics"
	"github.com/ludo-technologies/sqgate/internal/version"
	"go.uber.org/zap"
)

// ReportWriter writes a finished report in one or more formats
type ReportWriter interface {
	WriteReports(ctx context.Context, report *domain.QualityGateReport, formats []domain.OutputFormat, writer io.Writer, directory string) ([]string, error)
}

// ReportUseCase orchestrates one evaluation pass: catalog, project gate, live status
type ReportUseCase struct {
	service domain.QualityGateService
	writer  ReportWriter
	logger  *zap.SugaredLogger
	now     func() time.Time
	newID   func() string
}

// Evaluate runs the evaluation pass without writing anything
func (uc *ReportUseCase) Evaluate(ctx context.Context, req domain.ReportRequest) (*domain.QualityGateReport, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	started := uc.now()
	uc.logger.Infow("Evaluating quality gate", "project", req.ProjectKey, "branch", req.Branch)

	gates, err := uc.service.QualityGates(ctx)
	if err != nil {
		return nil, err
	}

	gate, err := uc.service.ProjectQualityGate(ctx, gates)
	if err != nil {
		return nil, err
	}

	status, err := uc.service.QualityGateStatus(ctx)
	if err != nil {
		return nil, err
	}

	finished := uc.now()
	report := &domain.QualityGateReport{
		RunID:       uc.newID(),
		ProjectKey:  req.ProjectKey,
		Branch:      req.Branch,
		QualityGate: gate,
		Status:      status,
		GeneratedAt: finished.Format(time.RFC3339),
		DurationMs:  finished.Sub(started).Milliseconds(),
		Version:     version.GetVersion(),
	}
	report.Summary = report.Summarize()

	uc.logger.Infow("Quality gate evaluated",
		"project", req.ProjectKey,
		"gate", gate.Name,
		"status", status.Status,
		"failed", report.Summary.FailedConditions)
	return report, nil
}

// Execute evaluates the project and writes the report; it returns the report and any files written
func (uc *ReportUseCase) Execute(ctx context.Context, req domain.ReportRequest) (*domain.QualityGateReport, []string, error) {
	report, err := uc.Evaluate(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	if err := uc.exportMetrics(report, req.MetricsFile); err != nil {
		return report, nil, err
	}

	if uc.writer == nil {
		return report, nil, nil
	}

	formats := req.OutputFormats
	if len(formats) == 0 {
		formats = []domain.OutputFormat{domain.OutputFormatText}
	}
	paths, err := uc.writer.WriteReports(ctx, report, formats, req.OutputWriter, req.OutputDirectory)
	if err != nil {
		return report, nil, err
	}
	for _, p := range paths {
		uc.logger.Debugw("Report written", "path", p)
	}
	return report, paths, nil
}

// Check evaluates the project and reduces the report to a pass/fail result
func (uc *ReportUseCase) Check(ctx context.Context, req domain.ReportRequest) (*domain.CheckResult, error) {
	report, err := uc.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := uc.exportMetrics(report, req.MetricsFile); err != nil {
		return nil, err
	}
	return domain.NewCheckResult(report), nil
}

func (uc *ReportUseCase) exportMetrics(report *domain.QualityGateReport, path string) error {
	if path == "" {
		return nil
	}
	exporter := metrics.NewExporter()
	exporter.Record(report)
	if err := exporter.WriteTextfile(path); err != nil {
		return err
	}
	uc.logger.Debugw("Metrics written", "path", path)
	return nil
}

func (uc *ReportUseCase) validateRequest(req domain.ReportRequest) error {
	if strings.TrimSpace(req.ProjectKey) == "" {
		return domain.NewBadRequestError("project key is required", nil)
	}
	for _, format := range req.OutputFormats {
		if !format.IsValid() {
			return domain.NewUnsupportedFormatError(string(format))
		}
	}
	return nil
}

// ReportUseCaseBuilder provides a builder pattern for creating ReportUseCase
type ReportUseCaseBuilder struct {
	service domain.QualityGateService
	writer  ReportWriter
	logger  *zap.SugaredLogger
	now     func() time.Time
	newID   func() string
}

// NewReportUseCaseBuilder creates a new builder
func NewReportUseCaseBuilder() *ReportUseCaseBuilder {
	return &ReportUseCaseBuilder{}
}

// WithService sets the quality gate service
func (b *ReportUseCaseBuilder) WithService(service domain.QualityGateService) *ReportUseCaseBuilder {
	b.service = service
	return b
}

// WithReportWriter sets the report writer
func (b *ReportUseCaseBuilder) WithReportWriter(writer ReportWriter) *ReportUseCaseBuilder {
	b.writer = writer
	return b
}

// WithLogger sets the logger
func (b *ReportUseCaseBuilder) WithLogger(logger *zap.SugaredLogger) *ReportUseCaseBuilder {
	b.logger = logger
	return b
}

// WithClock overrides the time source
func (b *ReportUseCaseBuilder) WithClock(now func() time.Time) *ReportUseCaseBuilder {
	b.now = now
	return b
}

// WithIDGenerator overrides how report run IDs are generated
func (b *ReportUseCaseBuilder) WithIDGenerator(newID func() string) *ReportUseCaseBuilder {
	b.newID = newID
	return b
}

// Build creates the ReportUseCase with the configured dependencies
func (b *ReportUseCaseBuilder) Build() (*ReportUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("quality gate service is required")
	}

	uc := &ReportUseCase{
		service: b.service,
		writer:  b.writer,
		logger:  b.logger,
		now:     b.now,
		newID:   b.newID,
	}
	if uc.logger == nil {
		uc.logger = zap.NewNop().Sugar()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = func() string { return uuid.New().String() }
	}
	return uc, nil
}
