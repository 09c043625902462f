package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/constants"
)

// ReportWriterImpl writes one report in several formats through a parallel executor.
// With an output directory each format gets its own file; otherwise formats are
// rendered concurrently and written to the writer in the requested order.
type ReportWriterImpl struct {
	formatter domain.OutputFormatter
	executor  domain.ParallelExecutor
}

// NewReportWriter creates a report writer
func NewReportWriter(formatter domain.OutputFormatter, executor domain.ParallelExecutor) *ReportWriterImpl {
	return &ReportWriterImpl{formatter: formatter, executor: executor}
}

// WriteReports writes the report in every format and returns the files created, if any
func (w *ReportWriterImpl) WriteReports(ctx context.Context, report *domain.QualityGateReport, formats []domain.OutputFormat, writer io.Writer, directory string) ([]string, error) {
	formats = uniqueFormats(formats)
	if len(formats) == 0 {
		return nil, domain.NewValidationError("no output format requested")
	}
	for _, format := range formats {
		if !format.IsValid() {
			return nil, domain.NewUnsupportedFormatError(string(format))
		}
	}

	if directory != "" {
		return w.writeFiles(ctx, report, formats, directory)
	}
	if writer == nil {
		return nil, domain.NewOutputError("no output writer or directory", nil)
	}
	return nil, w.writeStream(ctx, report, formats, writer)
}

func (w *ReportWriterImpl) writeFiles(ctx context.Context, report *domain.QualityGateReport, formats []domain.OutputFormat, directory string) ([]string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("cannot create output directory %s", directory), err)
	}

	paths := make([]string, len(formats))
	tasks := make([]domain.ExecutableTask, len(formats))
	for i, format := range formats {
		paths[i] = filepath.Join(directory, ReportFileName(report, format))
		tasks[i] = &fileWriteTask{formatter: w.formatter, report: report, format: format, path: paths[i]}
	}

	if err := w.executor.Execute(ctx, tasks); err != nil {
		return nil, err
	}
	return paths, nil
}

func (w *ReportWriterImpl) writeStream(ctx context.Context, report *domain.QualityGateReport, formats []domain.OutputFormat, writer io.Writer) error {
	buffers := make([]*bytes.Buffer, len(formats))
	tasks := make([]domain.ExecutableTask, len(formats))
	for i, format := range formats {
		buffers[i] = &bytes.Buffer{}
		tasks[i] = &renderTask{formatter: w.formatter, report: report, format: format, buf: buffers[i]}
	}

	if err := w.executor.Execute(ctx, tasks); err != nil {
		return err
	}

	for _, buf := range buffers {
		if _, err := buf.WriteTo(writer); err != nil {
			return domain.NewOutputError("failed to write report", err)
		}
	}
	return nil
}

// ReportFileName names the report file for a format, e.g. quality-gate-my-project.json
func ReportFileName(report *domain.QualityGateReport, format domain.OutputFormat) string {
	name := constants.ReportFilePrefix
	if report.ProjectKey != "" {
		name += "-" + sanitizeFileComponent(report.ProjectKey)
	}
	if report.Branch != "" {
		name += "-" + sanitizeFileComponent(report.Branch)
	}
	return name + "." + format.Extension()
}

func sanitizeFileComponent(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

func uniqueFormats(formats []domain.OutputFormat) []domain.OutputFormat {
	seen := make(map[domain.OutputFormat]bool, len(formats))
	unique := make([]domain.OutputFormat, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}
	return unique
}

// renderTask renders one format into a buffer
type renderTask struct {
	formatter domain.OutputFormatter
	report    *domain.QualityGateReport
	format    domain.OutputFormat
	buf       *bytes.Buffer
}

func (t *renderTask) Name() string { return "render-" + string(t.format) }

func (t *renderTask) IsEnabled() bool { return true }

func (t *renderTask) Execute(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, t.formatter.Write(t.report, t.format, t.buf)
}

// fileWriteTask writes one format to its own file
type fileWriteTask struct {
	formatter domain.OutputFormatter
	report    *domain.QualityGateReport
	format    domain.OutputFormat
	path      string
}

func (t *fileWriteTask) Name() string { return "write-" + string(t.format) }

func (t *fileWriteTask) IsEnabled() bool { return true }

func (t *fileWriteTask) Execute(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Create(t.path)
	if err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("cannot create %s", t.path), err)
	}
	if err := t.formatter.Write(t.report, t.format, file); err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("cannot close %s", t.path), err)
	}
	return t.path, nil
}
