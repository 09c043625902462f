package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ludo-technologies/sqgate/domain"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	showPassing bool
}

// NewOutputFormatter creates a new output formatter listing failing conditions only in text output
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// NewOutputFormatterWithPassing creates an output formatter that also lists passing conditions
func NewOutputFormatterWithPassing(showPassing bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{showPassing: showPassing}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write writes the report in the specified format
func (f *OutputFormatterImpl) Write(report *domain.QualityGateReport, format domain.OutputFormat, writer io.Writer) error {
	if report == nil {
		return domain.NewOutputError("no report to write", nil)
	}

	var err error
	switch format {
	case domain.OutputFormatText:
		err = f.writeText(report, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, report)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, report)
	case domain.OutputFormatCSV:
		err = f.writeCSV(report, writer)
	case domain.OutputFormatHTML:
		err = f.WriteHTML(report, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write %s report", format), err)
	}
	return nil
}

// WriteGates writes a quality gate catalog in the specified format
func (f *OutputFormatterImpl) WriteGates(gates []domain.QualityGate, format domain.OutputFormat, writer io.Writer) error {
	var err error
	switch format {
	case domain.OutputFormatText:
		err = f.writeGatesText(gates, writer)
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, gates)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, gates)
	case domain.OutputFormatCSV:
		err = f.writeGatesCSV(gates, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write %s gate list", format), err)
	}
	return nil
}

// writeText writes the report as plain text
func (f *OutputFormatterImpl) writeText(report *domain.QualityGateReport, writer io.Writer) error {
	summary := report.Summarize()

	fmt.Fprintf(writer, "\n=== Quality Gate Report ===\n\n")
	fmt.Fprintf(writer, "Project: %s\n", report.ProjectKey)
	if report.Branch != "" {
		fmt.Fprintf(writer, "Branch: %s\n", report.Branch)
	}
	if report.QualityGate != nil {
		gate := report.QualityGate.Name
		if report.QualityGate.IsDefault {
			gate += " (default)"
		}
		fmt.Fprintf(writer, "Quality gate: %s\n", gate)
	}
	fmt.Fprintf(writer, "Generated: %s\n", report.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", report.Version)

	status := "NONE"
	if report.Status != nil {
		status = report.Status.Status
	}
	fmt.Fprintf(writer, "Status: %s\n", status)
	fmt.Fprintf(writer, "Conditions: %d total, %d failed, %d passed\n\n",
		summary.TotalConditions, summary.FailedConditions, summary.PassedConditions)

	if report.Status == nil {
		return nil
	}

	failed := report.Status.Failed()
	if len(failed) > 0 {
		fmt.Fprintf(writer, "Failed conditions:\n")
		for _, c := range failed {
			fmt.Fprintf(writer, "  [%s] %s%s\n", c.Status, c.DisplayName(), c.Explanation)
		}
	} else {
		fmt.Fprintf(writer, "All conditions passed.\n")
	}

	if f.showPassing {
		var passing []domain.ConditionStatus
		for _, c := range report.Status.Conditions {
			if c.Passed {
				passing = append(passing, c)
			}
		}
		if len(passing) > 0 {
			fmt.Fprintf(writer, "\nPassing conditions:\n")
			for _, c := range passing {
				fmt.Fprintf(writer, "  [%s] %s: %s (%s %s)\n",
					c.Status, c.DisplayName(), c.ActualValue, c.Condition.Comparator, c.Condition.ErrorThreshold)
			}
		}
	}

	return nil
}

var csvHeader = []string{
	"project", "branch", "quality_gate", "metric_key", "metric_name",
	"status", "actual_value", "comparator", "error_threshold", "metric_type", "explanation",
}

// writeCSV writes one row per evaluated condition
func (f *OutputFormatterImpl) writeCSV(report *domain.QualityGateReport, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	gate := ""
	if report.QualityGate != nil {
		gate = report.QualityGate.Name
	}
	if report.Status != nil {
		for _, c := range report.Status.Conditions {
			record := []string{
				report.ProjectKey,
				report.Branch,
				gate,
				c.MetricKey,
				c.MetricName,
				c.Status,
				c.ActualValue,
				string(c.Condition.Comparator),
				c.Condition.ErrorThreshold,
				c.Condition.Type.String(),
				c.Explanation,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// writeGatesText lists gates with their conditions
func (f *OutputFormatterImpl) writeGatesText(gates []domain.QualityGate, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Quality Gates ===\n\n")
	if len(gates) == 0 {
		fmt.Fprintf(writer, "No quality gates defined.\n")
		return nil
	}

	for _, gate := range gates {
		marker := ""
		if gate.IsDefault {
			marker = " [DEFAULT]"
		}
		fmt.Fprintf(writer, "%s (id: %s)%s\n", gate.Name, gate.ID, marker)
		if len(gate.Conditions) == 0 {
			fmt.Fprintf(writer, "  no conditions\n")
		}
		for _, c := range gate.Conditions {
			fmt.Fprintf(writer, "  %s %s %s\n", c.Metric, c.Comparator, c.ErrorThreshold)
		}
	}
	return nil
}

// writeGatesCSV writes one row per gate condition; gates without conditions get one empty row
func (f *OutputFormatterImpl) writeGatesCSV(gates []domain.QualityGate, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"gate_id", "gate_name", "is_default", "metric", "comparator", "error_threshold"}); err != nil {
		return err
	}
	for _, gate := range gates {
		isDefault := strconv.FormatBool(gate.IsDefault)
		if len(gate.Conditions) == 0 {
			if err := w.Write([]string{gate.ID, gate.Name, isDefault, "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, c := range gate.Conditions {
			if err := w.Write([]string{gate.ID, gate.Name, isDefault, c.Metric, string(c.Comparator), c.ErrorThreshold}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
