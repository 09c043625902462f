package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ludo-technologies/sqgate/domain"
)

func TestOutputFormatter_WriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(sampleReport(), domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Quality Gate Report: my-project",
		"Branch: main",
		`class="status-badge status-error"`,
		"Quality gate: Sonar way (default)",
		"Reliability Rating on New Code",
		"(E is worse than A)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected HTML to contain %q", want)
		}
	}
	if strings.Contains(out, "92.1") {
		t.Error("Passing conditions should be omitted by default")
	}
}

func TestOutputFormatter_WriteHTMLShowPassing(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatterWithPassing(true).Write(sampleReport(), domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "92.1") {
		t.Error("Passing conditions should be listed when requested")
	}
}

func TestOutputFormatter_WriteHTMLEscapes(t *testing.T) {
	report := sampleReport()
	report.ProjectKey = "<script>alert(1)</script>"

	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(report, domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Error("Project key should be HTML-escaped")
	}
}

func TestOutputFormatter_WriteHTMLWithoutStatus(t *testing.T) {
	report := sampleReport()
	report.Status = nil
	report.QualityGate = nil

	var buf bytes.Buffer
	if err := NewOutputFormatter().Write(report, domain.OutputFormatHTML, &buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "status-none") {
		t.Error("Missing status should render as NONE")
	}
}
