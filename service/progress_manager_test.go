package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ludo-technologies/sqgate/domain"
	"github.com/ludo-technologies/sqgate/internal/testutil"
)

func TestNewProgressManager_NonInteractive(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("expected non-interactive progress manager when disabled")
	}

	var _ domain.ProgressManager = pm
}

func TestNewProgressManager_CIDisablesBars(t *testing.T) {
	t.Setenv("CI", "true")

	if IsInteractiveEnvironment() {
		t.Error("CI environments should not be interactive")
	}
	if NewProgressManager(true).IsInteractive() {
		t.Error("expected no-op progress manager in CI")
	}
}

func TestNoOpProgressManager(t *testing.T) {
	pm := &NoOpProgressManager{}

	if pm.IsInteractive() {
		t.Error("expected NoOpProgressManager.IsInteractive() to return false")
	}

	task := pm.StartTask("test", 100)
	if task == nil {
		t.Fatal("expected non-nil task from StartTask")
	}

	task.Increment(10)
	task.Describe("testing")
	task.Complete()

	pm.Close()
}

func TestProgressManagerImpl_DrawsToWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManagerWithWriter(&buf)

	if !pm.IsInteractive() {
		t.Error("writer-backed progress manager should be interactive")
	}

	task := pm.StartTask("Fetching quality gates", 2)
	task.Increment(1)
	task.Describe("Fetching Sonar way")
	task.Increment(1)
	task.Complete()

	spinner := pm.StartTask("Waiting", 0)
	spinner.Increment(1)
	pm.Close()

	if !strings.Contains(buf.String(), "Fetching") {
		t.Errorf("expected progress output, got %q", buf.String())
	}
}

func TestQualityGateService_ProgressOnRealManager(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManagerWithWriter(&buf)
	svc := NewQualityGateServiceWithProgress(testutil.NewFakeFetcher(), nil, pm)

	gates, err := svc.QualityGates(context.Background())
	if err != nil {
		t.Fatalf("QualityGates failed: %v", err)
	}
	pm.Close()

	if len(gates) != 2 {
		t.Errorf("expected 2 gates, got %d", len(gates))
	}
	if buf.Len() == 0 {
		t.Error("expected progress output while fetching gate details")
	}
}

func TestProgressManagerImpl_Interface(t *testing.T) {
	var _ domain.ProgressManager = &ProgressManagerImpl{}
	var _ domain.TaskProgress = &TaskProgressImpl{}
	var _ domain.TaskProgress = &NoOpTaskProgress{}
}
