package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/sqgate/domain"
)

// mockTask implements domain.ExecutableTask for testing
type mockTask struct {
	name     string
	enabled  bool
	execFunc func(ctx context.Context) (interface{}, error)
}

func (t *mockTask) Name() string {
	return t.name
}

func (t *mockTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx)
	}
	return nil, nil
}

func (t *mockTask) IsEnabled() bool {
	return t.enabled
}

func newMockTask(name string, enabled bool) *mockTask {
	return &mockTask{name: name, enabled: enabled}
}

func newMockTaskWithExec(name string, enabled bool, execFunc func(ctx context.Context) (interface{}, error)) *mockTask {
	return &mockTask{name: name, enabled: enabled, execFunc: execFunc}
}

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	if executor == nil {
		t.Fatal("NewParallelExecutor returned nil")
	}
	if executor.maxConcurrency <= 0 {
		t.Errorf("maxConcurrency should be > 0, got %d", executor.maxConcurrency)
	}
	if executor.timeout != DefaultTimeout {
		t.Errorf("timeout should be %v, got %v", DefaultTimeout, executor.timeout)
	}
}

func TestNewParallelExecutorWithOptions(t *testing.T) {
	executor := NewParallelExecutorWithOptions(8, 90*time.Second)
	if executor.maxConcurrency != 8 {
		t.Errorf("maxConcurrency should be 8, got %d", executor.maxConcurrency)
	}
	if executor.timeout != 90*time.Second {
		t.Errorf("timeout should be 90s, got %v", executor.timeout)
	}

	defaults := NewParallelExecutorWithOptions(0, -time.Second)
	if defaults.maxConcurrency != DefaultMaxConcurrency {
		t.Errorf("maxConcurrency should fall back to %d, got %d", DefaultMaxConcurrency, defaults.maxConcurrency)
	}
	if defaults.timeout != DefaultTimeout {
		t.Errorf("timeout should fall back to %v, got %v", DefaultTimeout, defaults.timeout)
	}
}

func TestNewParallelExecutorWithProgress(t *testing.T) {
	pm := &NoOpProgressManager{}

	executor := NewParallelExecutorWithProgress(pm)

	if executor.progress != pm {
		t.Error("progress manager should be set")
	}
}

func TestParallelExecutor_EmptyTaskList(t *testing.T) {
	executor := NewParallelExecutor()

	if err := executor.Execute(context.Background(), []domain.ExecutableTask{}); err != nil {
		t.Errorf("empty task list should return nil, got %v", err)
	}
}

func TestParallelExecutor_AllTasksSucceed(t *testing.T) {
	executor := NewParallelExecutor()

	var executedCount atomic.Int32
	var tasks []domain.ExecutableTask
	for _, format := range domain.SupportedOutputFormats() {
		tasks = append(tasks, newMockTaskWithExec("write-"+string(format), true, func(ctx context.Context) (interface{}, error) {
			executedCount.Add(1)
			return nil, nil
		}))
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if int(executedCount.Load()) != len(tasks) {
		t.Errorf("expected %d executions, got %d", len(tasks), executedCount.Load())
	}
}

func TestParallelExecutor_PartialFailuresInTaskOrder(t *testing.T) {
	executor := NewParallelExecutor()
	errCSV := errors.New("disk full")
	errHTML := errors.New("permission denied")

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("write-csv", true, func(ctx context.Context) (interface{}, error) {
			time.Sleep(20 * time.Millisecond)
			return nil, errCSV
		}),
		newMockTask("write-json", true),
		newMockTaskWithExec("write-html", true, func(ctx context.Context) (interface{}, error) {
			return nil, errHTML
		}),
	}

	err := executor.Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected error from failing tasks")
	}

	var aggErr *AggregatedError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected *AggregatedError, got %T", err)
	}
	if len(aggErr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(aggErr.Errors))
	}
	if aggErr.Errors[0].TaskName != "write-csv" || aggErr.Errors[1].TaskName != "write-html" {
		t.Errorf("errors should follow task order, got %s then %s", aggErr.Errors[0].TaskName, aggErr.Errors[1].TaskName)
	}
	if !errors.Is(err, errCSV) {
		t.Error("aggregated error should unwrap to the first failure")
	}
}

func TestParallelExecutor_Timeout(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetTimeout(100 * time.Millisecond)

	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("slow-task", true, func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(500 * time.Millisecond):
				return "done", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	}

	err := executor.Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestParallelExecutor_ContextCancellation(t *testing.T) {
	executor := NewParallelExecutor()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("cancellable-task", true, func(ctx context.Context) (interface{}, error) {
			close(started)
			select {
			case <-time.After(10 * time.Second):
				return "done", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}),
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- executor.Execute(ctx, tasks)
	}()

	<-started
	cancel()

	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestParallelExecutor_AlreadyCancelled(t *testing.T) {
	executor := NewParallelExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed atomic.Bool
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("write-json", true, func(ctx context.Context) (interface{}, error) {
			executed.Store(true)
			return nil, nil
		}),
	}

	err := executor.Execute(ctx, tasks)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
	if executed.Load() {
		t.Error("task should not run on a cancelled context")
	}
}

func TestParallelExecutor_DisabledTasksSkipped(t *testing.T) {
	executor := NewParallelExecutor()

	var executedCount atomic.Int32
	tasks := []domain.ExecutableTask{
		newMockTaskWithExec("enabled-task", true, func(ctx context.Context) (interface{}, error) {
			executedCount.Add(1)
			return nil, nil
		}),
		newMockTaskWithExec("disabled-task", false, func(ctx context.Context) (interface{}, error) {
			executedCount.Add(1)
			return nil, nil
		}),
		newMockTask("disabled2", false),
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if executedCount.Load() != 1 {
		t.Errorf("only enabled task should execute, got %d executions", executedCount.Load())
	}
}

func TestParallelExecutor_ConcurrencyLimit(t *testing.T) {
	executor := NewParallelExecutorWithOptions(2, 30*time.Second)

	var current atomic.Int32
	var peak atomic.Int32
	var mu sync.Mutex

	var tasks []domain.ExecutableTask
	for i := 0; i < 5; i++ {
		name := "task" + string(rune('0'+i))
		tasks = append(tasks, newMockTaskWithExec(name, true, func(ctx context.Context) (interface{}, error) {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(30 * time.Millisecond)
			current.Add(-1)
			return nil, nil
		}))
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("max concurrency should not exceed 2, got %d", peak.Load())
	}
}

func TestParallelExecutor_Setters(t *testing.T) {
	executor := NewParallelExecutor()
	originalConcurrency := executor.maxConcurrency
	originalTimeout := executor.timeout

	executor.SetMaxConcurrency(0)
	executor.SetMaxConcurrency(-1)
	executor.SetTimeout(0)
	executor.SetTimeout(-time.Second)

	executor.mu.RLock()
	if executor.maxConcurrency != originalConcurrency {
		t.Errorf("maxConcurrency should remain %d for invalid values, got %d", originalConcurrency, executor.maxConcurrency)
	}
	if executor.timeout != originalTimeout {
		t.Errorf("timeout should remain %v for invalid values, got %v", originalTimeout, executor.timeout)
	}
	executor.mu.RUnlock()

	executor.SetMaxConcurrency(16)
	executor.SetTimeout(10 * time.Minute)

	executor.mu.RLock()
	defer executor.mu.RUnlock()
	if executor.maxConcurrency != 16 {
		t.Errorf("maxConcurrency should be 16, got %d", executor.maxConcurrency)
	}
	if executor.timeout != 10*time.Minute {
		t.Errorf("timeout should be 10 minutes, got %v", executor.timeout)
	}
}

func TestParallelExecutor_ProgressIntegration(t *testing.T) {
	var incrementCount atomic.Int32
	var completed atomic.Bool
	var description string

	mockPM := &mockProgressManager{
		startTaskFunc: func(desc string, total int) domain.TaskProgress {
			description = desc
			return &mockTaskProgress{
				incrementFunc: func(n int) { incrementCount.Add(int32(n)) },
				completeFunc:  func() { completed.Store(true) },
			}
		},
	}

	executor := NewParallelExecutorWithProgress(mockPM)
	tasks := []domain.ExecutableTask{
		newMockTask("write-text", true),
		newMockTask("write-json", true),
		newMockTask("write-yaml", true),
	}

	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if incrementCount.Load() != 3 {
		t.Errorf("expected 3 increments, got %d", incrementCount.Load())
	}
	if !completed.Load() {
		t.Error("expected Complete() to be called")
	}
	if description != "Writing reports" {
		t.Errorf("unexpected progress description %q", description)
	}
}

func TestAggregatedError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []TaskError
		contains string
	}{
		{"no errors", nil, "no errors"},
		{"single error", []TaskError{{TaskName: "write-json", Err: errors.New("boom")}}, "[write-json] boom"},
		{
			"multiple errors",
			[]TaskError{
				{TaskName: "write-json", Err: errors.New("boom")},
				{TaskName: "write-csv", Err: errors.New("bang")},
			},
			"2 tasks failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &AggregatedError{Errors: tt.errors}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, err.Error())
			}
		})
	}
}

func TestAggregatedError_UnwrapEmpty(t *testing.T) {
	err := &AggregatedError{}
	if err.Unwrap() != nil {
		t.Error("empty aggregated error should unwrap to nil")
	}
}

// Helper types for testing

type mockProgressManager struct {
	startTaskFunc func(description string, total int) domain.TaskProgress
}

func (m *mockProgressManager) StartTask(description string, total int) domain.TaskProgress {
	if m.startTaskFunc != nil {
		return m.startTaskFunc(description, total)
	}
	return &NoOpTaskProgress{}
}

func (m *mockProgressManager) IsInteractive() bool {
	return false
}

func (m *mockProgressManager) Close() {}

type mockTaskProgress struct {
	incrementFunc func(n int)
	completeFunc  func()
}

func (m *mockTaskProgress) Increment(n int) {
	if m.incrementFunc != nil {
		m.incrementFunc(n)
	}
}

func (m *mockTaskProgress) Describe(_ string) {}

func (m *mockTaskProgress) Complete() {
	if m.completeFunc != nil {
		m.completeFunc()
	}
}
