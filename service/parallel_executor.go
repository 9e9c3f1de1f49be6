package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds a whole scan, not a single file
	DefaultTimeout = 5 * time.Minute
	// DefaultProgressDescription labels the progress bar
	DefaultProgressDescription = "Scanning files"
)

// TaskError is the failure of one scan task, usually one file
type TaskError struct {
	TaskName string
	Err      error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError lists every task that failed during one Execute call.
// Failed files never stop the others from being scanned.
type AggregatedError struct {
	Errors []TaskError
}

func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d files could not be scanned:\n", len(e.Errors))
	for _, msg := range e.Messages() {
		fmt.Fprintf(&sb, "  %s\n", msg)
	}
	return sb.String()
}

// Unwrap exposes the first failure so errors.Is sees context.DeadlineExceeded
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// Messages returns one "[file] cause" line per failure, sorted by file
func (e *AggregatedError) Messages() []string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	sort.Strings(messages)
	return messages
}

// ParallelExecutorImpl runs per-file scan tasks on a bounded number of
// goroutines under a single deadline
type ParallelExecutorImpl struct {
	mu             sync.RWMutex
	maxConcurrency int
	timeout        time.Duration
	description    string
	progress       domain.ProgressManager
}

// NewParallelExecutor scans with one goroutine per CPU and DefaultTimeout
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultTimeout,
		description:    DefaultProgressDescription,
	}
}

// NewParallelExecutorFromConfig applies performance.max_goroutines and
// performance.timeout_seconds; zero keeps the defaults
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	executor := NewParallelExecutor()
	if cfg == nil {
		return executor
	}
	if cfg.MaxGoroutines > 0 {
		executor.maxConcurrency = cfg.MaxGoroutines
	}
	if cfg.TimeoutSeconds > 0 {
		executor.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return executor
}

// NewParallelExecutorWithProgress also advances pm once per finished file
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	executor := NewParallelExecutorFromConfig(cfg)
	executor.progress = pm
	return executor
}

// Execute scans every enabled task. Tasks that have not started when the
// deadline passes or ctx is cancelled fail with the context error.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	pending := enabledTasks(tasks)
	if len(pending) == 0 {
		return nil
	}

	e.mu.RLock()
	limit, timeout, description := e.maxConcurrency, e.timeout, e.description
	e.mu.RUnlock()

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bar domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		bar = e.progress.StartTask(description, len(pending))
	}
	defer bar.Complete()

	g, gCtx := errgroup.WithContext(scanCtx)
	g.SetLimit(limit)

	var mu sync.Mutex
	var failures []TaskError
	for _, t := range pending {
		t := t
		g.Go(func() error {
			err := runTask(gCtx, t)
			bar.Increment(1)
			if err != nil {
				mu.Lock()
				failures = append(failures, TaskError{TaskName: t.Name(), Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return &AggregatedError{Errors: failures}
	}
	return nil
}

// runTask skips the task once the scan context is done
func runTask(ctx context.Context, t domain.ExecutableTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.Execute(ctx)
	return err
}

// SetMaxConcurrency changes how many files are scanned at once; n <= 0 is ignored
func (e *ParallelExecutorImpl) SetMaxConcurrency(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > 0 {
		e.maxConcurrency = n
	}
}

// SetTimeout changes the deadline of the whole scan; non-positive is ignored
func (e *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timeout > 0 {
		e.timeout = timeout
	}
}

// SetDescription changes the progress bar label; empty is ignored
func (e *ParallelExecutorImpl) SetDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if description != "" {
		e.description = description
	}
}

func enabledTasks(tasks []domain.ExecutableTask) []domain.ExecutableTask {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			enabled = append(enabled, t)
		}
	}
	return enabled
}
