// Package build runs the pip install step and the compiler for one build at a
// time and mirrors their output into a Sink.
package build

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nuitka-toolkit/internal/command"
	"nuitka-toolkit/internal/events"
	"nuitka-toolkit/internal/logger"

	"github.com/google/uuid"
)

var ErrBuildRunning = errors.New("a build is already running")

const (
	EventStarted   = "build.started"
	EventFinished  = "build.finished"
	EventFailed    = "build.failed"
	EventCancelled = "build.cancelled"
)

// Sink receives output lines. Implementations decide how the UI is refreshed.
type Sink interface {
	Append(line string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(line string)

func (f SinkFunc) Append(line string) { f(line) }

// Finalizer runs after a successful compile, e.g. to package the output.
type Finalizer interface {
	Finalize(ctx context.Context, plan command.Plan, sink Sink) error
}

type Result struct {
	RunID     string
	ExitCode  int
	Cancelled bool
	Duration  time.Duration
	Err       error
}

// Succeeded reports a clean compiler exit.
func (r *Result) Succeeded() bool {
	return r.Err == nil && !r.Cancelled && r.ExitCode == 0
}

// Session supervises at most one build. The running flag is guarded by mu;
// the stop flag is read by the worker once per output line.
type Session struct {
	logger    logger.Logger
	publisher events.Publisher
	finalizer Finalizer

	mu      sync.Mutex
	running bool
	runID   string
	cancel  context.CancelFunc

	stop atomic.Bool
}

func NewSession(log logger.Logger, publisher events.Publisher) *Session {
	return &Session{
		logger:    log,
		publisher: publisher,
	}
}

// SetFinalizer installs the post-build step. Nil disables it.
func (s *Session) SetFinalizer(f Finalizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizer = f
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop asks the running build to terminate. The compiler is only terminated
// when its next output line arrives; a silent process keeps running.
func (s *Session) Stop() {
	s.stop.Store(true)
	s.logger.Info("BuildSession", "stop requested", map[string]interface{}{
		"run_id": s.currentRunID(),
	})
}

// Shutdown terminates any running build immediately. Used on application exit.
func (s *Session) Shutdown() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	s.stop.Store(true)
	if cancel != nil {
		cancel()
	}
}

func (s *Session) currentRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Start launches the build on a background goroutine. done, if not nil, is
// called from that goroutine with the result.
func (s *Session) Start(ctx context.Context, plan command.Plan, sink Sink, done func(*Result)) (string, error) {
	runCtx, runID, err := s.claim(ctx)
	if err != nil {
		return "", err
	}

	go func() {
		result := s.execute(runCtx, runID, plan, sink)
		if done != nil {
			done(result)
		}
	}()
	return runID, nil
}

// Run executes the build on the calling goroutine.
func (s *Session) Run(ctx context.Context, plan command.Plan, sink Sink) (*Result, error) {
	runCtx, runID, err := s.claim(ctx)
	if err != nil {
		return nil, err
	}
	return s.execute(runCtx, runID, plan, sink), nil
}

func (s *Session) claim(ctx context.Context) (context.Context, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, "", ErrBuildRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.runID = uuid.NewString()
	s.cancel = cancel
	s.stop.Store(false)
	return runCtx, s.runID, nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
	s.runID = ""
	s.cancel = nil
}

func (s *Session) execute(ctx context.Context, runID string, plan command.Plan, sink Sink) *Result {
	defer s.release()

	start := time.Now()
	result := &Result{RunID: runID}
	fields := map[string]interface{}{"run_id": runID}

	s.publish(EventStarted, runID, nil)
	s.logger.Info("BuildSession", "build started", map[string]interface{}{
		"run_id":  runID,
		"install": plan.HasInstall(),
		"argc":    len(plan.Compile),
	})
	sink.Append(MarkerStarted)

	if plan.HasInstall() {
		sink.Append(MarkerInstall + " " + strings.Join(plan.Install, " "))
		out, err := runStreaming(ctx, plan.Install, sink, &s.stop)
		if err == nil && !out.cancelled && out.exitCode != 0 {
			err = fmt.Errorf("pip install exited with code %d", out.exitCode)
		}
		if err != nil {
			return s.fail(result, start, sink, fmt.Errorf("install: %w", err))
		}
	}

	// A stop during the install step, or right after it, skips the compiler.
	if s.stop.Load() {
		return s.cancelled(result, start, sink)
	}

	out, err := runStreaming(ctx, plan.Compile, sink, &s.stop)
	result.Duration = time.Since(start)
	if err != nil {
		return s.fail(result, start, sink, err)
	}

	result.ExitCode = out.exitCode
	if out.cancelled {
		return s.cancelled(result, start, sink)
	}

	if finalizer := s.finalizerOrNil(); result.ExitCode == 0 && finalizer != nil {
		if err := finalizer.Finalize(ctx, plan, sink); err != nil {
			sink.Append(MarkerError + " " + err.Error())
			s.logger.Error("BuildSession", err, fields)
		}
	}

	sink.Append(fmt.Sprintf("%s exit code %d", MarkerFinished, result.ExitCode))
	s.publish(EventFinished, runID, map[string]interface{}{
		"exit_code": result.ExitCode,
		"duration":  result.Duration,
	})
	s.logger.Info("BuildSession", "build finished", map[string]interface{}{
		"run_id":      runID,
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result
}

func (s *Session) cancelled(result *Result, start time.Time, sink Sink) *Result {
	result.Cancelled = true
	result.Duration = time.Since(start)

	sink.Append(MarkerCancelled)
	s.publish(EventCancelled, result.RunID, nil)
	s.logger.Info("BuildSession", "build cancelled", map[string]interface{}{"run_id": result.RunID})
	return result
}

func (s *Session) finalizerOrNil() Finalizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizer
}

func (s *Session) fail(result *Result, start time.Time, sink Sink, err error) *Result {
	result.Err = err
	result.ExitCode = -1
	result.Duration = time.Since(start)

	sink.Append(MarkerError + " " + err.Error())
	s.publish(EventFailed, result.RunID, map[string]interface{}{"error": err.Error()})
	s.logger.Error("BuildSession", err, map[string]interface{}{"run_id": result.RunID})
	return result
}

func (s *Session) publish(eventType, runID string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if data == nil {
		data = make(map[string]interface{}, 1)
	}
	data["run_id"] = runID
	s.publisher.Publish(events.Event{Type: eventType, Data: data})
}
