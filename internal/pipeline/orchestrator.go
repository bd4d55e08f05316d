package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillmem/quill/internal/metrics"
)

const (
	// DefaultMaxRetries bounds transient-failure retries per step (total
	// attempts = retries + 1).
	DefaultMaxRetries = 2

	// DefaultBackoffBase is multiplied by the attempt number for the
	// linear retry delay.
	DefaultBackoffBase = 200 * time.Millisecond
)

// Orchestrator drives a pipeline state through its remaining steps using a
// registry of handlers keyed by step name. The orchestrator itself holds no
// per-run state and is safe to share across concurrently executing
// pipelines.
type Orchestrator struct {
	handlers    map[string]StepHandler
	maxRetries  int
	backoffBase time.Duration
	logger      *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMaxRetries overrides the per-step transient retry count.
func WithMaxRetries(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.maxRetries = n
	}
}

// WithBackoffBase overrides the linear backoff unit.
func WithBackoffBase(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.backoffBase = d
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates an orchestrator over the given handlers.
func NewOrchestrator(handlers []StepHandler, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		handlers:    make(map[string]StepHandler, len(handlers)),
		maxRetries:  DefaultMaxRetries,
		backoffBase: DefaultBackoffBase,
		logger:      slog.Default(),
	}
	for _, h := range handlers {
		o.handlers[h.StepName()] = h
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the state's remaining steps in order, retrying transient
// failures with linear backoff. On success the state is marked complete.
func (o *Orchestrator) Run(ctx context.Context, state *State) error {
	start := time.Now()

	for len(state.RemainingSteps) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		step := state.RemainingSteps[0]
		handler, ok := o.handlers[step]
		if !ok {
			state.Log("orchestrator", fmt.Sprintf("no handler registered for step %s", step))
			return &StepFailedError{Step: step, Outcome: FatalError,
				Err: fmt.Errorf("no handler registered for step %s", step)}
		}

		if err := o.runStep(ctx, state, step, handler); err != nil {
			return err
		}

		state.CompletedSteps = append(state.CompletedSteps, step)
		state.RemainingSteps = state.RemainingSteps[1:]
	}

	state.Complete = true
	state.UploadComplete = true
	state.Touch()

	elapsed := time.Since(start)
	state.Log("orchestrator", fmt.Sprintf("pipeline complete in %s", elapsed))
	o.logger.Info("pipeline complete",
		"document_id", state.DocumentID,
		"index", state.Index,
		"steps", len(state.CompletedSteps),
		"duration", elapsed)
	metrics.PipelineCompleted(elapsed)

	return nil
}

// runStep invokes one handler with the bounded retry loop.
func (o *Orchestrator) runStep(ctx context.Context, state *State, step string, handler StepHandler) error {
	stepStart := time.Now()

	for attempt := 1; ; attempt++ {
		state.Log(step, fmt.Sprintf("attempt %d starting", attempt))
		o.logger.Debug("step starting",
			"step", step,
			"attempt", attempt,
			"document_id", state.DocumentID)

		outcome, err := handler.Invoke(ctx, state)

		// Cancellation is propagated, never retried.
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			state.Log(step, "cancelled")
			return err
		}

		switch {
		case outcome == Success && err == nil:
			elapsed := time.Since(stepStart)
			state.Log(step, fmt.Sprintf("succeeded on attempt %d in %s", attempt, elapsed))
			o.logger.Info("step succeeded",
				"step", step,
				"attempt", attempt,
				"duration", elapsed)
			metrics.StepCompleted(step, elapsed)
			return nil

		case outcome == FatalError:
			state.Log(step, fmt.Sprintf("failed fatally: %v", err))
			o.logger.Error("step failed", "step", step, "outcome", outcome.String(), "error", err)
			metrics.StepFailed(step)
			return &StepFailedError{Step: step, Outcome: FatalError, Err: err}

		case attempt > o.maxRetries:
			state.Log(step, fmt.Sprintf("retries exhausted after attempt %d: %v", attempt, err))
			o.logger.Error("step retries exhausted",
				"step", step,
				"attempts", attempt,
				"error", err)
			metrics.StepFailed(step)
			if outcome == TransientError {
				return &StepFailedError{Step: step, Outcome: TransientError, Err: err}
			}
			if err != nil {
				return fmt.Errorf("step %s failed after %d attempts; %w", step, attempt, err)
			}
			return &StepFailedError{Step: step, Outcome: outcome, Err: err}

		default:
			state.Log(step, fmt.Sprintf("attempt %d failed, retrying: %v", attempt, err))
			o.logger.Warn("step retrying",
				"step", step,
				"attempt", attempt,
				"error", err)
			metrics.StepRetried(step)
			if err := o.backoff(ctx, attempt); err != nil {
				return err
			}
		}
	}
}

// backoff sleeps for the linear retry delay, aborting promptly on
// cancellation.
func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt) * o.backoffBase

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
