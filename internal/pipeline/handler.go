package pipeline

import (
	"context"
	"fmt"
)

// Step names for the default ingestion plan.
const (
	StepExtraction = "text-extraction"
	StepChunking   = "text-chunking"
	StepEmbeddings = "generate-embeddings"
	StepSave       = "save-records"
)

// DefaultSteps returns the default ingestion step order.
func DefaultSteps() []string {
	return []string{StepExtraction, StepChunking, StepEmbeddings, StepSave}
}

// Outcome is a step handler's verdict for one invocation.
type Outcome int

const (
	// Success advances the pipeline to the next step.
	Success Outcome = iota

	// TransientError asks the orchestrator to retry the step.
	TransientError

	// FatalError terminates the pipeline for this document.
	FatalError
)

// String returns the outcome's name.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case TransientError:
		return "transient-error"
	case FatalError:
		return "fatal-error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StepHandler performs one unit of pipeline work.
//
// Handlers may append artifacts and context entries but must not remove
// them, and must be retry-safe: invoking a handler twice on the same state
// produces an equivalent state. Artifact identifiers are deterministic
// within one execution and persisted records are upserted by artifact ID.
type StepHandler interface {
	// StepName returns the stable step identifier the handler registers
	// under.
	StepName() string

	// Invoke executes the step against the state. A nil error with
	// Success advances the pipeline; TransientError (with or without an
	// error) is retried; FatalError or a context error terminates the
	// run.
	Invoke(ctx context.Context, state *State) (Outcome, error)
}

// StepFailedError reports a step that exhausted its retries or failed
// fatally.
type StepFailedError struct {
	Step    string
	Outcome Outcome
	Err     error
}

// Error implements the error interface.
func (e *StepFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline step %q failed with outcome %s; %v", e.Step, e.Outcome, e.Err)
	}
	return fmt.Sprintf("pipeline step %q failed with outcome %s", e.Step, e.Outcome)
}

// Unwrap returns the underlying handler error.
func (e *StepFailedError) Unwrap() error {
	return e.Err
}
