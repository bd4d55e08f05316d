package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// newID returns a random identifier for documents and executions.
func newID() string {
	return uuid.NewString()
}

// artifactID derives a deterministic identifier for an artifact produced at
// a given position within a step. Re-running the step on the same execution
// yields the same ID, which keeps handler retries and upserts idempotent.
func artifactID(executionID, step string, ordinal int, name string) string {
	seed := fmt.Sprintf("%s/%s/%03d/%s", executionID, step, ordinal, name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
