package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies pipeline failures for retry and propagation policy.
// Only FatalPipeline and Persistence escalate to a stream-terminating
// error; everything else stays contained in its own stage.
type ErrorKind string

const (
	// KindTransient marks rate limits, timeouts and network failures.
	// Retried a bounded number of times with backoff at the stage level.
	KindTransient ErrorKind = "transient"

	// KindSchemaMismatch marks a collaborator response that did not parse
	// into the expected structure. Retried once, then the stage degrades
	// to a placeholder (or aborts the run if the stage is the aggregate).
	KindSchemaMismatch ErrorKind = "schema_mismatch"

	// KindPersistence marks a failed history write after a successful
	// aggregate. Terminal, but already-streamed events stay valid.
	KindPersistence ErrorKind = "persistence"

	// KindFatal marks an unsatisfiable aggregate barrier. Terminal.
	KindFatal ErrorKind = "fatal"

	// KindUnknown marks anything the taxonomy does not recognize.
	KindUnknown ErrorKind = "unknown"
)

// ErrStageTimeout is wrapped into a TransientError when a stage's
// independent timeout expires.
var ErrStageTimeout = errors.New("stage timed out")

// TransientError wraps a retryable collaborator failure. RetryAfter is the
// provider-specified delay, zero when the provider gave none.
type TransientError struct {
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient collaborator error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// SchemaMismatchError wraps a collaborator response that failed schema
// validation at the collaborator-interface edge.
type SchemaMismatchError struct {
	Op     string
	Detail string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: schema mismatch: %s", e.Op, e.Detail)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed history append.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history write failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FatalPipelineError means the aggregate barrier cannot produce output and
// the run must abort without persisting.
type FatalPipelineError struct {
	Err error
}

func (e *FatalPipelineError) Error() string {
	return fmt.Sprintf("pipeline aborted: %v", e.Err)
}

func (e *FatalPipelineError) Unwrap() error { return e.Err }

// Classify maps an error onto the taxonomy using errors.As, checking the
// most specific (terminal) types first.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var fatal *FatalPipelineError
	if errors.As(err, &fatal) {
		return KindFatal
	}
	var persist *PersistenceError
	if errors.As(err, &persist) {
		return KindPersistence
	}
	var schema *SchemaMismatchError
	if errors.As(err, &schema) {
		return KindSchemaMismatch
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return KindTransient
	}
	return KindUnknown
}

// Retryable reports whether a stage-level retry may help.
func Retryable(err error) bool {
	return Classify(err) == KindTransient
}
