package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataIntegrity indicates a violated catalog invariant: broken
	// chunk index contiguity, inverted time offsets, a duplicate URL
	// insert. These are contract violations and abort the operation.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrNoResults indicates retrieval found nothing to answer from.
	// Distinct from a retrieval failure: no answer is synthesised from
	// zero chunks.
	ErrNoResults = errors.New("no matching content in the knowledge base")

	// Acquisition errors. Raised by acquisition collaborators and
	// non-retryable by the core.

	// ErrContentNotFound indicates the remote content does not exist.
	ErrContentNotFound = errors.New("content not found")

	// ErrAccessDenied indicates the remote source refused access.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnextractable indicates the content exists but no usable text
	// could be extracted from it.
	ErrUnextractable = errors.New("content could not be extracted")
)

// Stage identifies the pipeline stage where a failure occurred.
// Every user-visible failure names its stage.
type Stage string

// Pipeline stages.
const (
	StageAcquisition Stage = "acquisition"
	StageChunking    Stage = "chunking"
	StageEmbedding   Stage = "embedding"
	StageRetrieval   Stage = "retrieval"
	StageSynthesis   Stage = "synthesis"
)

// StageError wraps a collaborator error with the pipeline stage it
// occurred in. An ingestion-time stage error is scoped to the single
// item being processed; a query-time stage error aborts the single
// question being answered.
type StageError struct {
	Stage Stage
	Err   error
}

// Error returns the stage-prefixed message.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageErr wraps err with the given stage. Returns nil if err is nil.
func StageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// FailedStage returns the stage recorded in err's chain, or an empty
// string if no stage error is present.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// EmbeddingError classifies an embedding gateway failure.
// Transient failures (rate limits, upstream outages) should be retried
// with backoff; permanent failures (input too long, bad request) abort
// embedding for the affected chunk only.
type EmbeddingError struct {
	Transient bool
	Err       error
}

// Error returns the classified message.
func (e *EmbeddingError) Error() string {
	if e.Transient {
		return fmt.Sprintf("transient embedding failure: %v", e.Err)
	}
	return fmt.Sprintf("permanent embedding failure: %v", e.Err)
}

// Unwrap returns the underlying gateway error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable embedding failure.
func IsTransient(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee) && ee.Transient
}
