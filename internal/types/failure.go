package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// FAILURE TAXONOMY
// =============================================================================
//
// Every component boundary reports failures as *Failure. Pipeline-critical kinds
// (validation, auth, synthesis) propagate to the caller unchanged. Malformed
// responses and non-fatal degradations are normally absorbed where they occur
// and only surface here for logging and metrics.

// FailureKind classifies a failure.
type FailureKind string

const (
	KindValidation        FailureKind = "validation_failure"
	KindAuthExpired       FailureKind = "auth_expired"
	KindMalformedResponse FailureKind = "malformed_response"
	KindSynthesis         FailureKind = "synthesis_failure"
	KindNonFatal          FailureKind = "non_fatal_degradation"
)

// Sentinel errors, one per kind, for errors.Is.
var (
	ErrValidation        = errors.New("validation failure")
	ErrAuthExpired       = errors.New("generation credential expired or invalid")
	ErrMalformedResponse = errors.New("malformed generation response")
	ErrSynthesis         = errors.New("synthesis failure")
	ErrDegraded          = errors.New("non-fatal degradation")
)

func (k FailureKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindAuthExpired:
		return ErrAuthExpired
	case KindMalformedResponse:
		return ErrMalformedResponse
	case KindNonFatal:
		return ErrDegraded
	default:
		return ErrSynthesis
	}
}

// Failure is a classified error with the operation that produced it.
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

// NewFailure builds a Failure. err may be nil.
func NewFailure(kind FailureKind, op string, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Err: err}
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Op, f.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind.sentinel(), f.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.sentinel()}
	}
	return []error{f.Kind.sentinel(), f.Err}
}

// KindOf returns the kind of the first Failure in err's chain.
// Unclassified non-nil errors are synthesis failures.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindSynthesis
}
