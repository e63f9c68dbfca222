package llm

import "errors"

// The client classifies every failure as transient or fatal. Transient
// failures (network errors, rate limits, server-side 5xx) are retried
// within the configured attempt budget; fatal failures (bad credentials,
// malformed requests) abort the call immediately.

// TransientError marks a failure worth retrying.
type TransientError struct {
	cause error
}

func (e *TransientError) Error() string { return e.cause.Error() }

func (e *TransientError) Unwrap() error { return e.cause }

// NewTransientError classifies err as retryable.
func NewTransientError(err error) error {
	return &TransientError{cause: err}
}

// FatalError marks a failure that no retry can recover.
type FatalError struct {
	cause error
}

func (e *FatalError) Error() string { return e.cause.Error() }

func (e *FatalError) Unwrap() error { return e.cause }

// NewFatalError classifies err as non-retryable.
func NewFatalError(err error) error {
	return &FatalError{cause: err}
}

// IsFatal reports whether err was classified fatal anywhere in its chain.
// The retry loop treats everything else, unclassified errors included, as
// retryable.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
