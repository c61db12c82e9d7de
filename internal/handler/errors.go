package handler

import (
	"fmt"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type HandlerErrorCause string

const (
	ErrCauseMalformedContent HandlerErrorCause = "malformed content"
	ErrCauseRootMismatch     HandlerErrorCause = "unexpected root element"
	ErrCauseFetchFailed      HandlerErrorCause = "secondary fetch failed"
	ErrCauseNoReference      HandlerErrorCause = "no reference found"
)

type HandlerError struct {
	Message   string
	Retryable bool
	Cause     HandlerErrorCause
	Handler   string
	// Err is the underlying failure, if any.
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler error: %s: %s", e.Handler, e.Cause, e.Message)
}

func (e *HandlerError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *HandlerError) IsRetryable() bool {
	return e.Retryable
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Malformed wraps a parse failure of the handler's own document.
func Malformed(handlerName string, err error) *HandlerError {
	return &HandlerError{
		Message: err.Error(),
		Cause:   ErrCauseMalformedContent,
		Handler: handlerName,
		Err:     err,
	}
}
