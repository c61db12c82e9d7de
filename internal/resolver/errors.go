package resolver

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type ResolveErrorCause string

const (
	ErrCauseDepthExceeded    ResolveErrorCause = "recursion depth exceeded"
	ErrCauseInvalidReference ResolveErrorCause = "invalid reference"
	ErrCauseFetchFailed      ResolveErrorCause = "fetch failed"
	ErrCauseHandlerFailed    ResolveErrorCause = "handler failed"
	ErrCauseUnsafeDisabled   ResolveErrorCause = "unsafe handler disabled"
	ErrCauseCancelled        ResolveErrorCause = "cancelled"
)

type ResolveError struct {
	Message string
	Cause   ResolveErrorCause
	Ref     string
	// Err is the stage error behind the failure, if any.
	Err failure.ClassifiedError
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve error: %s: %s (%s)", e.Cause, e.Message, e.Ref)
}

func (e *ResolveError) Severity() failure.Severity {
	if e.Err != nil {
		return e.Err.Severity()
	}
	return failure.SeverityFatal
}

func (e *ResolveError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// mapResolveErrorToMetadataCause maps resolver error semantics to the
// canonical metadata.ErrorCause table. Observational only.
func mapResolveErrorToMetadataCause(err *ResolveError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDepthExceeded:
		return metadata.CauseInvariantViolation
	case ErrCauseInvalidReference:
		return metadata.CauseContentInvalid
	case ErrCauseUnsafeDisabled:
		return metadata.CausePolicyDisallow
	case ErrCauseCancelled:
		return metadata.CauseCancelled
	case ErrCauseFetchFailed:
		return mapFetchFailure(err.Err)
	case ErrCauseHandlerFailed:
		return mapHandlerFailure(err.Err)
	default:
		return metadata.CauseUnknown
	}
}

func mapFetchFailure(err error) metadata.ErrorCause {
	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		return metadata.CauseUnknown
	}
	switch fetchErr.Cause {
	case fetcher.ErrCauseNotFound, fetcher.ErrCauseNotDirectory, fetcher.ErrCauseRequest4xx:
		return metadata.CauseResourceMissing
	case fetcher.ErrCauseRequestForbidden, fetcher.ErrCauseRequestTooMany, fetcher.ErrCauseUnsupportedScheme:
		return metadata.CausePolicyDisallow
	case fetcher.ErrCauseCancelled:
		return metadata.CauseCancelled
	case fetcher.ErrCauseInvalidReference:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseNetworkFailure
	}
}

func mapHandlerFailure(err error) metadata.ErrorCause {
	var handlerErr *handler.HandlerError
	if !errors.As(err, &handlerErr) {
		return metadata.CauseUnknown
	}
	switch handlerErr.Cause {
	case handler.ErrCauseMalformedContent, handler.ErrCauseRootMismatch, handler.ErrCauseNoReference:
		return metadata.CauseContentInvalid
	case handler.ErrCauseFetchFailed:
		return mapFetchFailure(handlerErr.Err)
	default:
		return metadata.CauseUnknown
	}
}
