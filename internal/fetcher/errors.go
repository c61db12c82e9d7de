package fetcher

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestForbidden      FetchErrorCause = "forbidden"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
	ErrCauseRequest4xx            FetchErrorCause = "4xx"
	ErrCauseNotFound              FetchErrorCause = "not found"
	ErrCauseIsDirectory           FetchErrorCause = "is a directory"
	ErrCauseNotDirectory          FetchErrorCause = "not a directory"
	ErrCauseUnsupportedScheme     FetchErrorCause = "unsupported scheme"
	ErrCauseInvalidReference      FetchErrorCause = "invalid reference"
	ErrCauseCancelled             FetchErrorCause = "cancelled"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

func hasCause(err error, cause FetchErrorCause) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.Cause == cause
}

func IsNotFound(err error) bool {
	return hasCause(err, ErrCauseNotFound)
}

func IsDirectory(err error) bool {
	return hasCause(err, ErrCauseIsDirectory)
}

func IsCancelled(err error) bool {
	return hasCause(err, ErrCauseCancelled)
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseRequest5xx, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestTooMany, ErrCauseRequestForbidden:
		return metadata.CausePolicyDisallow
	case ErrCauseNotFound, ErrCauseIsDirectory, ErrCauseNotDirectory, ErrCauseRequest4xx:
		return metadata.CauseResourceMissing
	case ErrCauseCancelled:
		return metadata.CauseCancelled
	default:
		return metadata.CauseUnknown
	}
}
