package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError   FileErrorCause = "path error"
	ErrCauseNotFound    FileErrorCause = "not found"
	ErrCauseIsDirectory FileErrorCause = "is a directory"
	ErrCauseNotDir      FileErrorCause = "not a directory"
	ErrCausePermission  FileErrorCause = "permission denied"
	ErrCauseReadError   FileErrorCause = "read error"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	Path      string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Path)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
