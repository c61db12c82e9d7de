package markup

import (
	"fmt"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseLexical      ParseErrorCause = "lexical error"
	ErrCauseNoRoot       ParseErrorCause = "no root element"
	ErrCauseMalformedTag ParseErrorCause = "malformed tag"
)

type ParseError struct {
	Message string
	Cause   ParseErrorCause
	Offset  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup error: %s at offset %d: %s", e.Cause, e.Offset, e.Message)
}

// Broken documents never improve on a second attempt.
func (e *ParseError) Severity() failure.Severity {
	return failure.SeverityFatal
}
