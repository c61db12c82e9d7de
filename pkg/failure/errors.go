package failure

type Severity int

// resolver control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// ClassifiedError is implemented by every stage error so the resolver can
// decide between aborting a whole resolution and degrading a single step.
type ClassifiedError interface {
	error
	Severity() Severity
}
