package playlist

// Result is the outcome of resolving a single reference.
type Result int

const (
	// Success means at least a playlist envelope or an entry was emitted, or
	// the resource was a playlist with nothing in it.
	Success Result = iota
	// Unhandled means the reference is not a playlist this resolver understands.
	Unhandled
	// Error means the reference looked like a playlist but could not be read.
	Error
	// Ignored means the reference is a known non-playlist type.
	Ignored
	// Cancelled means the caller stopped the resolution.
	Cancelled
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Unhandled:
		return "unhandled"
	case Error:
		return "error"
	case Ignored:
		return "ignored"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
