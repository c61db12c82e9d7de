package fetcher

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

// Fetcher retrieves the bytes behind a reference. Implementations must report
// missing resources and directories with distinguishable causes (see
// IsNotFound and IsDirectory) and honour ctx cancellation.
type Fetcher interface {
	// Fetch returns the complete content.
	Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError)
	// FetchPrefix returns at most maxBytes from the start of the content.
	FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError)
	// ListChildren returns the child references of a directory-like reference.
	ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError)
}
