package fetcher_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/retry"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
)

// recordingSink is a test double for metadata.MetadataSink
type recordingSink struct {
	mu          sync.Mutex
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	source     metadata.FetchSource
	ref        string
	httpStatus int
	sizeByte   int
	attempts   int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (s *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorEvents = append(s.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

func (s *recordingSink) RecordFetch(
	source metadata.FetchSource,
	ref string,
	httpStatus int,
	duration time.Duration,
	sizeByte int,
	attempts int,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchEvents = append(s.fetchEvents, fetchEvent{
		source:     source,
		ref:        ref,
		httpStatus: httpStatus,
		sizeByte:   sizeByte,
		attempts:   attempts,
	})
}

func (s *recordingSink) RecordSniff(string, string, string, int, string, int) {}

func (s *recordingSink) RecordResolve(string, string, string, int, time.Duration) {}

func (s *recordingSink) RecordArtifact(string, []metadata.Attribute) {}

func (s *recordingSink) errors() []errorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]errorEvent(nil), s.errorEvents...)
}

func (s *recordingSink) fetches() []fetchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fetchEvent(nil), s.fetchEvents...)
}

func fastRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		time.Millisecond,
		0,
		1,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}
