package resolver_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/fetchertest"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/resolver"
)

type resolveRecord struct {
	callID string
	ref    string
	result string
	depth  int
}

type errorRecord struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
}

// metadataSpy keeps the resolve and error events the resolver reports.
type metadataSpy struct {
	mu       sync.Mutex
	resolves []resolveRecord
	errors   []errorRecord
	sniffs   []string
}

func (s *metadataSpy) RecordError(_ time.Time, packageName string, action string, cause metadata.ErrorCause, _ string, _ []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errorRecord{packageName: packageName, action: action, cause: cause})
}

func (s *metadataSpy) RecordFetch(metadata.FetchSource, string, int, time.Duration, int, int) {}

func (s *metadataSpy) RecordSniff(_ string, ref string, classification string, _ int, _ string, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sniffs = append(s.sniffs, ref+" "+classification)
}

func (s *metadataSpy) RecordResolve(callID string, ref string, result string, depth int, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolves = append(s.resolves, resolveRecord{callID: callID, ref: ref, result: result, depth: depth})
}

func (s *metadataSpy) RecordArtifact(string, []metadata.Attribute) {}

func (s *metadataSpy) Resolves() []resolveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]resolveRecord(nil), s.resolves...)
}

func (s *metadataSpy) Errors() []errorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]errorRecord(nil), s.errors...)
}

func newResolver(f *fetchertest.Fetcher) (*resolver.Resolver, *metadataSpy) {
	spy := &metadataSpy{}
	return resolver.New(f, spy), spy
}

// kinds flattens events into "kind ref" strings for compact assertions.
func kinds(events []playlist.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind.String()+" "+e.Ref)
	}
	return out
}
