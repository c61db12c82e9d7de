package fetcher

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

// SchemeMux routes each reference to the fetcher registered for its scheme.
// Bare absolute paths and file URIs go to the local fetcher, http and https
// to the remote one. Any other scheme is rejected with ErrCauseUnsupportedScheme.
type SchemeMux struct {
	local  Fetcher
	remote Fetcher
}

func NewSchemeMux(local Fetcher, remote Fetcher) *SchemeMux {
	return &SchemeMux{local: local, remote: remote}
}

func (m *SchemeMux) Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError) {
	f, err := m.route(ref)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, ref)
}

func (m *SchemeMux) FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	f, err := m.route(ref)
	if err != nil {
		return nil, err
	}
	return f.FetchPrefix(ctx, ref, maxBytes)
}

func (m *SchemeMux) ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError) {
	f, err := m.route(ref)
	if err != nil {
		return nil, err
	}
	return f.ListChildren(ctx, ref)
}

func (m *SchemeMux) route(ref string) (Fetcher, failure.ClassifiedError) {
	var f Fetcher
	switch urlutil.Scheme(ref) {
	case "", "file":
		f = m.local
	case "http", "https":
		f = m.remote
	}
	if f == nil {
		return nil, &FetchError{Message: "no fetcher for " + ref, Cause: ErrCauseUnsupportedScheme}
	}
	return f, nil
}
