package handler

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

/*
Responsibilities

- Define the capability every playlist format implements
- Carry one invocation's inputs: reference, base, content and the callbacks
  a format needs to report entries and follow nested references

A handler never decides recursion policy. It hands every nested reference to
Request.Nested and reports the reference as a plain entry when the nested
resolution does not succeed.
*/

// Handler turns the content of one resource into playlist events.
type Handler interface {
	// Name identifies the handler in logs and forced dispatch.
	Name() string
	// Unsafe handlers touch local devices or the filesystem and are skipped
	// when unsafe handlers are disabled.
	Unsafe() bool
	// Identify inspects content and reports whether this handler understands it.
	Identify(content []byte) bool
	// Handle emits the playlist envelope and its entries to Request.Sink.
	Handle(ctx context.Context, req Request) (playlist.Result, failure.ClassifiedError)
}

// Nested resolves a reference discovered inside a playlist one level deeper.
// Events of the nested resolution are delivered to the same sink before
// Resolve returns.
type Nested interface {
	Resolve(ctx context.Context, ref string, base string) playlist.Result
}

// NestedFunc adapts a function to Nested.
type NestedFunc func(ctx context.Context, ref string, base string) playlist.Result

func (f NestedFunc) Resolve(ctx context.Context, ref string, base string) playlist.Result {
	return f(ctx, ref, base)
}

// Request is one handler invocation. Base is what relative references inside
// the content resolve against; when empty, Ref is used.
type Request struct {
	Ref            string
	Base           string
	Content        []byte
	Classification sniff.Classification
	Sink           playlist.Sink
	Nested         Nested
	// Fetcher is available to handlers that need more than the content, such
	// as directory listings or a secondary page fetch.
	Fetcher fetcher.Fetcher
}

func (r Request) BaseRef() string {
	if r.Base != "" {
		return r.Base
	}
	return r.Ref
}

// ResolveOrEmit follows a nested reference and falls back to reporting it as
// an entry when it is not a playlist of its own. It returns false when the
// resolution was cancelled.
func ResolveOrEmit(ctx context.Context, req Request, ref string, entry *playlist.Builder) bool {
	switch req.Nested.Resolve(ctx, ref, req.Ref) {
	case playlist.Success:
		return true
	case playlist.Cancelled:
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	entry.Set(playlist.FieldURI, ref)
	req.Sink.EntryParsed(ref, entry.Build())
	return true
}
