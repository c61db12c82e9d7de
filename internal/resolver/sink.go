package resolver

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
)

// guardedSink stops forwarding the moment the call's context is done, so no
// event follows the cancellation point, not even the end of a playlist that
// was already started.
type guardedSink struct {
	ctx  context.Context
	next playlist.Sink
}

func newGuardedSink(ctx context.Context, next playlist.Sink) *guardedSink {
	if next == nil {
		next = playlist.NoopSink{}
	}
	return &guardedSink{ctx: ctx, next: next}
}

func (s *guardedSink) PlaylistStarted(ref string, meta playlist.Entry) {
	if s.ctx.Err() != nil {
		return
	}
	s.next.PlaylistStarted(ref, meta)
}

func (s *guardedSink) EntryParsed(ref string, meta playlist.Entry) {
	if s.ctx.Err() != nil {
		return
	}
	s.next.EntryParsed(ref, meta)
}

func (s *guardedSink) PlaylistEnded(ref string) {
	if s.ctx.Err() != nil {
		return
	}
	s.next.PlaylistEnded(ref)
}
