package playlist

import (
	"context"
	"sync"
)

/*
Sink receives the events of one resolution, synchronously and in order.

For every playlist the resolver enters, PlaylistStarted is delivered before
any of its entries and PlaylistEnded after all of them, with nested
playlists bracketed inside their parent. The ref of an entry event is the
entry's resolved reference.
*/
type Sink interface {
	PlaylistStarted(ref string, meta Entry)
	EntryParsed(ref string, meta Entry)
	PlaylistEnded(ref string)
}

type EventKind int

const (
	EventPlaylistStarted EventKind = iota
	EventEntryParsed
	EventPlaylistEnded
)

func (k EventKind) String() string {
	switch k {
	case EventPlaylistStarted:
		return "playlist-started"
	case EventEntryParsed:
		return "entry-parsed"
	case EventPlaylistEnded:
		return "playlist-ended"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	Ref  string
	Meta Entry
}

// RecordingSink keeps every event in memory.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) PlaylistStarted(ref string, meta Entry) {
	s.append(Event{Kind: EventPlaylistStarted, Ref: ref, Meta: meta})
}

func (s *RecordingSink) EntryParsed(ref string, meta Entry) {
	s.append(Event{Kind: EventEntryParsed, Ref: ref, Meta: meta})
}

func (s *RecordingSink) PlaylistEnded(ref string) {
	s.append(Event{Kind: EventPlaylistEnded, Ref: ref})
}

func (s *RecordingSink) append(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of everything recorded so far.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Entries returns only the entry events.
func (s *RecordingSink) Entries() []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Kind == EventEntryParsed {
			out = append(out, e)
		}
	}
	return out
}

// ChannelSink forwards events to a channel. Sends block until the consumer
// receives them or ctx is done; events after ctx is done are dropped.
type ChannelSink struct {
	ctx    context.Context
	events chan<- Event
}

func NewChannelSink(ctx context.Context, events chan<- Event) *ChannelSink {
	return &ChannelSink{ctx: ctx, events: events}
}

func (s *ChannelSink) PlaylistStarted(ref string, meta Entry) {
	s.send(Event{Kind: EventPlaylistStarted, Ref: ref, Meta: meta})
}

func (s *ChannelSink) EntryParsed(ref string, meta Entry) {
	s.send(Event{Kind: EventEntryParsed, Ref: ref, Meta: meta})
}

func (s *ChannelSink) PlaylistEnded(ref string) {
	s.send(Event{Kind: EventPlaylistEnded, Ref: ref})
}

func (s *ChannelSink) send(e Event) {
	if s.ctx.Err() != nil {
		return
	}
	select {
	case <-s.ctx.Done():
	case s.events <- e:
	}
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) PlaylistStarted(string, Entry) {}
func (NoopSink) EntryParsed(string, Entry)     {}
func (NoopSink) PlaylistEnded(string)          {}
