// Package handlertest provides doubles for exercising handlers in isolation.
package handlertest

import (
	"context"
	"sync"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
)

type Call struct {
	Ref  string
	Base string
}

// Nested records nested resolutions and answers them from a table. Unknown
// references resolve to playlist.Unhandled.
type Nested struct {
	mu      sync.Mutex
	results map[string]playlist.Result
	calls   []Call
	// OnResolve, when set, runs for every call before the result is returned,
	// so tests can emit the nested playlist's own events.
	OnResolve func(ctx context.Context, ref string)
}

func NewNested() *Nested {
	return &Nested{results: make(map[string]playlist.Result)}
}

func (n *Nested) Returns(ref string, result playlist.Result) *Nested {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results[ref] = result
	return n
}

func (n *Nested) Resolve(ctx context.Context, ref string, base string) playlist.Result {
	n.mu.Lock()
	n.calls = append(n.calls, Call{Ref: ref, Base: base})
	result, ok := n.results[ref]
	hook := n.OnResolve
	n.mu.Unlock()

	if hook != nil {
		hook(ctx, ref)
	}
	if !ok {
		return playlist.Unhandled
	}
	return result
}

func (n *Nested) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Call(nil), n.calls...)
}

// Refs returns the references of every call, in order.
func (n *Nested) Refs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	refs := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		refs = append(refs, c.Ref)
	}
	return refs
}
