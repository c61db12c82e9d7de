package handler

import (
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
)

// Registry holds the two dispatch tables. It is read-only once built and may
// be shared by concurrent resolutions.
type Registry struct {
	unambiguous map[sniff.Classification]Handler
	ambiguous   map[sniff.Classification][]Handler
	byName      map[string]Handler
}

// Unambiguous returns the single handler trusted for a classification.
func (r *Registry) Unambiguous(c sniff.Classification) (Handler, bool) {
	h, ok := r.unambiguous[c]
	return h, ok
}

// Candidates returns, in trial order, the handlers that must identify the
// content before being trusted with it.
func (r *Registry) Candidates(c sniff.Classification) []Handler {
	return r.ambiguous[c]
}

// ByName looks up any registered handler.
func (r *Registry) ByName(name string) (Handler, bool) {
	h, ok := r.byName[name]
	return h, ok
}

type RegistryBuilder struct {
	unambiguous map[sniff.Classification]Handler
	ambiguous   map[sniff.Classification][]Handler
	byName      map[string]Handler
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		unambiguous: make(map[sniff.Classification]Handler),
		ambiguous:   make(map[sniff.Classification][]Handler),
		byName:      make(map[string]Handler),
	}
}

// Unambiguous maps classifications straight to h. A later call for the same
// classification replaces the earlier one.
func (b *RegistryBuilder) Unambiguous(h Handler, classifications ...sniff.Classification) *RegistryBuilder {
	b.byName[h.Name()] = h
	for _, c := range classifications {
		b.unambiguous[c] = h
	}
	return b
}

// Ambiguous appends h to the candidate list of each classification.
func (b *RegistryBuilder) Ambiguous(h Handler, classifications ...sniff.Classification) *RegistryBuilder {
	b.byName[h.Name()] = h
	for _, c := range classifications {
		b.ambiguous[c] = append(b.ambiguous[c], h)
	}
	return b
}

func (b *RegistryBuilder) Build() *Registry {
	r := &Registry{
		unambiguous: make(map[sniff.Classification]Handler, len(b.unambiguous)),
		ambiguous:   make(map[sniff.Classification][]Handler, len(b.ambiguous)),
		byName:      make(map[string]Handler, len(b.byName)),
	}
	for c, h := range b.unambiguous {
		r.unambiguous[c] = h
	}
	for c, hs := range b.ambiguous {
		r.ambiguous[c] = append([]Handler(nil), hs...)
	}
	for n, h := range b.byName {
		r.byName[n] = h
	}
	return r
}
