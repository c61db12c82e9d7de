package resolver

import (
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

const (
	DefaultMaxDepth    = 4
	DefaultPrefixBytes = 8 * 1024
)

// ResolveParam is the policy of one resolution call. It is a value: every
// With method returns a modified copy, so a param can be shared by
// concurrent calls.
type ResolveParam struct {
	maxDepth      int
	recurse       bool
	disableUnsafe bool
	force         bool
	fallback      bool
}

// DefaultResolveParam follows nested playlists up to DefaultMaxDepth with
// every other policy switched off.
func DefaultResolveParam() ResolveParam {
	return ResolveParam{
		maxDepth: DefaultMaxDepth,
		recurse:  true,
	}
}

func NewResolveParam(
	maxDepth int,
	recurse bool,
	disableUnsafe bool,
	force bool,
	fallback bool,
) ResolveParam {
	return ResolveParam{
		maxDepth:      maxDepth,
		recurse:       recurse,
		disableUnsafe: disableUnsafe,
		force:         force,
		fallback:      fallback,
	}
}

func (p ResolveParam) MaxDepth() int {
	return p.maxDepth
}

func (p ResolveParam) Recurse() bool {
	return p.recurse
}

func (p ResolveParam) DisableUnsafe() bool {
	return p.disableUnsafe
}

func (p ResolveParam) Force() bool {
	return p.force
}

func (p ResolveParam) Fallback() bool {
	return p.fallback
}

func (p ResolveParam) WithMaxDepth(maxDepth int) ResolveParam {
	p.maxDepth = maxDepth
	return p
}

func (p ResolveParam) WithRecurse(recurse bool) ResolveParam {
	p.recurse = recurse
	return p
}

func (p ResolveParam) WithDisableUnsafe(disableUnsafe bool) ResolveParam {
	p.disableUnsafe = disableUnsafe
	return p
}

func (p ResolveParam) WithForce(force bool) ResolveParam {
	p.force = force
	return p
}

func (p ResolveParam) WithFallback(fallback bool) ResolveParam {
	p.fallback = fallback
	return p
}

// Outcome is the result of one top-level resolution. Err is the failure that
// decided the result, if any; it is nil for Success, and for Unhandled or
// Ignored results that involved no failure.
type Outcome struct {
	Ref    string
	Result playlist.Result
	Err    failure.ClassifiedError
}
