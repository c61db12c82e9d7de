// Package fetchertest provides an in-memory fetcher.Fetcher for tests.
package fetchertest

import (
	"context"
	"sync"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

// Fetcher serves files and directory listings from maps. References that
// were never added are reported as not found.
type Fetcher struct {
	mu     sync.Mutex
	files  map[string][]byte
	dirs   map[string][]string
	errs   map[string]failure.ClassifiedError
	calls  []string
	before func(ctx context.Context, ref string)
}

func New() *Fetcher {
	return &Fetcher{
		files: make(map[string][]byte),
		dirs:  make(map[string][]string),
		errs:  make(map[string]failure.ClassifiedError),
	}
}

func (f *Fetcher) AddFile(ref string, content string) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[ref] = []byte(content)
	return f
}

func (f *Fetcher) AddDir(ref string, children ...string) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[ref] = children
	return f
}

func (f *Fetcher) AddError(ref string, err failure.ClassifiedError) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[ref] = err
	return f
}

// BeforeFetch installs a hook run at the start of every call, after the
// reference is recorded. Tests use it to cancel a context mid-resolution.
func (f *Fetcher) BeforeFetch(hook func(ctx context.Context, ref string)) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = hook
	return f
}

// Calls returns every reference requested so far, in order.
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError) {
	return f.read(ctx, ref, 0)
}

func (f *Fetcher) FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	return f.read(ctx, ref, maxBytes)
}

func (f *Fetcher) ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError) {
	if err := f.enter(ctx, ref); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[ref]; ok {
		return nil, err
	}
	if children, ok := f.dirs[ref]; ok {
		return append([]string(nil), children...), nil
	}
	if _, ok := f.files[ref]; ok {
		return nil, &fetcher.FetchError{Message: ref, Cause: fetcher.ErrCauseNotDirectory}
	}
	return nil, &fetcher.FetchError{Message: ref, Cause: fetcher.ErrCauseNotFound}
}

func (f *Fetcher) read(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	if err := f.enter(ctx, ref); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[ref]; ok {
		return nil, err
	}
	if _, ok := f.dirs[ref]; ok {
		return nil, &fetcher.FetchError{Message: ref, Cause: fetcher.ErrCauseIsDirectory}
	}
	content, ok := f.files[ref]
	if !ok {
		return nil, &fetcher.FetchError{Message: ref, Cause: fetcher.ErrCauseNotFound}
	}
	if maxBytes > 0 && len(content) > maxBytes {
		content = content[:maxBytes]
	}
	return append([]byte(nil), content...), nil
}

func (f *Fetcher) enter(ctx context.Context, ref string) failure.ClassifiedError {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	hook := f.before
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, ref)
	}
	if ctx.Err() != nil {
		return &fetcher.FetchError{Message: ctx.Err().Error(), Cause: fetcher.ErrCauseCancelled}
	}
	return nil
}
