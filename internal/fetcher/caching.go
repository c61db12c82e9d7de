package fetcher

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/cache"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

// CachingFetcher remembers complete content so a reference that appears more
// than once in a run is fetched once. Only complete content is stored: a
// prefix is cached when it came back shorter than requested. Directory
// listings and failures are never cached.
type CachingFetcher struct {
	next  Fetcher
	cache cache.Cache
}

func NewCachingFetcher(next Fetcher, c cache.Cache) *CachingFetcher {
	return &CachingFetcher{next: next, cache: c}
}

func (f *CachingFetcher) Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError) {
	if content, ok := f.cache.Get(ref); ok {
		return append([]byte(nil), content...), nil
	}
	content, err := f.next.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	f.cache.Put(ref, content)
	return content, nil
}

func (f *CachingFetcher) FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	if content, ok := f.cache.Get(ref); ok {
		if maxBytes > 0 && len(content) > maxBytes {
			content = content[:maxBytes]
		}
		return append([]byte(nil), content...), nil
	}
	content, err := f.next.FetchPrefix(ctx, ref, maxBytes)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && len(content) < maxBytes {
		f.cache.Put(ref, content)
	}
	return content, nil
}

func (f *CachingFetcher) ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError) {
	return f.next.ListChildren(ctx, ref)
}
