package fetcher_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/cache"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/fetchertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingFetcher_FetchOnce(t *testing.T) {
	inner := fetchertest.New().AddFile("http://example.com/a.m3u", "#EXTM3U\none.mp3\n")
	f := fetcher.NewCachingFetcher(inner, cache.NewMemoryCache())

	first, err := f.Fetch(context.Background(), "http://example.com/a.m3u")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "http://example.com/a.m3u")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"http://example.com/a.m3u"}, inner.Calls())

	prefix, err := f.FetchPrefix(context.Background(), "http://example.com/a.m3u", 7)
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U", string(prefix))
	assert.Len(t, inner.Calls(), 1)
}

func TestCachingFetcher_CompletePrefixIsCached(t *testing.T) {
	inner := fetchertest.New().
		AddFile("http://example.com/short", "tiny").
		AddFile("http://example.com/long", "0123456789")
	f := fetcher.NewCachingFetcher(inner, cache.NewMemoryCache())
	ctx := context.Background()

	_, err := f.FetchPrefix(ctx, "http://example.com/short", 8)
	require.NoError(t, err)
	content, err := f.Fetch(ctx, "http://example.com/short")
	require.NoError(t, err)
	assert.Equal(t, "tiny", string(content))

	// a truncated prefix says nothing about the full content
	_, err = f.FetchPrefix(ctx, "http://example.com/long", 4)
	require.NoError(t, err)
	content, err = f.Fetch(ctx, "http://example.com/long")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(content))

	assert.Equal(t, []string{
		"http://example.com/short",
		"http://example.com/long",
		"http://example.com/long",
	}, inner.Calls())
}

func TestCachingFetcher_FailuresAreNotCached(t *testing.T) {
	inner := fetchertest.New()
	f := fetcher.NewCachingFetcher(inner, cache.NewMemoryCache())

	_, err := f.Fetch(context.Background(), "http://example.com/missing")
	require.Error(t, err)
	assert.True(t, fetcher.IsNotFound(err))

	inner.AddFile("http://example.com/missing", "now here")
	content, err := f.Fetch(context.Background(), "http://example.com/missing")
	require.NoError(t, err)
	assert.Equal(t, "now here", string(content))
}

func TestCachingFetcher_ListChildrenPassesThrough(t *testing.T) {
	inner := fetchertest.New().AddDir("file:///music", "file:///music/a.mp3")
	f := fetcher.NewCachingFetcher(inner, cache.NewMemoryCache())

	children, err := f.ListChildren(context.Background(), "file:///music")
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///music/a.mp3"}, children)
}
