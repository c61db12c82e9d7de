package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher/fetchertest"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Show</title>
    <item>
      <title>Episode 1</title>
      <enclosure url="https://cdn.example.com/ep1.mp3" type="audio/mpeg" length="1000"/>
    </item>
    <item>
      <title>Episode 2</title>
      <enclosure url="https://cdn.example.com/ep2.mp3" type="audio/mpeg" length="2000"/>
    </item>
  </channel>
</rss>`

func TestResolveParam_Defaults(t *testing.T) {
	param := resolver.DefaultResolveParam()

	assert.Equal(t, resolver.DefaultMaxDepth, param.MaxDepth())
	assert.True(t, param.Recurse())
	assert.False(t, param.DisableUnsafe())
	assert.False(t, param.Force())
	assert.False(t, param.Fallback())
}

func TestResolveParam_WithReturnsCopy(t *testing.T) {
	base := resolver.DefaultResolveParam()
	changed := base.WithMaxDepth(1).WithRecurse(false).WithDisableUnsafe(true).WithForce(true).WithFallback(true)

	assert.Equal(t, resolver.DefaultMaxDepth, base.MaxDepth())
	assert.True(t, base.Recurse())
	assert.False(t, base.Fallback())

	assert.Equal(t, resolver.NewResolveParam(1, false, true, true, true), changed)
}

func TestResolve_NestedPlaylistsAreDepthFirst(t *testing.T) {
	f := fetchertest.New().
		AddFile("http://example.com/top.m3u", "#EXTM3U\nhttp://example.com/a.m3u\nhttp://example.com/song3.mp3\n").
		AddFile("http://example.com/a.m3u", "#EXTM3U\nsong1.mp3\nsong2.mp3\n")
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "http://example.com/top.m3u", "", resolver.DefaultResolveParam(), sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, []string{
		"playlist-started http://example.com/top.m3u",
		"playlist-started http://example.com/a.m3u",
		"entry-parsed http://example.com/song1.mp3",
		"entry-parsed http://example.com/song2.mp3",
		"playlist-ended http://example.com/a.m3u",
		"entry-parsed http://example.com/song3.mp3",
		"playlist-ended http://example.com/top.m3u",
	}, kinds(sink.Events()))

	// media entries are classified by name and never fetched
	assert.Equal(t, []string{"http://example.com/top.m3u", "http://example.com/a.m3u"}, f.Calls())
}

func TestResolve_RecursionIsBounded(t *testing.T) {
	f := fetchertest.New().
		AddFile("http://example.com/loop.m3u", "#EXTM3U\nhttp://example.com/loop.m3u\n")
	r, spy := newResolver(f)
	sink := playlist.NewRecordingSink()
	param := resolver.DefaultResolveParam().WithMaxDepth(1)

	outcome := r.Resolve(context.Background(), "http://example.com/loop.m3u", "", param, sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started http://example.com/loop.m3u",
		"playlist-started http://example.com/loop.m3u",
		"entry-parsed http://example.com/loop.m3u",
		"playlist-ended http://example.com/loop.m3u",
		"playlist-ended http://example.com/loop.m3u",
	}, kinds(sink.Events()))

	resolves := spy.Resolves()
	require.Len(t, resolves, 3)
	assert.Equal(t, "error", resolves[0].result)
	assert.Equal(t, 2, resolves[0].depth)
	assert.Equal(t, "success", resolves[2].result)
	assert.Equal(t, 0, resolves[2].depth)

	errs := spy.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, metadata.CauseInvariantViolation, errs[0].cause)
}

func TestResolve_DepthExceededAtTopLevel(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/a.m3u", "#EXTM3U\na.mp3\n")
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "http://example.com/a.m3u", "", resolver.DefaultResolveParam().WithMaxDepth(-1), sink)

	assert.Equal(t, playlist.Error, outcome.Result)
	var resolveErr *resolver.ResolveError
	require.ErrorAs(t, outcome.Err, &resolveErr)
	assert.Equal(t, resolver.ErrCauseDepthExceeded, resolveErr.Cause)
	assert.Empty(t, sink.Events())
	assert.Empty(t, f.Calls())
}

func TestResolve_NoRecurseReportsNestedPlaylistsAsEntries(t *testing.T) {
	f := fetchertest.New().
		AddFile("http://example.com/top.m3u", "#EXTM3U\nhttp://example.com/a.m3u\n").
		AddFile("http://example.com/a.m3u", "#EXTM3U\nsong1.mp3\n")
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "http://example.com/top.m3u", "", resolver.DefaultResolveParam().WithRecurse(false), sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started http://example.com/top.m3u",
		"entry-parsed http://example.com/a.m3u",
		"playlist-ended http://example.com/top.m3u",
	}, kinds(sink.Events()))
	assert.Equal(t, []string{"http://example.com/top.m3u"}, f.Calls())
}

func TestResolve_EmptyResourceIsSuccessWithoutEvents(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		param resolver.ResolveParam
	}{
		{"no extension", "http://example.com/empty", resolver.DefaultResolveParam()},
		{"rss name", "http://example.com/feed.rss", resolver.DefaultResolveParam()},
		{"xml name", "http://example.com/doc.xml", resolver.DefaultResolveParam()},
		{"text name", "http://example.com/list.txt", resolver.DefaultResolveParam()},
		{"html name", "http://example.com/page.html", resolver.DefaultResolveParam()},
		{"m3u name", "http://example.com/list.m3u", resolver.DefaultResolveParam()},
		{"xspf name", "http://example.com/x.xspf", resolver.DefaultResolveParam()},
		{"m3u name forced", "http://example.com/list.m3u", resolver.DefaultResolveParam().WithForce(true)},
		{"rss name forced", "http://example.com/feed.rss", resolver.DefaultResolveParam().WithForce(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fetchertest.New().AddFile(tt.ref, "")
			r, spy := newResolver(f)
			sink := playlist.NewRecordingSink()

			outcome := r.Resolve(context.Background(), tt.ref, "", tt.param, sink)

			assert.Equal(t, playlist.Success, outcome.Result)
			assert.NoError(t, outcome.Err)
			assert.Empty(t, sink.Events())
			assert.Empty(t, spy.Errors())
		})
	}
}

func TestResolve_MislabeledAudioIsSniffedOnlyAtTopLevel(t *testing.T) {
	t.Run("top level", func(t *testing.T) {
		f := fetchertest.New().AddFile("http://example.com/feed.mp3", showFeed)
		r, _ := newResolver(f)
		sink := playlist.NewRecordingSink()

		outcome := r.Resolve(context.Background(), "http://example.com/feed.mp3", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.Equal(t, []string{
			"playlist-started http://example.com/feed.mp3",
			"entry-parsed https://cdn.example.com/ep1.mp3",
			"entry-parsed https://cdn.example.com/ep2.mp3",
			"playlist-ended http://example.com/feed.mp3",
		}, kinds(sink.Events()))
	})

	t.Run("nested", func(t *testing.T) {
		f := fetchertest.New().
			AddFile("http://example.com/top.m3u", "#EXTM3U\nhttp://example.com/feed.mp3\n").
			AddFile("http://example.com/feed.mp3", showFeed)
		r, _ := newResolver(f)
		sink := playlist.NewRecordingSink()

		outcome := r.Resolve(context.Background(), "http://example.com/top.m3u", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.Equal(t, []string{
			"playlist-started http://example.com/top.m3u",
			"entry-parsed http://example.com/feed.mp3",
			"playlist-ended http://example.com/top.m3u",
		}, kinds(sink.Events()))
		assert.Equal(t, []string{"http://example.com/top.m3u"}, f.Calls())
	})
}

func TestResolve_CancelledBeforeStart(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/top.m3u", "#EXTM3U\na.mp3\n")
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := r.Resolve(ctx, "http://example.com/top.m3u", "", resolver.DefaultResolveParam().WithFallback(true), sink)

	assert.Equal(t, playlist.Cancelled, outcome.Result)
	assert.Empty(t, sink.Events())
	assert.Empty(t, f.Calls())
}

func TestResolve_CancelledMidResolutionEmitsNothingAfter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := fetchertest.New().
		AddFile("http://example.com/top.m3u", "#EXTM3U\nhttp://example.com/a.m3u\nhttp://example.com/b.m3u\nhttp://example.com/c.mp3\n").
		AddFile("http://example.com/a.m3u", "#EXTM3U\na1.mp3\n").
		AddFile("http://example.com/b.m3u", "#EXTM3U\nb1.mp3\n").
		BeforeFetch(func(_ context.Context, ref string) {
			if ref == "http://example.com/b.m3u" {
				cancel()
			}
		})
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(ctx, "http://example.com/top.m3u", "", resolver.DefaultResolveParam().WithFallback(true), sink)

	assert.Equal(t, playlist.Cancelled, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started http://example.com/top.m3u",
		"playlist-started http://example.com/a.m3u",
		"entry-parsed http://example.com/a1.mp3",
		"playlist-ended http://example.com/a.m3u",
	}, kinds(sink.Events()))
}

func TestResolve_FallbackEmitsSingleEntry(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/readme", "hello world\nthis is not a playlist\n")
	r, _ := newResolver(f)

	t.Run("without fallback", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/readme", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Unhandled, outcome.Result)
		assert.Empty(t, sink.Events())
	})

	t.Run("with fallback", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/readme", "", resolver.DefaultResolveParam().WithFallback(true), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.NoError(t, outcome.Err)
		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, playlist.EventEntryParsed, events[0].Kind)
		assert.Equal(t, "http://example.com/readme", events[0].Meta.Value(playlist.FieldURI))
	})
}

func TestResolve_FetchFailure(t *testing.T) {
	f := fetchertest.New()
	r, spy := newResolver(f)

	t.Run("error without fallback", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/missing.m3u", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Error, outcome.Result)
		var resolveErr *resolver.ResolveError
		require.ErrorAs(t, outcome.Err, &resolveErr)
		assert.Equal(t, resolver.ErrCauseFetchFailed, resolveErr.Cause)
		assert.True(t, fetcher.IsNotFound(outcome.Err))
		assert.Empty(t, sink.Events())
	})

	t.Run("fallback turns error into entry", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/missing.m3u", "", resolver.DefaultResolveParam().WithFallback(true), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.Equal(t, []string{"entry-parsed http://example.com/missing.m3u"}, kinds(sink.Events()))
	})

	require.NotEmpty(t, spy.Errors())
	assert.Equal(t, metadata.CauseResourceMissing, spy.Errors()[0].cause)
}

func TestResolve_IgnoredTypes(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"
	f := fetchertest.New().
		AddFile("http://example.com/cover", png).
		AddFile("http://example.com/cover.jpg", "not fetched")
	r, _ := newResolver(f)

	t.Run("by content", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/cover", "", resolver.DefaultResolveParam().WithFallback(true), sink)

		assert.Equal(t, playlist.Ignored, outcome.Result)
		assert.Empty(t, sink.Events())
	})

	t.Run("by name", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "http://example.com/cover.jpg", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Ignored, outcome.Result)
		assert.NotContains(t, f.Calls(), "http://example.com/cover.jpg")
	})
}

func TestResolve_UnsafeHandlers(t *testing.T) {
	f := fetchertest.New().
		AddDir("file:///music", "file:///music/a.mp3", "file:///music/b.mp3")

	t.Run("directory listed when allowed", func(t *testing.T) {
		r, _ := newResolver(f)
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "file:///music", "", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.Equal(t, []string{
			"playlist-started file:///music",
			"entry-parsed file:///music/a.mp3",
			"entry-parsed file:///music/b.mp3",
			"playlist-ended file:///music",
		}, kinds(sink.Events()))
	})

	t.Run("directory ignored when unsafe is disabled", func(t *testing.T) {
		r, spy := newResolver(f)
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "file:///music", "", resolver.DefaultResolveParam().WithDisableUnsafe(true), sink)

		assert.Equal(t, playlist.Ignored, outcome.Result)
		var resolveErr *resolver.ResolveError
		require.ErrorAs(t, outcome.Err, &resolveErr)
		assert.Equal(t, resolver.ErrCauseUnsafeDisabled, resolveErr.Cause)
		assert.Empty(t, sink.Events())

		errs := spy.Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, metadata.CausePolicyDisallow, errs[0].cause)
	})
}

func TestResolve_StreamingSchemeIsUnhandled(t *testing.T) {
	f := fetchertest.New()
	r, _ := newResolver(f)

	sink := playlist.NewRecordingSink()
	outcome := r.Resolve(context.Background(), "rtsp://example.com/live", "", resolver.DefaultResolveParam(), sink)
	assert.Equal(t, playlist.Unhandled, outcome.Result)
	assert.NoError(t, outcome.Err)
	assert.Empty(t, sink.Events())
	assert.Empty(t, f.Calls())

	sink = playlist.NewRecordingSink()
	outcome = r.Resolve(context.Background(), "mms://example.com/live", "", resolver.DefaultResolveParam().WithFallback(true), sink)
	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{"entry-parsed mms://example.com/live"}, kinds(sink.Events()))
}

func TestResolve_SubscriptionSchemeForcesFeedHandler(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/show", showFeed)
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "feed://example.com/show", "", resolver.DefaultResolveParam(), sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started http://example.com/show",
		"entry-parsed https://cdn.example.com/ep1.mp3",
		"entry-parsed https://cdn.example.com/ep2.mp3",
		"playlist-ended http://example.com/show",
	}, kinds(sink.Events()))
	assert.Equal(t, "Show", sink.Events()[0].Meta.Value(playlist.FieldTitle))
	assert.Equal(t, []string{"http://example.com/show"}, f.Calls())
}

func TestResolve_SubscriptionSchemeFallsBackToSniffing(t *testing.T) {
	f := fetchertest.New().AddFile("https://example.com/list", "#EXTM3U\nhttp://example.com/a.mp3\n")
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "itpcs://example.com/list", "", resolver.DefaultResolveParam(), sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started https://example.com/list",
		"entry-parsed http://example.com/a.mp3",
		"playlist-ended https://example.com/list",
	}, kinds(sink.Events()))
}

func TestResolve_CatalogPageResolvesAdvertisedFeed(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head>
<title>Show on Podcasts</title>
<link rel="alternate" type="application/rss+xml" title="Show" href="https://feeds.example.com/show.rss">
</head><body><h1>Show</h1></body></html>`

	f := fetchertest.New().
		AddFile("https://podcasts.apple.com/us/podcast/show/id123", page).
		AddFile("https://feeds.example.com/show.rss", showFeed)
	r, _ := newResolver(f)

	for _, ref := range []string{
		"https://podcasts.apple.com/us/podcast/show/id123",
		"itms://podcasts.apple.com/us/podcast/show/id123",
	} {
		t.Run(ref, func(t *testing.T) {
			sink := playlist.NewRecordingSink()
			outcome := r.Resolve(context.Background(), ref, "", resolver.DefaultResolveParam(), sink)

			assert.Equal(t, playlist.Success, outcome.Result)
			assert.Equal(t, []string{
				"playlist-started https://feeds.example.com/show.rss",
				"entry-parsed https://cdn.example.com/ep1.mp3",
				"entry-parsed https://cdn.example.com/ep2.mp3",
				"playlist-ended https://feeds.example.com/show.rss",
			}, kinds(sink.Events()))
		})
	}
}

// Any HTML page is searched for an advertised feed, not only catalog links.
func TestResolve_HTMLPageAutodiscovery(t *testing.T) {
	withFeed := `<html><head>
<link rel="alternate" type="application/rss+xml" href="https://feeds.example.com/show.rss">
</head><body></body></html>`
	withoutFeed := `<html><head><title>Blog</title></head><body><p>hello</p></body></html>`

	f := fetchertest.New().
		AddFile("http://example.com/show.html", withFeed).
		AddFile("http://example.com/blog.html", withoutFeed).
		AddFile("https://feeds.example.com/show.rss", showFeed)
	r, _ := newResolver(f)

	sink := playlist.NewRecordingSink()
	outcome := r.Resolve(context.Background(), "http://example.com/show.html", "", resolver.DefaultResolveParam(), sink)
	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, "playlist-started https://feeds.example.com/show.rss", kinds(sink.Events())[0])

	sink = playlist.NewRecordingSink()
	outcome = r.Resolve(context.Background(), "http://example.com/blog.html", "", resolver.DefaultResolveParam(), sink)
	assert.Equal(t, playlist.Unhandled, outcome.Result)
	assert.Empty(t, sink.Events())
}

func TestResolve_AmbiguousXMLTriesCandidates(t *testing.T) {
	xspfDoc := `<?xml version="1.0"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/">
  <trackList>
    <track><location>http://example.com/one.ogg</location><title>One</title></track>
  </trackList>
</playlist>`
	f := fetchertest.New().AddFile("http://example.com/list.xml", xspfDoc)
	r, _ := newResolver(f)
	sink := playlist.NewRecordingSink()

	outcome := r.Resolve(context.Background(), "http://example.com/list.xml", "", resolver.DefaultResolveParam(), sink)

	assert.Equal(t, playlist.Success, outcome.Result)
	assert.Equal(t, []string{
		"playlist-started http://example.com/list.xml",
		"entry-parsed http://example.com/one.ogg",
		"playlist-ended http://example.com/list.xml",
	}, kinds(sink.Events()))
}

func TestResolve_RelativeReference(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/lists/road.m3u", "#EXTM3U\nsong.mp3\n")
	r, _ := newResolver(f)

	t.Run("resolved against base", func(t *testing.T) {
		sink := playlist.NewRecordingSink()
		outcome := r.Resolve(context.Background(), "road.m3u", "http://example.com/lists/", resolver.DefaultResolveParam(), sink)

		assert.Equal(t, playlist.Success, outcome.Result)
		assert.Equal(t, []string{
			"playlist-started http://example.com/lists/road.m3u",
			"entry-parsed http://example.com/lists/song.mp3",
			"playlist-ended http://example.com/lists/road.m3u",
		}, kinds(sink.Events()))
	})

	t.Run("no base", func(t *testing.T) {
		outcome := r.Resolve(context.Background(), "road.m3u", "", resolver.DefaultResolveParam(), playlist.NewRecordingSink())

		assert.Equal(t, playlist.Error, outcome.Result)
		var resolveErr *resolver.ResolveError
		require.True(t, errors.As(outcome.Err, &resolveErr))
		assert.Equal(t, resolver.ErrCauseInvalidReference, resolveErr.Cause)
	})
}

func TestResolve_ForceFetchesContentDespiteName(t *testing.T) {
	// named like media, actually a playlist
	f := fetchertest.New().AddFile("http://example.com/nested/radio.ogg", "[playlist]\nFile1=http://example.com/stream\nNumberOfEntries=1\n")
	r, _ := newResolver(f)

	sink := playlist.NewRecordingSink()
	outcome := r.Resolve(context.Background(), "http://example.com/nested/radio.ogg", "", resolver.DefaultResolveParam(), sink)
	assert.Equal(t, playlist.Unhandled, outcome.Result)
	assert.Empty(t, f.Calls())

	sink = playlist.NewRecordingSink()
	outcome = r.Resolve(context.Background(), "http://example.com/nested/radio.ogg", "", resolver.DefaultResolveParam().WithForce(true), sink)
	assert.Equal(t, playlist.Success, outcome.Result)
	require.NotEmpty(t, sink.Events())
	assert.Equal(t, "playlist-started http://example.com/nested/radio.ogg", kinds(sink.Events())[0])
}

func TestResolve_IsIdempotent(t *testing.T) {
	f := fetchertest.New().
		AddFile("http://example.com/top.m3u", "#EXTM3U\n#EXTINF:10,One\nhttp://example.com/a.m3u\nlast.mp3\n").
		AddFile("http://example.com/a.m3u", "#EXTM3U\none.mp3\n")
	r, _ := newResolver(f)

	first := playlist.NewRecordingSink()
	second := playlist.NewRecordingSink()
	o1 := r.Resolve(context.Background(), "http://example.com/top.m3u", "", resolver.DefaultResolveParam(), first)
	o2 := r.Resolve(context.Background(), "http://example.com/top.m3u", "", resolver.DefaultResolveParam(), second)

	assert.Equal(t, o1.Result, o2.Result)
	assert.Equal(t, first.Events(), second.Events())
}

func TestResolve_CallsHaveDistinctCorrelationIDs(t *testing.T) {
	f := fetchertest.New().AddFile("http://example.com/a.m3u", "#EXTM3U\none.mp3\n")
	r, spy := newResolver(f)

	r.Resolve(context.Background(), "http://example.com/a.m3u", "", resolver.DefaultResolveParam(), nil)
	r.Resolve(context.Background(), "http://example.com/a.m3u", "", resolver.DefaultResolveParam(), nil)

	resolves := spy.Resolves()
	var topLevel []string
	for _, rec := range resolves {
		assert.NotEmpty(t, rec.callID)
		if rec.depth == 0 {
			topLevel = append(topLevel, rec.callID)
		}
	}
	require.Len(t, topLevel, 2)
	assert.NotEqual(t, topLevel[0], topLevel[1])
}
