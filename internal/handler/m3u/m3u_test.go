package m3u_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/handlertest"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/m3u"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(ref, content string, nested handler.Nested, sink playlist.Sink) handler.Request {
	return handler.Request{
		Ref:     ref,
		Content: []byte(content),
		Sink:    sink,
		Nested:  nested,
	}
}

func TestIdentify(t *testing.T) {
	h := m3u.New()

	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"extended header", "#EXTM3U\nsong.mp3\n", true},
		{"lowercase header after blank line", "\n#extm3u\n", true},
		{"extinf without header", "#EXTINF:10,Song\nsong.mp3\n", true},
		{"uri list", "http://example.com/a.mp3\r\nhttp://example.com/b.mp3\r\n", true},
		{"absolute paths with comments", "# my list\n/music/a.mp3\nC:\\Music\\b.mp3\n", true},
		{"prose", "hello world\nthis is not a playlist\n", false},
		{"relative names only", "a.mp3\nb.mp3\n", false},
		{"only comments", "# nothing\n", false},
		{"binary", "ID3\x03\x00\x00\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.Identify([]byte(tt.content)))
		})
	}
}

func TestHandle_ExtendedPlaylist(t *testing.T) {
	content := "#EXTM3U\n" +
		"#PLAYLIST:Road Trip\n" +
		"#EXTINF:245,Artist - First\n" +
		"#EXTALB:Album\n" +
		"first.mp3\n" +
		"\n" +
		"#EXTINF:-1 tvg-logo=\"http://img/logo.png\" group-title=\"News, Talk\",Radio\n" +
		"http://radio.example.com/live\n"

	sink := playlist.NewRecordingSink()
	nested := handlertest.NewNested()

	result, err := m3u.New().Handle(context.Background(), newRequest("http://example.com/lists/trip.m3u", content, nested, sink))
	require.Nil(t, err)
	assert.Equal(t, playlist.Success, result)

	events := sink.Events()
	require.Len(t, events, 4)

	assert.Equal(t, playlist.EventPlaylistStarted, events[0].Kind)
	assert.Equal(t, "Road Trip", events[0].Meta.Value(playlist.FieldTitle))
	assert.Equal(t, "true", events[0].Meta.Value(playlist.FieldIsPlaylist))

	first := events[1]
	assert.Equal(t, "http://example.com/lists/first.mp3", first.Ref)
	assert.Equal(t, "Artist - First", first.Meta.Value(playlist.FieldTitle))
	assert.Equal(t, "245", first.Meta.Value(playlist.FieldDuration))
	assert.Equal(t, "Album", first.Meta.Value(playlist.FieldAlbum))

	radio := events[2]
	assert.Equal(t, "http://radio.example.com/live", radio.Ref)
	assert.Equal(t, "Radio", radio.Meta.Value(playlist.FieldTitle))
	assert.Equal(t, "http://img/logo.png", radio.Meta.Value(playlist.FieldImageURI))
	assert.Equal(t, "News, Talk", radio.Meta.Value(playlist.FieldGenre))
	assert.False(t, radio.Meta.Has(playlist.FieldDuration))

	assert.Equal(t, playlist.EventPlaylistEnded, events[3].Kind)

	assert.Equal(t, []string{"http://example.com/lists/first.mp3", "http://radio.example.com/live"}, nested.Refs())
	for _, c := range nested.Calls() {
		assert.Equal(t, "http://example.com/lists/trip.m3u", c.Base)
	}
}

func TestHandle_NestedPlaylistIsNotEmittedAsEntry(t *testing.T) {
	sink := playlist.NewRecordingSink()
	nested := handlertest.NewNested().Returns("http://example.com/inner.m3u", playlist.Success)

	result, err := m3u.New().Handle(context.Background(), newRequest(
		"http://example.com/outer.m3u",
		"inner.m3u\nsong.mp3\n",
		nested,
		sink,
	))
	require.Nil(t, err)
	assert.Equal(t, playlist.Success, result)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "http://example.com/song.mp3", entries[0].Ref)
}

func TestHandle_CRLFAndWindowsPaths(t *testing.T) {
	sink := playlist.NewRecordingSink()
	content := "#EXTM3U\r\nC:\\Music\\a.mp3\r\n\\\\nas\\share\\b.mp3\r\nsub\\c.mp3\r\n"

	_, err := m3u.New().Handle(context.Background(), newRequest("file:///home/me/list.m3u", content, handlertest.NewNested(), sink))
	require.Nil(t, err)

	var refs []string
	for _, e := range sink.Entries() {
		refs = append(refs, e.Ref)
	}
	assert.Equal(t, []string{
		"file:///Music/a.mp3",
		"smb://nas/share/b.mp3",
		"file:///home/me/sub/c.mp3",
	}, refs)
}

func TestHandle_EmptyPlaylistStillHasEnvelope(t *testing.T) {
	sink := playlist.NewRecordingSink()
	result, err := m3u.New().Handle(context.Background(), newRequest("/tmp/empty.m3u", "#EXTM3U\n", handlertest.NewNested(), sink))
	require.Nil(t, err)
	assert.Equal(t, playlist.Success, result)

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, playlist.EventPlaylistStarted, events[0].Kind)
	assert.Equal(t, playlist.EventPlaylistEnded, events[1].Kind)
}

func TestHandle_CancelledDuringNestedResolution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := playlist.NewRecordingSink()
	nested := handlertest.NewNested().Returns("http://example.com/a.mp3", playlist.Cancelled)
	nested.OnResolve = func(context.Context, string) { cancel() }

	result, err := m3u.New().Handle(ctx, newRequest(
		"http://example.com/list.m3u",
		"a.mp3\nb.mp3\n",
		nested,
		sink,
	))
	require.Nil(t, err)
	assert.Equal(t, playlist.Cancelled, result)
	assert.Equal(t, []string{"http://example.com/a.mp3"}, nested.Refs())
	assert.Empty(t, sink.Entries())
}

func TestHandle_UsesExplicitBase(t *testing.T) {
	sink := playlist.NewRecordingSink()
	req := newRequest("http://cdn.example.com/x/list.m3u", "song.mp3\n", handlertest.NewNested(), sink)
	req.Base = "http://example.com/music/"

	_, err := m3u.New().Handle(context.Background(), req)
	require.Nil(t, err)
	require.Len(t, sink.Entries(), 1)
	assert.Equal(t, "http://example.com/music/song.mp3", sink.Entries()[0].Ref)
}

func TestHandle_StrayPercentInName(t *testing.T) {
	sink := playlist.NewRecordingSink()
	content := "#EXTM3U\n#EXTINF:60,Sale\n50% off.mp3\nnext.mp3\n"

	result, err := m3u.New().Handle(context.Background(), newRequest("http://example.com/lists/deals.m3u", content, handlertest.NewNested(), sink))
	require.Nil(t, err)
	assert.Equal(t, playlist.Success, result)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "http://example.com/lists/50%25%20off.mp3", entries[0].Ref)
	assert.Equal(t, "Sale", entries[0].Meta.Value(playlist.FieldTitle))
	assert.Equal(t, "http://example.com/lists/next.mp3", entries[1].Ref)
}
