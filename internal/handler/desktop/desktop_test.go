package desktop_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/desktop"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/handlertest"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const link = `[Desktop Entry]
Version=1.0
Type=Link
Name=Jazz Radio
Name[de]=Jazzradio
Comment=Streams all day
URL=http://radio.example.com/jazz.pls

[Other Group]
URL=http://ignored.example.com/
`

func TestIdentify(t *testing.T) {
	h := desktop.New()
	assert.True(t, h.Unsafe())
	assert.True(t, h.Identify([]byte(link)))
	assert.False(t, h.Identify([]byte("[playlist]\n")))
}

func TestHandle_FollowsLink(t *testing.T) {
	sink := playlist.NewRecordingSink()
	nested := handlertest.NewNested()

	result, err := desktop.New().Handle(context.Background(), handler.Request{
		Ref:     "file:///home/me/Desktop/jazz.desktop",
		Content: []byte(link),
		Sink:    sink,
		Nested:  nested,
	})
	require.Nil(t, err)
	assert.Equal(t, playlist.Success, result)
	assert.Equal(t, []string{"http://radio.example.com/jazz.pls"}, nested.Refs())

	events := sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "Jazz Radio", events[0].Meta.Value(playlist.FieldTitle))
	assert.Equal(t, "http://radio.example.com/jazz.pls", events[1].Ref)
	assert.Equal(t, "Streams all day", events[1].Meta.Value(playlist.FieldDescription))
}

func TestHandle_ApplicationLauncherIsUnhandled(t *testing.T) {
	sink := playlist.NewRecordingSink()
	result, err := desktop.New().Handle(context.Background(), handler.Request{
		Ref:     "file:///usr/share/applications/player.desktop",
		Content: []byte("[Desktop Entry]\nType=Application\nExec=player %U\n"),
		Sink:    sink,
		Nested:  handlertest.NewNested(),
	})
	require.Nil(t, err)
	assert.Equal(t, playlist.Unhandled, result)
	assert.Empty(t, sink.Events())
}

func TestHandle_LinkWithoutURL(t *testing.T) {
	result, err := desktop.New().Handle(context.Background(), handler.Request{
		Ref:     "file:///x.desktop",
		Content: []byte("[Desktop Entry]\nType=Link\n"),
		Sink:    playlist.NewRecordingSink(),
		Nested:  handlertest.NewNested(),
	})
	assert.Equal(t, playlist.Error, result)
	var handlerErr *handler.HandlerError
	require.ErrorAs(t, err, &handlerErr)
	assert.Equal(t, handler.ErrCauseNoReference, handlerErr.Cause)
}
