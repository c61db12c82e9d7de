// Package xspf reads XML Shareable Playlist Format documents. Tracks are
// reported as entries; their locations are not resolved recursively.
package xspf

import (
	"context"
	"strconv"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

const Name = "xspf"

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Name() string {
	return Name
}

func (h *Handler) Unsafe() bool {
	return false
}

func (h *Handler) Identify(content []byte) bool {
	return sniff.FromContent(content) == sniff.XSPF
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	root, err := markup.Parse(req.Content)
	if err != nil {
		return playlist.Error, handler.Malformed(Name, err)
	}
	if !root.Is("playlist") {
		return playlist.Error, &handler.HandlerError{
			Message: "unexpected root <" + root.Name + ">",
			Cause:   handler.ErrCauseRootMismatch,
			Handler: Name,
		}
	}

	base := req.BaseRef()
	meta := playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true).
		Set(playlist.FieldContentType, string(sniff.XSPF)).
		Set(playlist.FieldTitle, root.ChildText("title")).
		Set(playlist.FieldAuthor, root.ChildText("creator")).
		Set(playlist.FieldDescription, root.ChildText("annotation")).
		Set(playlist.FieldCopyright, root.ChildText("license")).
		Set(playlist.FieldImageURI, root.ChildText("image")).
		Set(playlist.FieldID, root.ChildText("identifier"))
	req.Sink.PlaylistStarted(req.Ref, meta.Build())

	var tracks []*markup.Element
	if trackList := root.Child("trackList"); trackList != nil {
		tracks = trackList.ChildrenNamed("track")
	}

	for _, track := range tracks {
		if ctx.Err() != nil {
			return playlist.Cancelled, nil
		}
		location := track.ChildText("location")
		if location == "" {
			continue
		}
		ref, err := urlutil.ResolveReference(base, location)
		if err != nil {
			continue
		}
		req.Sink.EntryParsed(ref, trackEntry(track, ref).Build())
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

func trackEntry(track *markup.Element, ref string) *playlist.Builder {
	entry := playlist.NewBuilder().
		Set(playlist.FieldURI, ref).
		Set(playlist.FieldTitle, track.ChildText("title")).
		Set(playlist.FieldAuthor, track.ChildText("creator")).
		Set(playlist.FieldAlbum, track.ChildText("album")).
		Set(playlist.FieldDescription, track.ChildText("annotation")).
		Set(playlist.FieldImageURI, track.ChildText("image")).
		Set(playlist.FieldID, track.ChildText("identifier"))

	// XSPF durations are milliseconds
	if ms, err := strconv.ParseInt(strings.TrimSpace(track.ChildText("duration")), 10, 64); err == nil && ms > 0 {
		entry.SetInt(playlist.FieldDurationMS, ms)
		entry.SetInt(playlist.FieldDuration, ms/1000)
	}
	return entry
}
