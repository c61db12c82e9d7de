// Package desktop follows freedesktop.org link launchers (`Type=Link`). It is
// unsafe because launchers are local application descriptors.
package desktop

import (
	"bytes"
	"context"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

const (
	Name    = "desktop"
	section = "[Desktop Entry]"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Name() string {
	return Name
}

func (h *Handler) Unsafe() bool {
	return true
}

func (h *Handler) Identify(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(markup.Normalize(content), " \t\r\n"), []byte(section))
}

// Handle reports Unhandled for launchers that are not links.
func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	keys := parseEntry(markup.Normalize(req.Content))
	if !strings.EqualFold(keys["Type"], "Link") {
		return playlist.Unhandled, nil
	}
	if keys["URL"] == "" {
		return playlist.Error, &handler.HandlerError{
			Message: "link launcher without URL",
			Cause:   handler.ErrCauseNoReference,
			Handler: Name,
		}
	}

	ref, err := urlutil.ResolveReference(req.BaseRef(), keys["URL"])
	if err != nil {
		return playlist.Error, handler.Malformed(Name, err)
	}

	req.Sink.PlaylistStarted(req.Ref, playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true).
		Set(playlist.FieldContentType, string(sniff.Desktop)).
		Set(playlist.FieldTitle, keys["Name"]).
		Build())

	entry := playlist.NewBuilder().
		Set(playlist.FieldTitle, keys["Name"]).
		Set(playlist.FieldDescription, keys["Comment"])
	if !handler.ResolveOrEmit(ctx, req, ref, entry) {
		return playlist.Cancelled, nil
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

// parseEntry reads the keys of the [Desktop Entry] group. Localised keys
// such as Name[de] are skipped.
func parseEntry(content []byte) map[string]string {
	keys := make(map[string]string)
	inSection := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			inSection = line == section
			continue
		case !inSection:
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.Contains(key, "[") {
			continue
		}
		key = strings.TrimSpace(key)
		if _, exists := keys[key]; !exists {
			keys[key] = strings.TrimSpace(value)
		}
	}
	return keys
}
