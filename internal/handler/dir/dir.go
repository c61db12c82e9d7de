// Package dir lists a local directory as a playlist of its children. It is
// unsafe: resolving a remote playlist must not browse the local filesystem
// unless the caller allows it.
package dir

import (
	"context"
	"net/url"
	"path"

	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

const Name = "dir"

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

// Identify always fails: a directory is recognised by its fetch error, never
// by content.
func (h *Handler) Identify([]byte) bool {
	return false
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	children, err := req.Fetcher.ListChildren(ctx, req.Ref)
	if err != nil {
		if fetcher.IsCancelled(err) {
			return playlist.Cancelled, nil
		}
		return playlist.Error, &handler.HandlerError{
			Message: err.Error(),
			Cause:   handler.ErrCauseFetchFailed,
			Handler: Name,
			Err:     err,
		}
	}

	req.Sink.PlaylistStarted(req.Ref, playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true).
		Set(playlist.FieldContentType, string(sniff.Directory)).
		Set(playlist.FieldTitle, baseName(req.Ref)).
		Build())

	for _, child := range children {
		if ctx.Err() != nil {
			return playlist.Cancelled, nil
		}
		entry := playlist.NewBuilder().Set(playlist.FieldTitle, baseName(child))
		if !handler.ResolveOrEmit(ctx, req, child, entry) {
			return playlist.Cancelled, nil
		}
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

func baseName(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(path.Clean(p))
	if name == "/" || name == "." {
		return ""
	}
	return name
}
