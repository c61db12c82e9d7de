package opml

import (
	"context"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

/*
Responsibilities

- Read OPML subscription lists and outline trees
- Follow every feed (xmlUrl) and link (url) outline one level deeper
- Walk folder outlines depth-first in document order

Outlines that carry no reference are folders and produce no entry of their own.
*/

const Name = "opml"

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
	return sniff.FromContent(content) == sniff.OPML
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	root, err := markup.Parse(req.Content)
	if err != nil {
		return playlist.Error, handler.Malformed(Name, err)
	}
	if !root.Is("opml") {
		return playlist.Error, &handler.HandlerError{
			Message: "unexpected root <" + root.Name + ">",
			Cause:   handler.ErrCauseRootMismatch,
			Handler: Name,
		}
	}

	meta := playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true).
		Set(playlist.FieldContentType, string(sniff.OPML))
	if head := root.Child("head"); head != nil {
		meta.Set(playlist.FieldTitle, head.ChildText("title")).
			Set(playlist.FieldAuthor, head.ChildText("ownerName")).
			Set(playlist.FieldContact, head.ChildText("ownerEmail"))
		for _, name := range []string{"dateModified", "dateCreated"} {
			if ts, ok := timeutil.ParseDate(head.ChildText(name)); ok {
				meta.Set(playlist.FieldPublicationDate, time.Unix(ts, 0).UTC().Format(time.RFC3339))
				break
			}
		}
	}

	req.Sink.PlaylistStarted(req.Ref, meta.Build())

	if body := root.Child("body"); body != nil {
		if !h.walk(ctx, req, body.ChildrenNamed("outline")) {
			return playlist.Cancelled, nil
		}
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

// walk visits outlines depth-first. It returns false once cancelled.
func (h *Handler) walk(ctx context.Context, req handler.Request, outlines []*markup.Element) bool {
	for _, outline := range outlines {
		if ctx.Err() != nil {
			return false
		}

		raw := outline.AttrValue("xmlUrl")
		if raw == "" {
			raw = outline.AttrValue("url")
		}
		if raw == "" {
			if !h.walk(ctx, req, outline.ChildrenNamed("outline")) {
				return false
			}
			continue
		}

		ref, err := urlutil.ResolveReference(req.BaseRef(), raw)
		if err != nil {
			continue
		}
		if !handler.ResolveOrEmit(ctx, req, ref, outlineEntry(outline)) {
			return false
		}
	}
	return true
}

func outlineEntry(outline *markup.Element) *playlist.Builder {
	entry := playlist.NewBuilder()
	entry.Set(playlist.FieldTitle, outline.AttrValue("text"))
	entry.SetIfAbsent(playlist.FieldTitle, outline.AttrValue("title"))
	entry.Set(playlist.FieldDescription, outline.AttrValue("description"))
	entry.Set(playlist.FieldLanguage, outline.AttrValue("language"))
	if outline.AttrValue("xmlUrl") != "" {
		entry.Set(playlist.FieldContentType, feedType(outline.AttrValue("type")))
	}
	return entry
}

func feedType(outlineType string) string {
	if outlineType == "atom" {
		return string(sniff.Atom)
	}
	return string(sniff.RSS)
}
