package feed

import (
	"context"
	"strings"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/internal/textconv"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/timeutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

/*
Responsibilities

- Parse RSS 0.9x/1.0/2.0 and Atom documents on the lenient document builder
- Emit channel metadata as the playlist envelope
- Emit one entry per item that carries a media reference

Channel and item fields follow "first match wins": a later duplicate element
never overrides an earlier one. Items are not resolved recursively.
*/

const Name = "feed"

type Handler struct {
	renderer textconv.Renderer
}

func New(renderer textconv.Renderer) *Handler {
	if renderer == nil {
		renderer = textconv.Passthrough{}
	}
	return &Handler{renderer: renderer}
}

func (h *Handler) Name() string {
	return Name
}

func (h *Handler) Unsafe() bool {
	return false
}

func (h *Handler) Identify(content []byte) bool {
	c := sniff.FromContent(content)
	return c == sniff.RSS || c == sniff.Atom
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	root, err := markup.Parse(req.Content)
	if err != nil {
		return playlist.Error, handler.Malformed(Name, err)
	}

	var doc document
	switch localName(root.Name) {
	case "rss":
		channel := root.Child("channel")
		if channel == nil {
			return playlist.Error, rootMismatch("rss document has no channel")
		}
		doc = rssDocument(channel, channel.ChildrenNamed("item"), sniff.RSS)
	case "rdf":
		channel := root.Child("channel")
		if channel == nil {
			return playlist.Error, rootMismatch("rdf document has no channel")
		}
		// RSS 1.0 keeps items next to the channel, not inside it
		doc = rssDocument(channel, root.ChildrenNamed("item"), sniff.RSS)
	case "feed":
		doc = atomDocument(root)
	default:
		return playlist.Error, rootMismatch("unexpected root <" + root.Name + ">")
	}

	base := req.BaseRef()
	meta := h.channelMeta(doc.channel, doc.kind)
	meta.Set(playlist.FieldURI, req.Ref).SetBool(playlist.FieldIsPlaylist, true)

	req.Sink.PlaylistStarted(req.Ref, meta.Build())

	for _, item := range doc.items {
		if ctx.Err() != nil {
			return playlist.Cancelled, nil
		}
		ref, entry, ok := h.itemEntry(item, doc.kind, base)
		if !ok {
			continue
		}
		req.Sink.EntryParsed(ref, entry.Build())
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

type document struct {
	kind    sniff.Classification
	channel *markup.Element
	items   []*markup.Element
}

func rssDocument(channel *markup.Element, items []*markup.Element, kind sniff.Classification) document {
	return document{kind: kind, channel: channel, items: items}
}

func atomDocument(root *markup.Element) document {
	return document{kind: sniff.Atom, channel: root, items: root.ChildrenNamed("entry")}
}

func (h *Handler) channelMeta(channel *markup.Element, kind sniff.Classification) *playlist.Builder {
	meta := playlist.NewBuilder().Set(playlist.FieldContentType, string(kind))
	for _, el := range channel.Children {
		if kind == sniff.Atom {
			h.applyAtomChannelField(meta, el)
		} else {
			h.applyRSSChannelField(meta, el)
		}
	}
	return meta
}

func (h *Handler) itemEntry(item *markup.Element, kind sniff.Classification, base string) (string, *playlist.Builder, bool) {
	entry := playlist.NewBuilder()
	refs := &itemReference{}
	for _, el := range item.Children {
		if kind == sniff.Atom {
			h.applyAtomItemField(entry, refs, el)
		} else {
			h.applyRSSItemField(entry, refs, el)
		}
	}

	if refs.uri == "" {
		return "", nil, false
	}
	ref, err := urlutil.ResolveReference(base, refs.uri)
	if err != nil {
		return "", nil, false
	}
	entry.Set(playlist.FieldURI, ref)
	if refs.structured {
		entry.SetIfAbsent(playlist.FieldContentType, refs.contentType)
		entry.SetIfAbsent(playlist.FieldFileSize, refs.size)
	}
	return ref, entry, true
}

// itemReference tracks the media reference of one item. An unstructured
// reference (a plain link) is only kept until a structured one (an
// enclosure or media element with an acceptable type) turns up.
type itemReference struct {
	uri         string
	structured  bool
	contentType string
	size        string
}

func (r *itemReference) offerUnstructured(uri string) {
	uri = strings.TrimSpace(uri)
	if uri == "" || r.uri != "" {
		return
	}
	r.uri = uri
}

func (r *itemReference) offerStructured(uri, contentType, size string) {
	uri = strings.TrimSpace(uri)
	if uri == "" || r.structured || !isMediaType(contentType) {
		return
	}
	r.uri = uri
	r.structured = true
	r.contentType = strings.TrimSpace(contentType)
	r.size = strings.TrimSpace(size)
}

// isMediaType accepts audio and video types. A missing type is accepted.
func isMediaType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return contentType == "" ||
		strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "video/")
}

func setDate(b *playlist.Builder, raw string) {
	if b.Has(playlist.FieldPublicationDate) {
		return
	}
	if ts, ok := timeutil.ParseDate(raw); ok {
		b.Set(playlist.FieldPublicationDate, time.Unix(ts, 0).UTC().Format(time.RFC3339))
	}
}

func setDuration(b *playlist.Builder, raw string) {
	if b.Has(playlist.FieldDuration) {
		return
	}
	if seconds, ok := timeutil.ParseDuration(raw); ok && seconds > 0 {
		b.SetInt(playlist.FieldDuration, seconds)
	}
}

func contentRating(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "explicit":
		return "explicit"
	case "no", "false", "clean":
		return "clean"
	}
	return ""
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

func rootMismatch(message string) *handler.HandlerError {
	return &handler.HandlerError{
		Message: message,
		Cause:   handler.ErrCauseRootMismatch,
		Handler: Name,
	}
}
