package catalog

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
	"golang.org/x/net/html"
)

/*
Responsibilities

- Find the feed an HTML page advertises through feed autodiscovery
- Resolve that feed in place of the page

Podcast catalog pages only reveal their feed this way, so the resolver routes
catalog links here after a secondary page fetch. Any other HTML page is checked
too: one that advertises a feed resolves to it, one that does not stays
Unhandled. The page itself contributes no envelope; the discovered feed
provides it.
*/

const Name = "catalog"

// feedSelectors are tried in order; the first element with an href wins.
var feedSelectors = []string{
	`link[rel~="alternate"][type="application/rss+xml"]`,
	`link[rel~="alternate"][type="application/atom+xml"]`,
	`link[rel~="alternate"][type="application/x-rss+xml"]`,
	`a[type="application/rss+xml"]`,
}

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
	return discoverFeed(content) != ""
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	href := discoverFeed(req.Content)
	if href == "" {
		return playlist.Unhandled, nil
	}

	ref, err := urlutil.ResolveReference(req.BaseRef(), href)
	if err != nil {
		return playlist.Error, handler.Malformed(Name, err)
	}
	if ref == req.Ref {
		// a page advertising itself would loop until the depth limit
		return playlist.Unhandled, nil
	}

	return req.Nested.Resolve(ctx, ref, req.Ref), nil
}

// discoverFeed returns the raw href of the advertised feed, or "".
func discoverFeed(content []byte) string {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}
	doc := goquery.NewDocumentFromNode(root)

	for _, selector := range feedSelectors {
		var href string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href = strings.TrimSpace(s.AttrOr("href", ""))
			return href == ""
		})
		if href != "" {
			return href
		}
	}
	return ""
}
