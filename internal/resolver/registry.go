package resolver

import (
	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/catalog"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/desktop"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/dir"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/feed"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/m3u"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/opml"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/pls"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/xspf"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/internal/textconv"
)

// DefaultRegistry wires every built-in handler. renderer formats feed
// descriptions; nil keeps them as published.
func DefaultRegistry(renderer textconv.Renderer) *handler.Registry {
	m3uHandler := m3u.New()
	plsHandler := pls.New()
	feedHandler := feed.New(renderer)
	xspfHandler := xspf.New()
	opmlHandler := opml.New()

	return handler.NewRegistryBuilder().
		Unambiguous(m3uHandler, sniff.M3U).
		Unambiguous(plsHandler, sniff.PLS).
		Unambiguous(feedHandler, sniff.RSS, sniff.Atom).
		Unambiguous(xspfHandler, sniff.XSPF).
		Unambiguous(opmlHandler, sniff.OPML).
		Unambiguous(dir.New(), sniff.Directory).
		Unambiguous(desktop.New(), sniff.Desktop).
		Ambiguous(m3uHandler, sniff.PlainText, sniff.OctetStream).
		Ambiguous(plsHandler, sniff.OctetStream).
		Ambiguous(feedHandler, sniff.XML, sniff.OctetStream).
		Ambiguous(xspfHandler, sniff.XML).
		Ambiguous(opmlHandler, sniff.XML).
		Ambiguous(catalog.New(), sniff.HTML).
		Build()
}
