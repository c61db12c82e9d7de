package resolver

import (
	"net/url"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

// schemeRoute is what a reference's scheme says about it before any byte is
// fetched.
type schemeRoute int

const (
	routeSniff schemeRoute = iota
	routeStreaming
	routeSubscription
	routeCatalog
)

// streamingSchemes carry live media, never a playlist document.
var streamingSchemes = map[string]struct{}{
	"rtsp": {},
	"rtmp": {},
	"rtp":  {},
	"mms":  {},
	"mmsh": {},
	"udp":  {},
}

// subscriptionSchemes are podcast-feed aliases and the transport scheme
// they stand for.
var subscriptionSchemes = map[string]string{
	"feed":    "http",
	"itpc":    "http",
	"pcast":   "http",
	"podcast": "http",
	"zune":    "http",
	"feeds":   "https",
	"itpcs":   "https",
}

var catalogSchemes = map[string]string{
	"itms":  "https",
	"itmss": "https",
}

var catalogHosts = map[string]struct{}{
	"podcasts.apple.com": {},
	"itunes.apple.com":   {},
}

// routeScheme classifies ref by scheme and returns the reference to continue
// with. Subscription and catalog references come back rewritten to their
// transport scheme.
func routeScheme(ref string) (schemeRoute, string) {
	scheme := urlutil.Scheme(ref)

	if _, ok := streamingSchemes[scheme]; ok {
		return routeStreaming, ref
	}
	if transport, ok := subscriptionSchemes[scheme]; ok {
		return routeSubscription, rewriteAlias(ref, transport)
	}
	if transport, ok := catalogSchemes[scheme]; ok {
		return routeCatalog, rewriteAlias(ref, transport)
	}
	if (scheme == "http" || scheme == "https") && isCatalogPage(ref) {
		return routeCatalog, ref
	}
	return routeSniff, ref
}

// rewriteAlias swaps an alias scheme for its transport. Aliases are written
// both as `feed://host/path` and as `feed:http://host/path`; the second form
// already carries the transport.
func rewriteAlias(ref string, transport string) string {
	rest := ref[len(urlutil.Scheme(ref))+1:]
	if inner := urlutil.Scheme(rest); inner == "http" || inner == "https" {
		return rest
	}
	if !strings.HasPrefix(rest, "//") {
		rest = "//" + rest
	}
	return transport + ":" + rest
}

func isCatalogPage(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	if _, ok := catalogHosts[strings.ToLower(u.Hostname())]; !ok {
		return false
	}
	return strings.Contains(u.Path, "/podcast/")
}
