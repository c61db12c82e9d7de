package sniff

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rohmanhakim/playlist-resolver/pkg/fileutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

/*
Responsibilities

- Guess a classification from a reference's name without touching content
- Classify a content prefix from its bytes
- Tell which classifications are too generic to trust and which are known
  non-playlist types

Classifications are canonical lowercase MIME type strings without parameters.
*/

type Classification string

const (
	Unknown     Classification = ""
	OctetStream Classification = "application/octet-stream"
	Empty       Classification = "application/x-zerosize"
	Directory   Classification = "inode/directory"
	PlainText   Classification = "text/plain"
	M3U         Classification = "audio/x-mpegurl"
	PLS         Classification = "audio/x-scpls"
	RSS         Classification = "application/rss+xml"
	Atom        Classification = "application/atom+xml"
	XSPF        Classification = "application/xspf+xml"
	OPML        Classification = "text/x-opml+xml"
	HTML        Classification = "text/html"
	XML         Classification = "application/xml"
	Desktop     Classification = "application/x-desktop"
	AudioMPEG   Classification = "audio/mpeg"
)

func (c Classification) String() string {
	if c == Unknown {
		return "unknown"
	}
	return string(c)
}

var extensionTable = map[string]Classification{
	"m3u":     M3U,
	"m3u8":    M3U,
	"vlc":     M3U,
	"pls":     PLS,
	"rss":     RSS,
	"atom":    Atom,
	"xspf":    XSPF,
	"opml":    OPML,
	"htm":     HTML,
	"html":    HTML,
	"xhtml":   HTML,
	"xml":     XML,
	"txt":     PlainText,
	"desktop": Desktop,
	"mp3":     AudioMPEG,
	"mp2":     AudioMPEG,
	"ogg":     "audio/ogg",
	"oga":     "audio/ogg",
	"opus":    "audio/ogg",
	"flac":    "audio/flac",
	"wav":     "audio/x-wav",
	"m4a":     "audio/mp4",
	"aac":     "audio/aac",
	"wma":     "audio/x-ms-wma",
	"mp4":     "video/mp4",
	"mkv":     "video/x-matroska",
	"webm":    "video/webm",
	"avi":     "video/x-msvideo",
	"jpg":     "image/jpeg",
	"jpeg":    "image/jpeg",
	"png":     "image/png",
	"gif":     "image/gif",
	"webp":    "image/webp",
	"zip":     "application/zip",
	"tar":     "application/x-tar",
	"gz":      "application/gzip",
	"tgz":     "application/gzip",
	"7z":      "application/x-7z-compressed",
	"rar":     "application/x-rar-compressed",
	"pdf":     "application/pdf",
	"exe":     "application/x-executable",
}

// GuessFromName classifies a reference by the extension of its path. The
// query and fragment of a URI are ignored. An unknown extension yields Unknown.
func GuessFromName(ref string) Classification {
	path := ref
	if urlutil.HasScheme(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return Unknown
		}
		canonical := urlutil.Canonicalize(*u)
		path = canonical.Path
	}
	if strings.HasSuffix(path, "/") {
		return Unknown
	}
	return extensionTable[fileutil.GetFileExtension(path)]
}

var rootTable = map[string]Classification{
	"rss":      RSS,
	"rdf":      RSS,
	"feed":     Atom,
	"playlist": XSPF,
	"opml":     OPML,
	"html":     HTML,
	"head":     HTML,
	"body":     HTML,
}

var (
	markerExtM3U  = []byte("#EXTM3U")
	markerPLS     = []byte("[playlist]")
	markerDesktop = []byte("[Desktop Entry]")
)

const maxRootLookup = 64

// FromContent classifies a content prefix. Text playlist markers and the
// root element of markup are checked first; everything else is left to
// mimetype's signature detection.
func FromContent(buf []byte) Classification {
	if len(buf) == 0 {
		return Empty
	}

	buf = markup.Normalize(buf)
	head := bytes.TrimLeft(buf, " \t\r\n")

	switch {
	case hasPrefixFold(head, markerExtM3U):
		return M3U
	case hasPrefixFold(head, markerPLS):
		return PLS
	case bytes.HasPrefix(head, markerDesktop):
		return Desktop
	}

	if len(head) > 0 && head[0] == '<' {
		if c, ok := classifyRoot(markup.StripComments(head)); ok {
			return c
		}
	}

	return canonicalMIME(mimetype.Detect(buf).String())
}

// classifyRoot finds the first element of a markup buffer. A recognised root
// name maps to its format; any other root means generic XML.
func classifyRoot(buf []byte) (Classification, bool) {
	tok := markup.NewTokenizer(buf)
	for i := 0; i < maxRootLookup; i++ {
		t := tok.Next()
		switch t.Kind {
		case markup.TokenEOF, markup.TokenError:
			return Unknown, false
		case markup.TokenDoctypeStart:
			if name := nextIdentifier(tok); strings.EqualFold(name, "html") {
				return HTML, true
			}
		case markup.TokenMarkupOpen:
			name := localName(nextIdentifier(tok))
			if name == "" {
				return Unknown, false
			}
			if c, ok := rootTable[name]; ok {
				return c, true
			}
			return XML, true
		}
	}
	return Unknown, false
}

func nextIdentifier(tok *markup.Tokenizer) string {
	for {
		t := tok.Next()
		switch t.Kind {
		case markup.TokenSeparator, markup.TokenEndOfLine:
			continue
		case markup.TokenIdentifier:
			return string(t.Raw)
		default:
			return ""
		}
	}
}

// localName drops a namespace prefix and lowercases the rest.
func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

func canonicalMIME(mime string) Classification {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "":
		return OctetStream
	case "text/xml":
		return XML
	}
	return Classification(mime)
}

func hasPrefixFold(buf, prefix []byte) bool {
	return len(buf) >= len(prefix) && bytes.EqualFold(buf[:len(prefix)], prefix)
}

// IsGeneric reports classifications that say nothing about the format.
func IsGeneric(c Classification) bool {
	return c == Unknown || c == OctetStream
}

var ignoredTypes = map[Classification]struct{}{
	"application/zip":              {},
	"application/x-tar":            {},
	"application/gzip":             {},
	"application/x-gzip":           {},
	"application/x-7z-compressed":  {},
	"application/x-rar-compressed": {},
	"application/vnd.rar":          {},
	"application/x-trash":          {},
	"application/x-executable":     {},
	"application/pdf":              {},
}

// IsIgnored reports known non-playlist types that are skipped silently.
func IsIgnored(c Classification) bool {
	if strings.HasPrefix(string(c), "image/") {
		return true
	}
	_, ok := ignoredTypes[c]
	return ok
}
