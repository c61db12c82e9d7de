package m3u

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

/*
Responsibilities

- Recognise extended M3U and bare lists of references
- Attach #EXTINF and friends to the reference that follows them
- Resolve every reference against the playlist's base and follow it

Lines are split on CRLF when the content holds any carriage return,
otherwise on LF.
*/

const (
	Name = "m3u"

	directiveHeader   = "#EXTM3U"
	directiveInfo     = "#EXTINF:"
	directiveAlbum    = "#EXTALB:"
	directiveArtist   = "#EXTART:"
	directiveGenre    = "#EXTGENRE:"
	directiveImage    = "#EXTIMG:"
	directivePlaylist = "#PLAYLIST:"

	// how many leading references a bare list must get right to be trusted
	identifyLines = 10
)

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

// Identify accepts extended M3U outright. A bare list is accepted when its
// first non-comment lines all look like absolute references or paths.
func (h *Handler) Identify(content []byte) bool {
	content = markup.Normalize(content)
	if bytes.IndexByte(content, 0) >= 0 {
		return false
	}
	head := bytes.TrimLeft(content, " \t\r\n")
	if hasPrefixFold(head, directiveHeader) || hasPrefixFold(head, "#EXTINF") {
		return true
	}

	checked := 0
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !looksLikeReference(line) {
			return false
		}
		checked++
		if checked == identifyLines {
			break
		}
	}
	return checked > 0
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	lines := splitLines(markup.Normalize(req.Content))

	meta := playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true)
	for _, line := range lines {
		if title, ok := cutPrefixFold(strings.TrimSpace(line), directivePlaylist); ok {
			meta.SetIfAbsent(playlist.FieldTitle, title)
		}
	}

	req.Sink.PlaylistStarted(req.Ref, meta.Build())

	entry := playlist.NewBuilder()
	for _, raw := range lines {
		if ctx.Err() != nil {
			return playlist.Cancelled, nil
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			applyDirective(entry, line)
			continue
		}

		ref, err := urlutil.ResolveReference(req.BaseRef(), line)
		if err != nil {
			// a single unusable line does not spoil the playlist
			entry = playlist.NewBuilder()
			continue
		}
		if !handler.ResolveOrEmit(ctx, req, ref, entry) {
			return playlist.Cancelled, nil
		}
		entry = playlist.NewBuilder()
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

func applyDirective(entry *playlist.Builder, line string) {
	if value, ok := cutPrefixFold(line, directiveInfo); ok {
		applyInfo(entry, value)
		return
	}
	if value, ok := cutPrefixFold(line, directiveAlbum); ok {
		entry.Set(playlist.FieldAlbum, value)
		return
	}
	if value, ok := cutPrefixFold(line, directiveArtist); ok {
		entry.Set(playlist.FieldAuthor, value)
		return
	}
	if value, ok := cutPrefixFold(line, directiveGenre); ok {
		entry.Set(playlist.FieldGenre, value)
		return
	}
	if value, ok := cutPrefixFold(line, directiveImage); ok {
		entry.Set(playlist.FieldImageURI, value)
	}
}

// applyInfo reads `#EXTINF:<duration>[ key="value"...],<title>`. A negative
// duration means unknown.
func applyInfo(entry *playlist.Builder, value string) {
	head, title := splitInfo(value)
	entry.Set(playlist.FieldTitle, title)

	fields := strings.Fields(head)
	if len(fields) == 0 {
		return
	}
	if seconds, err := strconv.ParseFloat(fields[0], 64); err == nil && seconds > 0 {
		entry.SetInt(playlist.FieldDuration, int64(seconds))
	}
	for key, attr := range parseAttributes(head) {
		switch strings.ToLower(key) {
		case "tvg-logo":
			entry.Set(playlist.FieldImageURI, attr)
		case "group-title":
			entry.Set(playlist.FieldGenre, attr)
		case "tvg-id":
			entry.Set(playlist.FieldID, attr)
		}
	}
}

// splitInfo splits at the first comma outside double quotes.
func splitInfo(value string) (string, string) {
	quoted := false
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				return value[:i], value[i+1:]
			}
		}
	}
	return value, ""
}

func parseAttributes(head string) map[string]string {
	attrs := make(map[string]string)
	rest := head
	for {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 || eq+1 >= len(rest) || rest[eq+1] != '"' {
			return attrs
		}
		key := rest[:eq]
		if sp := strings.LastIndexAny(key, " \t"); sp >= 0 {
			key = key[sp+1:]
		}
		end := strings.IndexByte(rest[eq+2:], '"')
		if end < 0 {
			return attrs
		}
		attrs[key] = rest[eq+2 : eq+2+end]
		rest = rest[eq+2+end+1:]
	}
}

func splitLines(content []byte) []string {
	sep := "\n"
	if bytes.IndexByte(content, '\r') >= 0 {
		sep = "\r\n"
	}
	return strings.Split(string(content), sep)
}

func looksLikeReference(line string) bool {
	if urlutil.HasScheme(line) {
		return !strings.ContainsAny(line, " \t")
	}
	return strings.HasPrefix(line, "/") || urlutil.IsWindowsDrivePath(line) || urlutil.IsUNCPath(line)
}

func hasPrefixFold(buf []byte, prefix string) bool {
	return len(buf) >= len(prefix) && strings.EqualFold(string(buf[:len(prefix)]), prefix)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
