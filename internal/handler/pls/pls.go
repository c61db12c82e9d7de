// Package pls reads the ini-style `[playlist]` format. Entries are numbered
// FileN, TitleN and LengthN keys, matched case-insensitively and emitted in
// order of N regardless of where they appear.
package pls

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

const Name = "pls"

var header = []byte("[playlist]")

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
	head := bytes.TrimLeft(markup.Normalize(content), " \t\r\n")
	return len(head) >= len(header) && bytes.EqualFold(head[:len(header)], header)
}

type item struct {
	file   string
	title  string
	length int64
}

func (h *Handler) Handle(ctx context.Context, req handler.Request) (playlist.Result, failure.ClassifiedError) {
	items := parse(markup.Normalize(req.Content))

	req.Sink.PlaylistStarted(req.Ref, playlist.NewBuilder().
		Set(playlist.FieldURI, req.Ref).
		SetBool(playlist.FieldIsPlaylist, true).
		Build())

	for _, it := range items {
		if ctx.Err() != nil {
			return playlist.Cancelled, nil
		}
		if it.file == "" {
			continue
		}
		ref, err := urlutil.ResolveReference(req.BaseRef(), it.file)
		if err != nil {
			continue
		}

		entry := playlist.NewBuilder().Set(playlist.FieldTitle, it.title)
		if it.length > 0 {
			entry.SetInt(playlist.FieldDuration, it.length)
		}
		if !handler.ResolveOrEmit(ctx, req, ref, entry) {
			return playlist.Cancelled, nil
		}
	}

	req.Sink.PlaylistEnded(req.Ref)
	return playlist.Success, nil
}

func parse(content []byte) []item {
	byIndex := make(map[int]*item)
	for _, line := range strings.Split(string(content), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		field, n, ok := splitKey(strings.ToLower(strings.TrimSpace(key)))
		if !ok {
			continue
		}
		it, exists := byIndex[n]
		if !exists {
			it = &item{}
			byIndex[n] = it
		}
		value = strings.TrimSpace(value)
		switch field {
		case "file":
			it.file = value
		case "title":
			it.title = value
		case "length":
			if length, err := strconv.ParseInt(value, 10, 64); err == nil {
				it.length = length
			}
		}
	}

	indexes := make([]int, 0, len(byIndex))
	for n := range byIndex {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	items := make([]item, 0, len(indexes))
	for _, n := range indexes {
		items = append(items, *byIndex[n])
	}
	return items
}

// splitKey splits "file12" into ("file", 12).
func splitKey(key string) (string, int, bool) {
	for _, field := range []string{"file", "title", "length"} {
		if rest, ok := strings.CutPrefix(key, field); ok {
			n, err := strconv.Atoi(rest)
			if err != nil || n < 0 {
				return "", 0, false
			}
			return field, n, true
		}
	}
	return "", 0, false
}
