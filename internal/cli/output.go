package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/resolver"
)

// printer writes events either as indented text or as JSON lines. It tracks
// nesting so text output shows which playlist an entry belongs to.
type printer struct {
	out   io.Writer
	json  bool
	depth int
}

func newPrinter(out io.Writer, asJSON bool) *printer {
	return &printer{out: out, json: asJSON}
}

type jsonLine struct {
	Event  string            `json:"event"`
	Ref    string            `json:"ref"`
	Meta   map[string]string `json:"meta,omitempty"`
	Result string            `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (p *printer) event(e playlist.Event) {
	if p.json {
		line := jsonLine{Event: e.Kind.String(), Ref: e.Ref}
		if e.Meta.Len() > 0 {
			line.Meta = e.Meta.Map()
		}
		p.writeJSON(line)
		return
	}

	switch e.Kind {
	case playlist.EventPlaylistStarted:
		p.writeText("playlist", e.Ref, e.Meta)
		p.depth++
	case playlist.EventEntryParsed:
		p.writeText("entry", e.Ref, e.Meta)
	case playlist.EventPlaylistEnded:
		if p.depth > 0 {
			p.depth--
		}
		p.writeText("end", e.Ref, playlist.Entry{})
	}
}

func (p *printer) outcome(o resolver.Outcome) {
	// a cancelled stream may leave playlists open
	p.depth = 0

	if p.json {
		line := jsonLine{Event: "result", Ref: o.Ref, Result: o.Result.String()}
		if o.Err != nil {
			line.Error = o.Err.Error()
		}
		p.writeJSON(line)
		return
	}

	if o.Err != nil {
		fmt.Fprintf(p.out, "result %s %s: %s\n", o.Ref, o.Result, o.Err)
		return
	}
	fmt.Fprintf(p.out, "result %s %s\n", o.Ref, o.Result)
}

func (p *printer) writeText(label string, ref string, meta playlist.Entry) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", p.depth))
	b.WriteString(label)
	b.WriteByte(' ')
	b.WriteString(ref)
	for _, field := range meta.Fields() {
		if field == playlist.FieldURI {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(string(field))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(meta.Value(field)))
	}
	b.WriteByte('\n')
	io.WriteString(p.out, b.String())
}

func (p *printer) writeJSON(line jsonLine) {
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	p.out.Write(append(data, '\n'))
}
