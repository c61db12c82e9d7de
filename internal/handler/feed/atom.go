package feed

import (
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
)

func (h *Handler) applyAtomChannelField(meta *playlist.Builder, el *markup.Element) {
	switch localName(el.Name) {
	case "title":
		meta.SetIfAbsent(playlist.FieldTitle, el.TrimmedText())
	case "subtitle":
		if !meta.Has(playlist.FieldDescription) {
			meta.Set(playlist.FieldDescription, h.renderer.Render(el.Text))
		}
	case "author":
		meta.SetIfAbsent(playlist.FieldAuthor, el.ChildText("name"))
		meta.SetIfAbsent(playlist.FieldContact, el.ChildText("email"))
	case "rights":
		meta.SetIfAbsent(playlist.FieldCopyright, el.TrimmedText())
	case "logo", "icon":
		meta.SetIfAbsent(playlist.FieldImageURI, el.TrimmedText())
	case "id":
		meta.SetIfAbsent(playlist.FieldID, el.TrimmedText())
	case "category":
		meta.SetIfAbsent(playlist.FieldGenre, el.AttrValue("term"))
	case "updated":
		setDate(meta, el.TrimmedText())
	}
}

func (h *Handler) applyAtomItemField(entry *playlist.Builder, refs *itemReference, el *markup.Element) {
	if strings.EqualFold(el.Name, "media:content") {
		refs.offerStructured(el.AttrValue("url"), el.AttrValue("type"), el.AttrValue("fileSize"))
		return
	}

	switch localName(el.Name) {
	case "title":
		entry.SetIfAbsent(playlist.FieldTitle, el.TrimmedText())
	case "summary", "content":
		if !entry.Has(playlist.FieldDescription) {
			entry.Set(playlist.FieldDescription, h.renderer.Render(el.Text))
		}
	case "author":
		entry.SetIfAbsent(playlist.FieldAuthor, el.ChildText("name"))
	case "id":
		entry.SetIfAbsent(playlist.FieldID, el.TrimmedText())
	case "published", "updated":
		setDate(entry, el.TrimmedText())
	case "category":
		entry.SetIfAbsent(playlist.FieldGenre, el.AttrValue("term"))
	case "duration":
		setDuration(entry, el.TrimmedText())
	case "link":
		switch strings.ToLower(el.AttrValue("rel")) {
		case "enclosure":
			refs.offerStructured(el.AttrValue("href"), el.AttrValue("type"), el.AttrValue("length"))
		case "", "alternate":
			refs.offerUnstructured(el.AttrValue("href"))
		}
	case "thumbnail":
		entry.SetIfAbsent(playlist.FieldImageURI, el.AttrValue("url"))
	}
}
