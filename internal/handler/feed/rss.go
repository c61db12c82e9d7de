package feed

import (
	"strings"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
)

func (h *Handler) applyRSSChannelField(meta *playlist.Builder, el *markup.Element) {
	switch strings.ToLower(el.Name) {
	case "title":
		meta.SetIfAbsent(playlist.FieldTitle, el.TrimmedText())
	case "description", "itunes:summary":
		if !meta.Has(playlist.FieldDescription) {
			meta.Set(playlist.FieldDescription, h.renderer.Render(el.Text))
		}
	case "itunes:author", "author", "dc:creator":
		meta.SetIfAbsent(playlist.FieldAuthor, el.TrimmedText())
	case "copyright", "dc:rights":
		meta.SetIfAbsent(playlist.FieldCopyright, el.TrimmedText())
	case "language", "dc:language":
		meta.SetIfAbsent(playlist.FieldLanguage, el.TrimmedText())
	case "managingeditor", "webmaster":
		meta.SetIfAbsent(playlist.FieldContact, el.TrimmedText())
	case "image":
		meta.SetIfAbsent(playlist.FieldImageURI, el.ChildText("url"))
	case "itunes:image":
		meta.SetIfAbsent(playlist.FieldImageURI, el.AttrValue("href"))
	case "category":
		meta.SetIfAbsent(playlist.FieldGenre, el.TrimmedText())
	case "itunes:category":
		meta.SetIfAbsent(playlist.FieldGenre, el.AttrValue("text"))
	case "itunes:explicit":
		meta.SetIfAbsent(playlist.FieldContentRating, contentRating(el.TrimmedText()))
	case "pubdate", "lastbuilddate", "dc:date":
		setDate(meta, el.TrimmedText())
	}
}

func (h *Handler) applyRSSItemField(entry *playlist.Builder, refs *itemReference, el *markup.Element) {
	switch strings.ToLower(el.Name) {
	case "title":
		entry.SetIfAbsent(playlist.FieldTitle, el.TrimmedText())
	case "description", "content:encoded", "itunes:summary":
		if !entry.Has(playlist.FieldDescription) {
			entry.Set(playlist.FieldDescription, h.renderer.Render(el.Text))
		}
	case "itunes:author", "author", "dc:creator":
		entry.SetIfAbsent(playlist.FieldAuthor, el.TrimmedText())
	case "guid":
		entry.SetIfAbsent(playlist.FieldID, el.TrimmedText())
	case "pubdate", "dc:date":
		setDate(entry, el.TrimmedText())
	case "itunes:duration":
		setDuration(entry, el.TrimmedText())
	case "category":
		entry.SetIfAbsent(playlist.FieldGenre, el.TrimmedText())
	case "itunes:image":
		entry.SetIfAbsent(playlist.FieldImageURI, el.AttrValue("href"))
	case "media:thumbnail":
		entry.SetIfAbsent(playlist.FieldImageURI, el.AttrValue("url"))
	case "itunes:explicit":
		entry.SetIfAbsent(playlist.FieldContentRating, contentRating(el.TrimmedText()))
	case "link":
		refs.offerUnstructured(el.TrimmedText())
	case "enclosure":
		refs.offerStructured(el.AttrValue("url"), el.AttrValue("type"), el.AttrValue("length"))
	case "media:content":
		refs.offerStructured(el.AttrValue("url"), el.AttrValue("type"), el.AttrValue("fileSize"))
	case "media:group":
		for _, content := range el.ChildrenNamed("media:content") {
			refs.offerStructured(content.AttrValue("url"), content.AttrValue("type"), content.AttrValue("fileSize"))
		}
	}
}
