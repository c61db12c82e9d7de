package playlist

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Field is a well-known metadata key attached to an entry or playlist.
type Field string

const (
	FieldURI             Field = "url"
	FieldTitle           Field = "title"
	FieldAuthor          Field = "author"
	FieldGenre           Field = "genre"
	FieldAlbum           Field = "album"
	FieldDescription     Field = "description"
	FieldDuration        Field = "duration"
	FieldDurationMS      Field = "duration-ms"
	FieldStartTime       Field = "starttime"
	FieldEndTime         Field = "endtime"
	FieldPublicationDate Field = "publication-date"
	FieldCopyright       Field = "copyright"
	FieldImageURI        Field = "image-url"
	FieldContentType     Field = "content-type"
	FieldContentRating   Field = "content-rating"
	FieldID              Field = "id"
	FieldDownloadURI     Field = "download-url"
	FieldFileSize        Field = "filesize"
	FieldLanguage        Field = "language"
	FieldContact         Field = "contact"
	FieldSubtitleURI     Field = "subtitle-uri"
	FieldIsPlaylist      Field = "is-playlist"
	FieldBase            Field = "base"
)

// Entry is an immutable set of metadata fields. Values are always non-empty
// valid UTF-8.
type Entry struct {
	fields map[Field]string
}

func (e Entry) Get(field Field) (string, bool) {
	v, ok := e.fields[field]
	return v, ok
}

// Value is Get without the presence flag.
func (e Entry) Value(field Field) string {
	return e.fields[field]
}

func (e Entry) Has(field Field) bool {
	_, ok := e.fields[field]
	return ok
}

func (e Entry) Len() int {
	return len(e.fields)
}

// Fields returns the present keys in sorted order.
func (e Entry) Fields() []Field {
	keys := make([]Field, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Map returns a copy of the fields keyed by their string names.
func (e Entry) Map() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[string(k)] = v
	}
	return out
}

// Builder accumulates fields for an Entry. Blank values are dropped and
// invalid UTF-8 is reinterpreted as Latin-1.
type Builder struct {
	fields map[Field]string
}

func NewBuilder() *Builder {
	return &Builder{fields: make(map[Field]string)}
}

// Set stores value under field, replacing any previous value.
func (b *Builder) Set(field Field, value string) *Builder {
	value = strings.TrimSpace(repairUTF8(value))
	if value == "" {
		return b
	}
	b.fields[field] = value
	return b
}

// SetIfAbsent only stores value when field has no value yet, which gives
// "first match wins" when walking a document in order.
func (b *Builder) SetIfAbsent(field Field, value string) *Builder {
	if _, exists := b.fields[field]; exists {
		return b
	}
	return b.Set(field, value)
}

func (b *Builder) SetInt(field Field, value int64) *Builder {
	return b.Set(field, strconv.FormatInt(value, 10))
}

func (b *Builder) SetBool(field Field, value bool) *Builder {
	if !value {
		delete(b.fields, field)
		return b
	}
	return b.Set(field, "true")
}

func (b *Builder) Has(field Field) bool {
	_, ok := b.fields[field]
	return ok
}

func (b *Builder) Build() Entry {
	fields := make(map[Field]string, len(b.fields))
	for k, v := range b.fields {
		fields[k] = v
	}
	return Entry{fields: fields}
}

// EntryFor is the minimal entry for a single reference.
func EntryFor(uri string) Entry {
	return NewBuilder().Set(FieldURI, uri).Build()
}

func repairUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return strings.ToValidUTF8(s, "")
	}
	return decoded
}
