package textconv

import (
	"errors"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"golang.org/x/net/html"
)

/*
Rendering Rules
- Descriptions without markup are returned trimmed and otherwise untouched
- HTML descriptions become CommonMark, tables as GFM
- Links and images are kept as-is, never resolved
- A fragment that cannot be converted is returned unchanged and the failure
  is recorded
*/

type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Renderer turns a description fragment into the configured text format.
type Renderer interface {
	Render(fragment string) string
}

// New returns the renderer for format. Anything but markdown keeps the
// original HTML.
func New(format Format, metadataSink metadata.MetadataSink) Renderer {
	if format == FormatMarkdown {
		return NewMarkdownRenderer(metadataSink)
	}
	return Passthrough{}
}

// Passthrough keeps descriptions as they appear in the document.
type Passthrough struct{}

func (Passthrough) Render(fragment string) string {
	return strings.TrimSpace(fragment)
}

var _ Renderer = (*MarkdownRenderer)(nil)

type MarkdownRenderer struct {
	metadataSink metadata.MetadataSink
	conv         *converter.Converter
}

func NewMarkdownRenderer(metadataSink metadata.MetadataSink) *MarkdownRenderer {
	return &MarkdownRenderer{
		metadataSink: metadataSink,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (m *MarkdownRenderer) Render(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.ContainsRune(fragment, '<') {
		return fragment
	}

	markdown, err := m.convert(fragment)
	if err != nil {
		var conversionError *ConversionError
		errors.As(err, &conversionError)

		m.metadataSink.RecordError(
			time.Now(),
			"textconv",
			"MarkdownRenderer.Render",
			mapConversionErrorToMetadataCause(conversionError),
			err.Error(),
			[]metadata.Attribute{},
		)
		return fragment
	}
	return markdown
}

func (m *MarkdownRenderer) convert(fragment string) (string, failure.ClassifiedError) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", &ConversionError{
			Message: err.Error(),
			Cause:   ErrCauseParseFailure,
		}
	}

	markdown, err := m.conv.ConvertNode(doc)
	if err != nil {
		return "", &ConversionError{
			Message: err.Error(),
			Cause:   ErrCauseConversionFailure,
		}
	}
	return strings.TrimSpace(string(markdown)), nil
}
