package markup

import (
	"bytes"
	"strings"

	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
)

type Attr struct {
	Name  string
	Value string
}

// Element is a node of the lenient document tree. Text holds the element's
// own character data and CDATA, in document order, with entities decoded.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
	Parent   *Element
}

// Attr looks up an attribute by case-insensitive name.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue is Attr without the presence flag.
func (e *Element) AttrValue(name string) string {
	v, _ := e.Attr(name)
	return v
}

// Child returns the first direct child whose name matches case-insensitively.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// ChildText is the trimmed text of the first matching child, or "".
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return c.TrimmedText()
	}
	return ""
}

func (e *Element) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}

// Is reports whether the element has the given name, case-insensitively.
func (e *Element) Is(name string) bool {
	return strings.EqualFold(e.Name, name)
}

// StripComments removes `<!-- ... -->` sections textually. An unterminated
// comment swallows the rest of the buffer.
func StripComments(buf []byte) []byte {
	start := bytes.Index(buf, lexCommentStart)
	if start < 0 {
		return buf
	}

	out := make([]byte, 0, len(buf))
	for start >= 0 {
		out = append(out, buf[:start]...)
		rest := buf[start+len(lexCommentStart):]
		end := bytes.Index(rest, lexCommentStop)
		if end < 0 {
			return out
		}
		buf = rest[end+len(lexCommentStop):]
		start = bytes.Index(buf, lexCommentStart)
	}
	return append(out, buf...)
}

// Parse builds a lenient element tree. Encoding is normalised first and
// comments are stripped before tokenizing. Unclosed elements are closed at the
// end of input and stray closing tags are ignored; only lexical errors and a
// missing root element fail the parse.
func Parse(buf []byte) (*Element, failure.ClassifiedError) {
	p := &parser{tok: NewTokenizer(StripComments(Normalize(buf)))}
	return p.parse()
}

type parser struct {
	tok     *Tokenizer
	root    *Element
	current *Element
	text    map[*Element]*strings.Builder
}

func (p *parser) parse() (*Element, failure.ClassifiedError) {
	p.text = make(map[*Element]*strings.Builder)

	for {
		tok := p.tok.Next()
		switch tok.Kind {
		case TokenEOF:
			return p.finish(tok.Offset)
		case TokenError:
			return nil, &ParseError{Message: truncate(tok.Raw), Cause: ErrCauseLexical, Offset: tok.Offset}
		case TokenMarkupOpen:
			if err := p.openElement(); err != nil {
				return nil, err
			}
		case TokenMarkupOpenClosing:
			if err := p.closeElement(); err != nil {
				return nil, err
			}
		case TokenPIStart:
			if err := p.skipUntil(TokenPIStop); err != nil {
				return nil, err
			}
		case TokenDoctypeStart:
			if err := p.skipUntil(TokenMarkupClose); err != nil {
				return nil, err
			}
		case TokenCommentStart:
			if err := p.skipUntil(TokenCommentStop); err != nil {
				return nil, err
			}
		case TokenCDataStart:
			if err := p.readCData(); err != nil {
				return nil, err
			}
		case TokenTextData:
			p.appendText(DecodeEntities(string(tok.Raw)))
		}
	}
}

func (p *parser) finish(offset int) (*Element, failure.ClassifiedError) {
	if p.root == nil {
		return nil, &ParseError{Message: "document has no element", Cause: ErrCauseNoRoot, Offset: offset}
	}
	for el, b := range p.text {
		el.Text = b.String()
	}
	return p.root, nil
}

func (p *parser) appendText(s string) {
	if p.current == nil || s == "" {
		return
	}
	b, ok := p.text[p.current]
	if !ok {
		b = &strings.Builder{}
		p.text[p.current] = b
	}
	b.WriteString(s)
}

// nextSignificant skips separators and line ends.
func (p *parser) nextSignificant() Token {
	for {
		tok := p.tok.Next()
		if tok.Kind != TokenSeparator && tok.Kind != TokenEndOfLine {
			return tok
		}
	}
}

func (p *parser) openElement() failure.ClassifiedError {
	nameTok := p.nextSignificant()
	if nameTok.Kind != TokenIdentifier {
		return &ParseError{Message: "expected element name", Cause: ErrCauseMalformedTag, Offset: nameTok.Offset}
	}
	el := &Element{Name: string(nameTok.Raw)}

	selfClosing := false
	var pending *Attr
	flush := func() {
		if pending != nil {
			el.Attrs = append(el.Attrs, *pending)
			pending = nil
		}
	}

loop:
	for {
		tok := p.nextSignificant()
		switch tok.Kind {
		case TokenIdentifier:
			flush()
			pending = &Attr{Name: string(tok.Raw)}
		case TokenEquals:
			valueTok := p.nextSignificant()
			if pending == nil {
				continue
			}
			switch valueTok.Kind {
			case TokenQuotedString, TokenIdentifier:
				pending.Value = DecodeEntities(valueTok.Value())
			case TokenError:
				return &ParseError{Message: truncate(valueTok.Raw), Cause: ErrCauseLexical, Offset: valueTok.Offset}
			default:
				return &ParseError{Message: "expected attribute value", Cause: ErrCauseMalformedTag, Offset: valueTok.Offset}
			}
			flush()
		case TokenQuotedString:
			// stray value without a name
		case TokenMarkupClose:
			break loop
		case TokenMarkupCloseSelf:
			selfClosing = true
			break loop
		case TokenError:
			return &ParseError{Message: truncate(tok.Raw), Cause: ErrCauseLexical, Offset: tok.Offset}
		default:
			return &ParseError{Message: "unterminated start tag <" + el.Name, Cause: ErrCauseMalformedTag, Offset: tok.Offset}
		}
	}
	flush()

	if p.current == nil {
		if p.root != nil {
			// a second top-level element; keep the first as the document
			if !selfClosing {
				p.skipElement(el.Name)
			}
			return nil
		}
		p.root = el
	} else {
		el.Parent = p.current
		p.current.Children = append(p.current.Children, el)
	}

	if !selfClosing {
		p.current = el
	}
	return nil
}

// closeElement pops up to and including the nearest open element with the
// given name. A closing tag with no matching open element is ignored.
func (p *parser) closeElement() failure.ClassifiedError {
	nameTok := p.nextSignificant()
	switch nameTok.Kind {
	case TokenIdentifier:
		if err := p.skipUntil(TokenMarkupClose); err != nil {
			return err
		}
	case TokenError:
		return &ParseError{Message: truncate(nameTok.Raw), Cause: ErrCauseLexical, Offset: nameTok.Offset}
	}
	name := string(nameTok.Raw)

	for el := p.current; el != nil; el = el.Parent {
		if strings.EqualFold(el.Name, name) {
			p.current = el.Parent
			return nil
		}
	}
	return nil
}

func (p *parser) readCData() failure.ClassifiedError {
	for {
		tok := p.tok.Next()
		switch tok.Kind {
		case TokenTextData:
			p.appendText(string(tok.Raw))
		case TokenCDataStop, TokenEOF:
			return nil
		case TokenError:
			return &ParseError{Message: truncate(tok.Raw), Cause: ErrCauseLexical, Offset: tok.Offset}
		}
	}
}

// skipUntil discards tokens up to and including the next token of the given
// kind. A lexical error on the way fails the parse.
func (p *parser) skipUntil(kind TokenKind) failure.ClassifiedError {
	for {
		tok := p.tok.Next()
		switch tok.Kind {
		case kind, TokenEOF:
			return nil
		case TokenError:
			return &ParseError{Message: truncate(tok.Raw), Cause: ErrCauseLexical, Offset: tok.Offset}
		}
	}
}

// skipElement discards tokens up to the matching close tag of a trailing
// top-level element.
func (p *parser) skipElement(name string) {
	depth := 1
	for depth > 0 {
		tok := p.tok.Next()
		switch tok.Kind {
		case TokenEOF, TokenError:
			return
		case TokenMarkupOpenClosing:
			nameTok := p.nextSignificant()
			if strings.EqualFold(string(nameTok.Raw), name) {
				depth--
			}
		}
	}
}

func truncate(raw []byte) string {
	const max = 40
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
