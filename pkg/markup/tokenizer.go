package markup

import "bytes"

/*
Tokenizer

A lenient, streaming lexer for the markup found in playlists and feeds.
Real-world documents are frequently not well formed, so the tokenizer never
validates structure; it only splits the buffer into lexemes and leaves every
structural decision to Parse.

Responsibilities
- Produce tokens whose raw spans cover the buffer without gaps
- Switch between markup, text-data and CDATA modes
- Keep `>` inside a comment from ending the markup mode
- Report unrecognised `<!` constructs and unterminated strings as errors

The tokenizer operates on the already-normalised buffer; see Normalize.
*/

type lexMode int

const (
	modeNormal lexMode = iota
	modeTextData
	modeCData
)

var (
	lexCommentStart = []byte("<!--")
	lexCommentStop  = []byte("-->")
	lexCDataStart   = []byte("<![CDATA[")
	lexCDataStop    = []byte("]]>")
	lexDoctypeStart = []byte("<!DOCTYPE")
)

type Tokenizer struct {
	buf       []byte
	pos       int
	mode      lexMode
	inComment bool
}

func NewTokenizer(buf []byte) *Tokenizer {
	return &Tokenizer{buf: buf}
}

// Next returns the next token. Once TokenEOF is returned every further call
// returns TokenEOF again.
func (t *Tokenizer) Next() Token {
	if t.pos >= len(t.buf) {
		return Token{Kind: TokenEOF, Offset: len(t.buf)}
	}

	switch t.mode {
	case modeTextData:
		if tok, ok := t.nextTextData(); ok {
			return tok
		}
		return t.nextNormal()
	case modeCData:
		return t.nextCData()
	default:
		return t.nextNormal()
	}
}

// Tokens drains the tokenizer, stopping after the first error or end of input.
func (t *Tokenizer) Tokens() []Token {
	var tokens []Token
	for {
		tok := t.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF || tok.Kind == TokenError {
			return tokens
		}
	}
}

func (t *Tokenizer) emit(kind TokenKind, length int) Token {
	tok := Token{Kind: kind, Raw: t.buf[t.pos : t.pos+length], Offset: t.pos}
	t.pos += length
	return tok
}

func (t *Tokenizer) errorToken() Token {
	tok := Token{Kind: TokenError, Raw: t.buf[t.pos:], Offset: t.pos}
	t.pos = len(t.buf)
	return tok
}

func (t *Tokenizer) hasPrefix(prefix []byte) bool {
	return bytes.HasPrefix(t.buf[t.pos:], prefix)
}

func (t *Tokenizer) hasPrefixFold(prefix []byte) bool {
	rest := t.buf[t.pos:]
	return len(rest) >= len(prefix) && bytes.EqualFold(rest[:len(prefix)], prefix)
}

// closeMarkup leaves markup mode after `>`, `/>` or `?>` unless a comment is open.
func (t *Tokenizer) closeMarkup() {
	if !t.inComment {
		t.mode = modeTextData
	}
}

// nextTextData consumes everything up to the next `<`. It reports false when
// there is no text before the next markup.
func (t *Tokenizer) nextTextData() (Token, bool) {
	t.mode = modeNormal
	end := bytes.IndexByte(t.buf[t.pos:], '<')
	if end < 0 {
		end = len(t.buf) - t.pos
	}
	if end == 0 {
		return Token{}, false
	}
	return t.emit(TokenTextData, end), true
}

func (t *Tokenizer) nextCData() Token {
	end := bytes.Index(t.buf[t.pos:], lexCDataStop)
	switch {
	case end < 0:
		return t.errorToken()
	case end == 0:
		t.mode = modeTextData
		return t.emit(TokenCDataStop, len(lexCDataStop))
	default:
		return t.emit(TokenTextData, end)
	}
}

func (t *Tokenizer) nextNormal() Token {
	c := t.buf[t.pos]

	switch c {
	case '<':
		return t.nextMarkupOpen()
	case '>':
		tok := t.emit(TokenMarkupClose, 1)
		t.closeMarkup()
		return tok
	case '=':
		return t.emit(TokenEquals, 1)
	case '"', '\'':
		if t.inComment {
			break
		}
		end := bytes.IndexByte(t.buf[t.pos+1:], c)
		if end < 0 {
			return t.errorToken()
		}
		return t.emit(TokenQuotedString, end+2)
	case '\r':
		if t.pos+1 < len(t.buf) && t.buf[t.pos+1] == '\n' {
			return t.emit(TokenEndOfLine, 2)
		}
		return t.emit(TokenEndOfLine, 1)
	case '\n':
		return t.emit(TokenEndOfLine, 1)
	case ' ', '\t':
		n := 1
		for t.pos+n < len(t.buf) && (t.buf[t.pos+n] == ' ' || t.buf[t.pos+n] == '\t') {
			n++
		}
		return t.emit(TokenSeparator, n)
	case '/':
		if t.hasPrefix([]byte("/>")) {
			tok := t.emit(TokenMarkupCloseSelf, 2)
			t.closeMarkup()
			return tok
		}
	case '?':
		if t.hasPrefix([]byte("?>")) {
			tok := t.emit(TokenPIStop, 2)
			t.closeMarkup()
			return tok
		}
	case '-':
		if t.hasPrefix(lexCommentStop) {
			tok := t.emit(TokenCommentStop, len(lexCommentStop))
			t.inComment = false
			t.mode = modeTextData
			return tok
		}
	}

	return t.emit(TokenIdentifier, t.identifierLength())
}

func (t *Tokenizer) nextMarkupOpen() Token {
	switch {
	case t.hasPrefix(lexCommentStart):
		t.inComment = true
		return t.emit(TokenCommentStart, len(lexCommentStart))
	case t.hasPrefix(lexCDataStart) && !t.inComment:
		t.mode = modeCData
		return t.emit(TokenCDataStart, len(lexCDataStart))
	case t.hasPrefixFold(lexDoctypeStart):
		return t.emit(TokenDoctypeStart, len(lexDoctypeStart))
	case t.hasPrefix([]byte("<!")):
		if t.inComment {
			return t.emit(TokenMarkupOpen, 1)
		}
		return t.errorToken()
	case t.hasPrefix([]byte("</")):
		return t.emit(TokenMarkupOpenClosing, 2)
	case t.hasPrefix([]byte("<?")):
		return t.emit(TokenPIStart, 2)
	default:
		return t.emit(TokenMarkupOpen, 1)
	}
}

// identifierLength scans an identifier starting at the current position.
// A `--` that is not followed by `>` stays part of the identifier, and inside
// a comment quotes are ordinary characters.
func (t *Tokenizer) identifierLength() int {
	n := 1
	for t.pos+n < len(t.buf) {
		rest := t.buf[t.pos+n:]
		switch rest[0] {
		case '<', '>', '=', ' ', '\t', '\r', '\n':
			return n
		case '"', '\'':
			if !t.inComment {
				return n
			}
		case '/':
			if len(rest) > 1 && rest[1] == '>' {
				return n
			}
		case '?':
			if len(rest) > 1 && rest[1] == '>' {
				return n
			}
		case '-':
			if bytes.HasPrefix(rest, lexCommentStop) {
				return n
			}
		}
		n++
	}
	return n
}
