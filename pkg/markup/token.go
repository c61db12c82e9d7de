package markup

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenMarkupOpen        // <
	TokenMarkupOpenClosing // </
	TokenMarkupClose       // >
	TokenMarkupCloseSelf   // />
	TokenPIStart           // <?
	TokenPIStop            // ?>
	TokenDoctypeStart      // <!DOCTYPE
	TokenCommentStart      // <!--
	TokenCommentStop       // -->
	TokenCDataStart        // <![CDATA[
	TokenCDataStop         // ]]>
	TokenEquals            // =
	TokenQuotedString
	TokenEndOfLine
	TokenSeparator
	TokenIdentifier
	TokenTextData
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:               "eof",
	TokenError:             "error",
	TokenMarkupOpen:        "markup-open",
	TokenMarkupOpenClosing: "markup-open-closing",
	TokenMarkupClose:       "markup-close",
	TokenMarkupCloseSelf:   "markup-close-self",
	TokenPIStart:           "pi-start",
	TokenPIStop:            "pi-stop",
	TokenDoctypeStart:      "doctype-start",
	TokenCommentStart:      "comment-start",
	TokenCommentStop:       "comment-stop",
	TokenCDataStart:        "cdata-start",
	TokenCDataStop:         "cdata-stop",
	TokenEquals:            "equals",
	TokenQuotedString:      "quoted-string",
	TokenEndOfLine:         "end-of-line",
	TokenSeparator:         "separator",
	TokenIdentifier:        "identifier",
	TokenTextData:          "text-data",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexeme. Raw is the exact span of the input it was read from,
// quotes and delimiters included, so concatenating the Raw of every token
// reproduces the input.
type Token struct {
	Kind   TokenKind
	Raw    []byte
	Offset int
}

// Value is the token's payload: the content between the quotes for quoted
// strings and the raw span for everything else.
func (t Token) Value() string {
	if t.Kind == TokenQuotedString && len(t.Raw) >= 2 {
		return string(t.Raw[1 : len(t.Raw)-1])
	}
	return string(t.Raw)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Raw, t.Offset)
}
