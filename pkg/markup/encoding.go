package markup

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// Normalize returns buf as UTF-8. A UTF-16 or UTF-32 byte order mark causes
// the buffer to be transcoded and a UTF-8 mark is dropped. Without a
// recognisable mark, or when transcoding fails, buf is returned unchanged.
func Normalize(buf []byte) []byte {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(buf, bomUTF32BE):
		enc = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case bytes.HasPrefix(buf, bomUTF32LE):
		enc = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case bytes.HasPrefix(buf, bomUTF16BE):
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(buf, bomUTF16LE):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(buf, bomUTF8):
		return buf[len(bomUTF8):]
	default:
		return buf
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), buf)
	if err != nil {
		return buf
	}
	return out
}
