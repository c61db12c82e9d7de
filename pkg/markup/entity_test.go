package markup_test

import (
	"testing"

	"github.com/rohmanhakim/playlist-resolver/pkg/markup"
	"github.com/stretchr/testify/assert"
)

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"no entities", "no entities"},
		{"a &amp; b", "a & b"},
		{"&lt;tag&gt; &quot;q&quot; &apos;s&apos;", `<tag> "q" 's'`},
		{"&#65;&#x42;&#X43;", "ABC"},
		{"&#233;t&#xe9;", "été"},
		{"AT&T", "AT&T"},
		{"&unknown; entity", "&unknown; entity"},
		{"&#; &#x; &#0;", "&#; &#x; &#0;"},
		{"&#xD800;", "&#xD800;"},
		{"trailing &", "trailing &"},
		{"&&amp;", "&&"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, markup.DecodeEntities(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "abc", string(markup.Normalize([]byte{0xEF, 0xBB, 0xBF, 'a', 'b', 'c'})))
	assert.Equal(t, "ab", string(markup.Normalize([]byte{0xFE, 0xFF, 0, 'a', 0, 'b'})))
	assert.Equal(t, "ab", string(markup.Normalize([]byte{0xFF, 0xFE, 'a', 0, 'b', 0})))
	assert.Equal(t, "a", string(markup.Normalize([]byte{0, 0, 0xFE, 0xFF, 0, 0, 0, 'a'})))
	assert.Equal(t, "a", string(markup.Normalize([]byte{0xFF, 0xFE, 0, 0, 'a', 0, 0, 0})))
	assert.Equal(t, "plain", string(markup.Normalize([]byte("plain"))))
}
