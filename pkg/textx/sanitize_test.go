package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	assert.Equal(t, "hello\nworld\t!", SanitizeText(in))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "héll", Clip("héllo", 4))
	assert.Equal(t, "héllo", Clip("héllo", 10))
	assert.Equal(t, "", Clip("abc", 0))
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", NormalizeNewlines("a\r\nb\rc"))
}
