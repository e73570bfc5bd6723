package header_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-emlstream/message/header"
)

func TestBreak_Bytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{}, header.Meh.Bytes())
	assert.Equal(t, []byte{0x0d, 0x0a}, header.CRLF.Bytes())
	assert.Equal(t, []byte{0x0a}, header.LF.Bytes())
	assert.Equal(t, []byte{0x0d}, header.CR.Bytes())
	assert.Equal(t, []byte{0x0a, 0x0d}, header.LFCR.Bytes())
}

func TestBreak_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", header.Meh.String())
	assert.Equal(t, "\r\n", header.CRLF.String())
	assert.Equal(t, "\n", header.LF.String())
	assert.Equal(t, "\r", header.CR.String())
	assert.Equal(t, "\n\r", header.LFCR.String())
}

func TestDetectBreak(t *testing.T) {
	t.Parallel()

	assert.Equal(t, header.CRLF, header.DetectBreak([]byte("a: b\r\nc: d\n")))
	assert.Equal(t, header.LF, header.DetectBreak([]byte("a: b\nc: d\r\n")))
	assert.Equal(t, header.LF, header.DetectBreak([]byte("\n")))
	assert.Equal(t, header.Meh, header.DetectBreak([]byte("a: b")))
}

func TestBreak_Or(t *testing.T) {
	t.Parallel()

	assert.Equal(t, header.LF, header.Meh.Or(header.LF))
	assert.Equal(t, header.CRLF, header.CRLF.Or(header.LF))
}
