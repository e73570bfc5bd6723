package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message/header/encoding"
	"github.com/zostay/go-emlstream/message/header/field"
)

func TestCharsetReader(t *testing.T) {
	t.Parallel()

	r, err := encoding.CharsetReader("KOI8-R", bytes.NewReader([]byte{0xf0, 0xd2, 0xc9, 0xd7, 0xc5, 0xd4}))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Привет", string(out))
}

func TestCharsetReader_Unknown(t *testing.T) {
	t.Parallel()

	_, err := encoding.CharsetReader("x-no-such-charset", bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestDecodeBytes(t *testing.T) {
	t.Parallel()

	s, err := encoding.DecodeBytes("windows-1252", []byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = encoding.DecodeBytes("utf-8", []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", s)
}

func TestField_Text_Installed(t *testing.T) {
	t.Parallel()

	f := field.New("Subject", "=?koi8-r?Q?=F0=D2=C9=D7=C5=D4?=")
	assert.Equal(t, "Привет", f.Text())
}
