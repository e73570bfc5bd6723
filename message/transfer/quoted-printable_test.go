package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/transfer"
)

var qpHeader = header.Parse([]byte("Content-Transfer-Encoding: quoted-printable\n"), false)

func TestQuotedPrintableDecoder(t *testing.T) {
	t.Parallel()

	c := &capture{}
	ctx := codec.NewContext(nil)
	ctx.Part = 3

	f := transfer.NewQuotedPrintableDecoderFactory(c.handle)
	assert.Nil(t, f.TryMatch(ctx, b64Header))

	d := f.TryMatch(ctx, qpHeader)
	require.NotNil(t, d)

	for _, b := range []byte("caf=C3=A9 soft=\nbreak") {
		require.NoError(t, d.Decode(ctx, []byte{b}))
	}
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, "café softbreak", string(c.data))
	assert.Equal(t, 3, c.part)
	assert.ErrorIs(t, d.Close(ctx), codec.ErrClosed)
}

func TestQuotedPrintableEncoder(t *testing.T) {
	t.Parallel()

	f := transfer.NewQuotedPrintableEncoderFactory()
	assert.Nil(t, f.TryMatch(b64Header, header.LF))

	e := f.TryMatch(qpHeader, header.LF)
	require.NotNil(t, e)
	assert.Equal(t, "Hello=3DWorld\ncaf=C3=A9", encodeAll(t, e, "Hello=World\n", "café"))

	e = f.TryMatch(qpHeader, header.CRLF)
	require.NotNil(t, e)
	assert.Equal(t, "a=3Db\r\nc", encodeAll(t, e, "a=b\r", "\nc"))
}
