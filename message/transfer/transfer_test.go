package transfer_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/transfer"
)

const dec = `1 Timothy 6:10 - For the love of money is a root of all kinds of evils. It is through this craving that some have wandered away from the faith and pierced themselves with many pangs.`
const enc = `MSBUaW1vdGh5IDY6MTAgLSBGb3IgdGhlIGxvdmUgb2YgbW9uZXkgaXMgYSByb290IG9mIGFsbCBr
aW5kcyBvZiBldmlscy4gSXQgaXMgdGhyb3VnaCB0aGlzIGNyYXZpbmcgdGhhdCBzb21lIGhhdmUg
d2FuZGVyZWQgYXdheSBmcm9tIHRoZSBmYWl0aCBhbmQgcGllcmNlZCB0aGVtc2VsdmVzIHdpdGgg
bWFueSBwYW5ncy4=`

func TestApplyTransferDecoding(t *testing.T) {
	t.Parallel()

	h := header.Parse([]byte("Content-Transfer-Encoding: base64\n"), false)

	tdr := transfer.ApplyTransferDecoding(h, strings.NewReader(enc))
	tdb, err := io.ReadAll(tdr)
	require.NoError(t, err)
	assert.Equal(t, dec, string(tdb))
}

func TestApplyTransferDecoding_AsIs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"Subject: no encoding\n",
		"Content-Transfer-Encoding: 8bit\n",
		"Content-Type: multipart/mixed; boundary=x\nContent-Transfer-Encoding: base64\n",
	} {
		h := header.Parse([]byte(raw), false)
		tdb, err := io.ReadAll(transfer.ApplyTransferDecoding(h, strings.NewReader(enc)))
		require.NoError(t, err)
		assert.Equal(t, enc, string(tdb), raw)
	}
}

func TestApplyTransferDecoding_QuotedPrintable(t *testing.T) {
	t.Parallel()

	h := header.Parse([]byte("Content-Transfer-Encoding: Quoted-Printable\n"), false)

	tdb, err := io.ReadAll(transfer.ApplyTransferDecoding(h, strings.NewReader("caf=C3=A9 soft=\nbreak")))
	require.NoError(t, err)
	assert.Equal(t, "café softbreak", string(tdb))
}
