package transfer

import (
	"encoding/base64"
	"io"

	"github.com/zostay/go-emlstream/message/header"
)

// Content-transfer-encoding values.
const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed between quoted-printable and binary data
	Base64          = "base64"           // bytes will be transformed between base64 and binary data
)

// Transcodings maps each Content-transfer-encoding to a function that returns
// a reader decoding it. Encodings that are left as-is are not listed.
var Transcodings = map[string]func(io.Reader) io.Reader{
	QuotedPrintable: NewQuotedPrintableDecoder,
	Base64:          NewBase64Decoder,
}

// ApplyTransferDecoding returns an io.Reader that will decode bytes read from
// r according to the Content-transfer-encoding of the given header. Bytes are
// left as-is for multipart bodies, for a missing encoding, and for encodings
// that need no transformation.
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	// Content-transfer-encoding does not apply to multipart bodies
	if ct, _ := h.GetContentType(); ct != nil && ct.Type() == "multipart" {
		return r
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	if dec, ok := Transcodings[cte]; ok {
		return dec(r)
	}

	return r
}

// NewBase64Decoder returns an io.Reader that decodes the base64 read from r.
// Line breaks in the input are ignored.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, r)
}
