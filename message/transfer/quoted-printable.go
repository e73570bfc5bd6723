package transfer

import (
	"bytes"
	"io"
	"mime/quotedprintable"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
)

// NewQuotedPrintableDecoder will read bytes from the given io.Reader and return
// them in the returned io.Reader after decoding them from quoted-printable
// format.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}

func isQuotedPrintable(h *header.Header) bool {
	cte, _ := h.GetTransferEncoding()
	return cte == QuotedPrintable
}

// QuotedPrintableDecoderFactory resolves a decoder for quoted-printable
// bodies. Soft line breaks may span chunks, so the body is buffered and
// decoded once it ends.
type QuotedPrintableDecoderFactory struct {
	handler Handler
}

// NewQuotedPrintableDecoderFactory returns a factory for quoted-printable
// decoders.
func NewQuotedPrintableDecoderFactory(handler Handler) *QuotedPrintableDecoderFactory {
	return &QuotedPrintableDecoderFactory{handler}
}

// TryMatch returns a decoder when Content-transfer-encoding is
// quoted-printable.
func (f *QuotedPrintableDecoderFactory) TryMatch(ctx *codec.Context, h *header.Header) codec.Decoder {
	if !isQuotedPrintable(h) {
		return nil
	}
	return &qpDecoder{handler: f.handler, part: ctx.Part, h: h}
}

type qpDecoder struct {
	handler Handler
	part    int
	h       *header.Header
	buf     bytes.Buffer
	closed  bool
}

func (d *qpDecoder) Decode(_ *codec.Context, chunk []byte) error {
	if d.closed {
		return codec.ErrClosed
	}
	d.buf.Write(chunk)
	return nil
}

func (d *qpDecoder) Close(ctx *codec.Context) error {
	if d.closed {
		return codec.ErrClosed
	}
	d.closed = true

	out, err := io.ReadAll(quotedprintable.NewReader(&d.buf))
	if err != nil {
		return err
	}

	if d.handler == nil {
		return nil
	}
	return d.handler(ctx, d.part, d.h, out)
}

// QuotedPrintableEncoderFactory resolves an encoder for parts whose header
// already declares the quoted-printable Content-transfer-encoding.
type QuotedPrintableEncoderFactory struct{}

// NewQuotedPrintableEncoderFactory returns a factory for quoted-printable
// encoders.
func NewQuotedPrintableEncoderFactory() *QuotedPrintableEncoderFactory {
	return &QuotedPrintableEncoderFactory{}
}

// TryMatch returns an encoder when Content-transfer-encoding is
// quoted-printable.
func (f *QuotedPrintableEncoderFactory) TryMatch(h *header.Header, lbr header.Break) codec.Encoder {
	if !isQuotedPrintable(h) {
		return nil
	}

	e := &qpEncoder{lbr: lbr.Bytes()}
	e.enc = quotedprintable.NewWriter(&e.out)
	return e
}

// qpEncoder wraps quotedprintable.Writer, which always writes CRLF. The
// output is converted to the requested line break. A trailing CR is held back
// until it is known whether an LF follows.
type qpEncoder struct {
	out    bytes.Buffer
	enc    *quotedprintable.Writer
	lbr    []byte
	held   bool
	closed bool
}

var crlf = []byte("\r\n")

func (e *qpEncoder) drain(final bool) []codec.Piece {
	b := e.out.Bytes()
	if e.held {
		b = append([]byte{'\r'}, b...)
		e.held = false
	}

	if !final && len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
		e.held = true
	}

	b = bytes.ReplaceAll(b, crlf, e.lbr)
	e.out.Reset()

	if len(b) == 0 {
		return nil
	}
	return []codec.Piece{{Bytes: b}}
}

func (e *qpEncoder) Encode(c codec.Chunk) ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	if c.Part != nil {
		return nil, codec.ErrPartsWithoutEncoder
	}

	if _, err := e.enc.Write(c.Bytes); err != nil {
		return nil, err
	}
	return e.drain(false), nil
}

func (e *qpEncoder) Close() ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	e.closed = true

	if err := e.enc.Close(); err != nil {
		return nil, err
	}
	return e.drain(true), nil
}
