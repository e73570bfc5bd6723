package transfer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
)

// DefaultBase64LineWidth is the column at which base64 output is wrapped
// unless WithLineWidth says otherwise.
const DefaultBase64LineWidth = 77

// base64Stream decodes base64 text that arrives in arbitrary pieces. Bytes
// outside the base64 alphabet are dropped, so line breaks and stray
// whitespace never matter. Up to three characters of an incomplete quantum
// are carried into the next call.
type base64Stream struct {
	carry []byte
	done  bool
}

func isBase64Char(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '/', c == '=':
		return true
	}
	return false
}

// decode returns the bytes decoded from every complete quantum seen so far.
func (s *base64Stream) decode(chunk []byte) ([]byte, error) {
	if s.done {
		return nil, nil
	}

	for _, c := range chunk {
		if isBase64Char(c) {
			s.carry = append(s.carry, c)
		}
	}

	n := len(s.carry) / 4 * 4
	if n == 0 {
		return nil, nil
	}

	quanta := s.carry[:n]

	// padding marks the end of the data, anything after it is ignored
	if ix := bytes.IndexByte(quanta, '='); ix >= 0 {
		end := (ix/4 + 1) * 4
		quanta = quanta[:end]
		s.done = true
	}

	out := make([]byte, base64.StdEncoding.DecodedLen(len(quanta)))
	dn, err := base64.StdEncoding.Decode(out, quanta)
	if err != nil {
		return nil, fmt.Errorf("unable to decode base64 body: %w", err)
	}

	s.carry = append(s.carry[:0], s.carry[n:]...)
	if s.done {
		s.carry = s.carry[:0]
	}

	return out[:dn], nil
}

// flush decodes a final quantum that arrived without its padding.
func (s *base64Stream) flush() ([]byte, error) {
	rest := s.carry
	s.carry = nil
	if s.done || len(rest) < 2 {
		return nil, nil
	}

	out, err := base64.RawStdEncoding.DecodeString(string(rest))
	if err != nil {
		return nil, fmt.Errorf("unable to decode base64 body: %w", err)
	}
	return out, nil
}

// isBase64 matches the header of a body written in base64.
func isBase64(h *header.Header) bool {
	cte, _ := h.GetTransferEncoding()
	return cte == Base64
}

// Handler receives the decoded body of a part once the whole body has been
// read. The part is the ID the part was given in the codec.Context.
type Handler func(ctx *codec.Context, part int, h *header.Header, data []byte) error

// Base64DecoderFactory resolves a decoder for any base64 body. The decoded
// bytes are buffered and handed to the handler once the body ends.
type Base64DecoderFactory struct {
	handler Handler
}

// NewBase64DecoderFactory returns a factory for buffered base64 decoders.
func NewBase64DecoderFactory(handler Handler) *Base64DecoderFactory {
	return &Base64DecoderFactory{handler}
}

// TryMatch returns a decoder when Content-transfer-encoding is base64.
func (f *Base64DecoderFactory) TryMatch(ctx *codec.Context, h *header.Header) codec.Decoder {
	if !isBase64(h) {
		return nil
	}
	return &base64Decoder{handler: f.handler, part: ctx.Part, h: h}
}

type base64Decoder struct {
	handler Handler
	part    int
	h       *header.Header
	s       base64Stream
	buf     bytes.Buffer
	closed  bool
}

func (d *base64Decoder) Decode(_ *codec.Context, chunk []byte) error {
	if d.closed {
		return codec.ErrClosed
	}

	out, err := d.s.decode(chunk)
	if err != nil {
		return err
	}

	d.buf.Write(out)
	return nil
}

func (d *base64Decoder) Close(ctx *codec.Context) error {
	if d.closed {
		return codec.ErrClosed
	}
	d.closed = true

	out, err := d.s.flush()
	if err != nil {
		return err
	}
	d.buf.Write(out)

	if d.handler == nil {
		return nil
	}
	return d.handler(ctx, d.part, d.h, d.buf.Bytes())
}

// Base64Opener returns the writer that receives the decoded body of a base64
// part as it arrives. It is called once per part, when the first decoded
// bytes are ready or when the body ends, whichever is first. The writer is
// closed when the body ends.
type Base64Opener func(ctx *codec.Context, part int, h *header.Header) (io.WriteCloser, error)

// Base64StreamDecoderFactory resolves a decoder for any base64 body. Decoded
// bytes are written out immediately instead of being buffered.
type Base64StreamDecoderFactory struct {
	open Base64Opener
}

// NewBase64StreamDecoderFactory returns a factory for streaming base64
// decoders.
func NewBase64StreamDecoderFactory(open Base64Opener) *Base64StreamDecoderFactory {
	return &Base64StreamDecoderFactory{open}
}

// TryMatch returns a decoder when Content-transfer-encoding is base64.
func (f *Base64StreamDecoderFactory) TryMatch(ctx *codec.Context, h *header.Header) codec.Decoder {
	if !isBase64(h) {
		return nil
	}
	return &base64StreamDecoder{open: f.open, part: ctx.Part, h: h}
}

type base64StreamDecoder struct {
	open   Base64Opener
	part   int
	h      *header.Header
	s      base64Stream
	w      io.WriteCloser
	closed bool
}

func (d *base64StreamDecoder) write(ctx *codec.Context, out []byte) error {
	if d.w == nil {
		w, err := d.open(ctx, d.part, d.h)
		if err != nil {
			return err
		}
		d.w = w
	}

	if len(out) == 0 {
		return nil
	}

	_, err := d.w.Write(out)
	return err
}

func (d *base64StreamDecoder) Decode(ctx *codec.Context, chunk []byte) error {
	if d.closed {
		return codec.ErrClosed
	}

	out, err := d.s.decode(chunk)
	if err != nil {
		return err
	}

	if len(out) == 0 {
		return nil
	}
	return d.write(ctx, out)
}

func (d *base64StreamDecoder) Close(ctx *codec.Context) error {
	if d.closed {
		return codec.ErrClosed
	}
	d.closed = true

	out, err := d.s.flush()
	if err != nil {
		return err
	}

	if err := d.write(ctx, out); err != nil {
		return err
	}
	return d.w.Close()
}

// lineWrapper inserts a line break every width bytes. The break is only
// written once more output follows, so the output never ends with a break.
// The column carries over between writes.
type lineWrapper struct {
	w     io.Writer
	width int
	col   int
	lbr   []byte
}

func (lw *lineWrapper) Write(b []byte) (int, error) {
	if lw.width <= 0 {
		return lw.w.Write(b)
	}

	n := 0
	for len(b) > 0 {
		if lw.col == lw.width {
			if _, err := lw.w.Write(lw.lbr); err != nil {
				return n, err
			}
			lw.col = 0
		}

		take := lw.width - lw.col
		if take > len(b) {
			take = len(b)
		}

		wn, err := lw.w.Write(b[:take])
		n += wn
		lw.col += wn
		if err != nil {
			return n, err
		}

		b = b[take:]
	}

	return n, nil
}

type base64EncoderConfig struct {
	attachments bool
	mediaTypes  map[string]struct{}
	width       int
}

// Base64EncoderOption configures a Base64EncoderFactory.
type Base64EncoderOption func(c *base64EncoderConfig)

// WithoutAttachments stops the factory from matching parts just because
// they carry an attachment Content-disposition.
func WithoutAttachments() Base64EncoderOption {
	return func(c *base64EncoderConfig) { c.attachments = false }
}

// WithMediaTypes makes the factory match parts with any of the given media
// types, such as "image/png".
func WithMediaTypes(mts ...string) Base64EncoderOption {
	return func(c *base64EncoderConfig) {
		for _, mt := range mts {
			c.mediaTypes[strings.ToLower(mt)] = struct{}{}
		}
	}
}

// WithLineWidth sets the column at which output lines are wrapped. A width of
// 0 or less disables wrapping.
func WithLineWidth(n int) Base64EncoderOption {
	return func(c *base64EncoderConfig) { c.width = n }
}

// Base64EncoderFactory resolves a base64 encoder for attachments and for
// any configured media types.
type Base64EncoderFactory struct {
	cfg base64EncoderConfig
}

// NewBase64EncoderFactory returns a factory for base64 encoders. By default it
// matches parts with an attachment Content-disposition and wraps at
// DefaultBase64LineWidth.
func NewBase64EncoderFactory(opts ...Base64EncoderOption) *Base64EncoderFactory {
	cfg := base64EncoderConfig{
		attachments: true,
		mediaTypes:  map[string]struct{}{},
		width:       DefaultBase64LineWidth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Base64EncoderFactory{cfg}
}

func (f *Base64EncoderFactory) matches(h *header.Header) bool {
	if f.cfg.attachments {
		if pv, _ := h.GetDisposition(); pv != nil && strings.EqualFold(pv.Disposition(), "attachment") {
			return true
		}
	}

	if mt, _ := h.GetMediaType(); mt != "" {
		_, ok := f.cfg.mediaTypes[strings.ToLower(mt)]
		return ok
	}

	return false
}

// TryMatch returns an encoder if the header names an attachment or one of the
// configured media types. The header is updated to declare the base64
// Content-transfer-encoding.
func (f *Base64EncoderFactory) TryMatch(h *header.Header, lbr header.Break) codec.Encoder {
	if !f.matches(h) {
		return nil
	}

	if cte, err := h.GetTransferEncoding(); err != nil {
		h.Add(header.ContentTransferEncoding, Base64)
	} else if cte != Base64 {
		h.Set(header.ContentTransferEncoding, Base64)
	}

	e := &base64Encoder{}
	e.enc = base64.NewEncoder(base64.StdEncoding, &lineWrapper{
		w:     &e.out,
		width: f.cfg.width,
		lbr:   lbr.Bytes(),
	})
	return e
}

type base64Encoder struct {
	out    bytes.Buffer
	enc    io.WriteCloser
	closed bool
}

func (e *base64Encoder) drain() []codec.Piece {
	if e.out.Len() == 0 {
		return nil
	}

	b := bytes.Clone(e.out.Bytes())
	e.out.Reset()
	return []codec.Piece{{Bytes: b}}
}

func (e *base64Encoder) Encode(c codec.Chunk) ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	if c.Part != nil {
		return nil, codec.ErrPartsWithoutEncoder
	}

	if _, err := e.enc.Write(c.Bytes); err != nil {
		return nil, err
	}
	return e.drain(), nil
}

func (e *base64Encoder) Close() ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	e.closed = true

	if err := e.enc.Close(); err != nil {
		return nil, err
	}
	return e.drain(), nil
}
