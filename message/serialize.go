package message

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
)

type serializer struct {
	encoders  codec.Encoders
	lbr       header.Break
	chunkSize int
}

func (s *serializer) clone() *serializer {
	c := *s
	return &c
}

var defaultSerializer = &serializer{
	encoders:  codec.Encoders{multipart.NewEncoderFactory()},
	lbr:       header.LF,
	chunkSize: DefaultChunkSize,
}

// SerializeOption refers to options that may be passed to Serialize and
// NewReader.
type SerializeOption func(s *serializer)

// WithEncoders sets the chain of encoder factories consulted for the body of
// each part. The default chain holds only the multipart encoder.
func WithEncoders(es ...codec.EncoderFactory) SerializeOption {
	return func(s *serializer) { s.encoders = es }
}

// WithCRLF writes CRLF line breaks instead of LF.
func WithCRLF() SerializeOption {
	return func(s *serializer) { s.lbr = header.CRLF }
}

// WithSerializeChunkSize sets how many bytes to read at a time from the Reader
// of a Part. The default is DefaultChunkSize.
func WithSerializeChunkSize(n int) SerializeOption {
	return func(s *serializer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Serialize writes the Part to w and returns the number of bytes written.
//
// The encoder for the part is resolved first, since it may add fields to the
// header, such as a generated boundary or a Content-transfer-encoding. The
// header of the Part is modified in place when that happens. Then the header
// is written followed by a blank line, and the body is passed through the
// encoder. Nested parts produced by the encoder are serialized the same way.
//
// The body is the first of Content, Reader, or Parts that is set. A body of
// Parts requires an encoder that accepts parts, such as the multipart encoder.
// No line break is written after the body.
func Serialize(ctx context.Context, w io.Writer, p *Part, opts ...SerializeOption) (int64, error) {
	s := defaultSerializer.clone()
	for _, opt := range opts {
		opt(s)
	}

	cw := &countWriter{w: w}
	err := s.write(ctx, zerolog.Ctx(ctx), cw, p, 0)
	return cw.n, err
}

func (s *serializer) write(
	ctx context.Context,
	log *zerolog.Logger,
	w io.Writer,
	p *Part,
	depth int,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := p.Header
	if h == nil {
		h = header.New()
	}

	enc := s.encoders.Resolve(h, s.lbr)
	log.Debug().
		Int("depth", depth).
		Int("fields", h.Len()).
		Msg("encoder resolved")

	// a part with no header at all is written as its body alone
	if p.Header != nil || h.Len() > 0 {
		if _, err := w.Write(h.Bytes(s.lbr)); err != nil {
			return err
		}
		if _, err := w.Write(s.lbr.Bytes()); err != nil {
			return err
		}
	}

	emit := func(ps []codec.Piece, err error) error {
		if err != nil {
			return err
		}
		return s.emit(ctx, log, w, ps, depth)
	}

	switch {
	case p.Content != nil:
		if err := emit(enc.Encode(codec.Chunk{Bytes: p.Content})); err != nil {
			return err
		}

	case p.Reader != nil:
		buf := make([]byte, s.chunkSize)
		for {
			n, rerr := p.Reader.Read(buf)
			if n > 0 {
				if err := emit(enc.Encode(codec.Chunk{Bytes: buf[:n]})); err != nil {
					return err
				}
			}

			if errors.Is(rerr, io.EOF) {
				break
			} else if rerr != nil {
				return &ReadError{rerr}
			}
		}

	case p.Parts != nil:
		for _, sub := range p.Parts {
			if err := emit(enc.Encode(codec.Chunk{Part: sub})); err != nil {
				return err
			}
		}
	}

	return emit(enc.Close())
}

func (s *serializer) emit(
	ctx context.Context,
	log *zerolog.Logger,
	w io.Writer,
	ps []codec.Piece,
	depth int,
) error {
	for _, piece := range ps {
		switch {
		case len(piece.Bytes) > 0:
			if _, err := w.Write(piece.Bytes); err != nil {
				return err
			}
		case piece.Reader != nil:
			if _, err := io.Copy(w, piece.Reader); err != nil {
				return err
			}
		case piece.Part != nil:
			if err := s.write(ctx, log, w, piece.Part, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewReader returns a reader that produces the serialized Part. Serialization
// runs in its own goroutine as the reader is read. Closing the reader before
// the end stops it. An error from Serialize is returned from Read.
func NewReader(ctx context.Context, p *Part, opts ...SerializeOption) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := Serialize(ctx, pw, p, opts...)
		_ = pw.CloseWithError(err)
	}()
	return pr
}
