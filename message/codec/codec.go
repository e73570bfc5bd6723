package codec

import (
	"errors"
	"io"

	"github.com/zostay/go-emlstream/message/header"
)

// Errors returned by decoders and encoders.
var (
	// ErrClosed is returned when Decode or Encode is called on a handle that
	// has already been closed.
	ErrClosed = errors.New("codec handle is already closed")

	// ErrPartsWithoutEncoder is returned when a body made of nested parts is
	// serialized, but no encoder accepted the header. Only an encoder that
	// knows how to frame parts, such as the multipart encoder, can write
	// them.
	ErrPartsWithoutEncoder = errors.New("nested parts require an encoder that accepts them")
)

// Decoder receives the raw bytes of a body.
//
// The chunk passed to Decode is only valid for the duration of the call. A
// Decoder that needs to keep it must copy it.
type Decoder interface {
	Decode(ctx *Context, chunk []byte) error
	Close(ctx *Context) error
}

// DecoderFactory decides whether it can decode the body that follows the
// given header. It returns nil when it does not apply.
type DecoderFactory interface {
	TryMatch(ctx *Context, h *header.Header) Decoder
}

// DecoderFactoryFunc adapts a function to the DecoderFactory interface.
type DecoderFactoryFunc func(ctx *Context, h *header.Header) Decoder

// TryMatch calls f.
func (f DecoderFactoryFunc) TryMatch(ctx *Context, h *header.Header) Decoder {
	return f(ctx, h)
}

// Decoders is an ordered chain of factories.
type Decoders []DecoderFactory

// Resolve returns the Decoder produced by the first factory to match or nil
// if none do.
func (ds Decoders) Resolve(ctx *Context, h *header.Header) Decoder {
	for _, f := range ds {
		if d := f.TryMatch(ctx, h); d != nil {
			return d
		}
	}
	return nil
}

// DecoderFuncs builds a Decoder from a pair of functions. Either may be nil.
type DecoderFuncs struct {
	DecodeFunc func(ctx *Context, chunk []byte) error
	CloseFunc  func(ctx *Context) error
}

// Decode calls DecodeFunc, if set.
func (d DecoderFuncs) Decode(ctx *Context, chunk []byte) error {
	if d.DecodeFunc == nil {
		return nil
	}
	return d.DecodeFunc(ctx, chunk)
}

// Close calls CloseFunc, if set.
func (d DecoderFuncs) Close(ctx *Context) error {
	if d.CloseFunc == nil {
		return nil
	}
	return d.CloseFunc(ctx)
}

// Part describes a message or message part to serialize. The body is the
// first of Content, Reader, or Parts that is set.
type Part struct {
	Header  *header.Header
	Content []byte
	Reader  io.Reader
	Parts   []*Part
}

// Chunk is a unit of body handed to an Encoder. Exactly one of Bytes or Part
// is set.
type Chunk struct {
	Bytes []byte
	Part  *Part
}

// Piece is a unit of output produced by an Encoder. At most one field is set:
// literal Bytes, a Reader to copy in full, or a nested Part to serialize. An
// empty Piece writes nothing.
type Piece struct {
	Bytes  []byte
	Reader io.Reader
	Part   *Part
}

// Empty returns true when the piece carries nothing to write.
func (p Piece) Empty() bool {
	return len(p.Bytes) == 0 && p.Reader == nil && p.Part == nil
}

// Encoder transforms body chunks into output pieces.
type Encoder interface {
	Encode(c Chunk) ([]Piece, error)
	Close() ([]Piece, error)
}

// EncoderFactory decides whether it should encode the body of a part with the
// given header. It may modify the header, which has not been written yet. The
// line break is the one the output is written with. It returns nil when it
// does not apply.
type EncoderFactory interface {
	TryMatch(h *header.Header, lbr header.Break) Encoder
}

// EncoderFactoryFunc adapts a function to the EncoderFactory interface.
type EncoderFactoryFunc func(h *header.Header, lbr header.Break) Encoder

// TryMatch calls f.
func (f EncoderFactoryFunc) TryMatch(h *header.Header, lbr header.Break) Encoder {
	return f(h, lbr)
}

// Encoders is an ordered chain of factories.
type Encoders []EncoderFactory

// Resolve returns the Encoder produced by the first factory to match. When
// none match, an identity encoder is returned.
func (es Encoders) Resolve(h *header.Header, lbr header.Break) Encoder {
	for _, f := range es {
		if e := f.TryMatch(h, lbr); e != nil {
			return e
		}
	}
	return Identity()
}

type identity struct {
	closed bool
}

// Identity returns an encoder that writes byte chunks unchanged. It fails
// with ErrPartsWithoutEncoder when handed a nested part.
func Identity() Encoder {
	return &identity{}
}

// Encode returns the chunk bytes as a single piece.
func (e *identity) Encode(c Chunk) ([]Piece, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if c.Part != nil {
		return nil, ErrPartsWithoutEncoder
	}
	return []Piece{{Bytes: c.Bytes}}, nil
}

// Close emits nothing.
func (e *identity) Close() ([]Piece, error) {
	if e.closed {
		return nil, ErrClosed
	}
	e.closed = true
	return nil, nil
}
