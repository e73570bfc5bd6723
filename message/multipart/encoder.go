package multipart

import (
	"errors"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/header/param"
)

// ErrExpectedPart is returned by the multipart encoder when it is given a
// chunk of bytes rather than a part.
var ErrExpectedPart = errors.New("multipart body chunks must be parts")

// EncoderFactory resolves encoders that frame nested parts with boundaries.
type EncoderFactory struct{}

// NewEncoderFactory returns a factory that matches any multipart Content-type.
func NewEncoderFactory() *EncoderFactory {
	return &EncoderFactory{}
}

// TryMatch returns an encoder when the Content-type is multipart. If the
// Content-type has no boundary, one is generated with GenerateBoundary and
// added to the header.
func (f *EncoderFactory) TryMatch(h *header.Header, lbr header.Break) codec.Encoder {
	ct := h.First(header.ContentType)
	if ct == nil {
		return nil
	}

	pv := ct.Param()
	if pv.Type() != "multipart" {
		return nil
	}

	b := pv.Boundary()
	if b == "" {
		b = GenerateBoundary()
		ct.SplitParams()
		if ct.Params == nil {
			ct.Params = map[string]string{}
		}
		ct.Params[param.Boundary] = b
	}

	return &encoder{
		delim: []byte(lbr.String() + "--" + b + lbr.String()),
		term:  []byte(lbr.String() + "--" + b + "--"),
	}
}

type encoder struct {
	delim  []byte
	term   []byte
	closed bool
}

// Encode emits a boundary line followed by the part.
func (e *encoder) Encode(c codec.Chunk) ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	if c.Part == nil {
		return nil, ErrExpectedPart
	}

	return []codec.Piece{
		{Bytes: e.delim},
		{Part: c.Part},
	}, nil
}

// Close emits the closing boundary.
func (e *encoder) Close() ([]codec.Piece, error) {
	if e.closed {
		return nil, codec.ErrClosed
	}
	e.closed = true

	return []codec.Piece{{Bytes: e.term}}, nil
}
