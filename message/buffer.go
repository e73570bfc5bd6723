package message

import (
	"bytes"
	"errors"

	"github.com/zostay/go-emlstream/message/header"
)

const (
	// DefaultMultipartContentType is the Content-type to use with a multipart
	// message when no explicit Content-type header has been set.
	DefaultMultipartContentType = "multipart/mixed"
)

// BufferMode tells whether a Buffer holds bytes or parts.
type BufferMode int

const (
	// ModeUnset indicates that the Buffer has not yet been modified.
	ModeUnset BufferMode = iota

	// ModeSingle indicates that the Buffer has been used as an io.Writer.
	ModeSingle

	// ModeMultipart indicates that the Buffer has had the parts manipulated.
	ModeMultipart
)

var (
	// ErrPartsBuffer is returned by Write() if that method is called after
	// calling the Add() method.
	ErrPartsBuffer = errors.New("message buffer is in parts mode")

	// ErrOpaqueBuffer is returned by Add() if that method is called after
	// calling the Write() method.
	ErrOpaqueBuffer = errors.New("message buffer is in opaque mode")

	// ErrModeUnset is returned by Part() when it is called before anything
	// has been written to the buffer.
	ErrModeUnset = errors.New("no message has been built")
)

// Buffer provides tools for constructing a Part to serialize. It can operate in
// either of two modes, depending on how you want to construct your message.
//
// * Single mode. When you use the Buffer as an io.Writer by calling the Write()
// method, you have chosen to treat the body as a collection of bytes.
//
// * Multipart mode. When you call the Add() method, you have chosen to treat
// the body as a collection of sub-parts.
//
// You may not use a Buffer in both modes. Once one mode is chosen, using the
// other returns ErrPartsBuffer or ErrOpaqueBuffer.
type Buffer struct {
	// Header is the header of the Part being built.
	Header header.Header

	buf   *bytes.Buffer
	parts []*Part
}

// Mode returns a constant that indicates what mode the Buffer is in.
func (b *Buffer) Mode() BufferMode {
	switch {
	case b.buf != nil:
		return ModeSingle
	case b.parts != nil:
		return ModeMultipart
	}
	return ModeUnset
}

// Add will add one or more parts to the message.
func (b *Buffer) Add(parts ...*Part) error {
	if b.buf != nil {
		return ErrOpaqueBuffer
	}
	if b.parts == nil {
		b.parts = make([]*Part, 0, len(parts))
	}
	b.parts = append(b.parts, parts...)
	return nil
}

// Write implements io.Writer so you can write the body to this buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.parts != nil {
		return 0, ErrPartsBuffer
	}
	if b.buf == nil {
		b.buf = &bytes.Buffer{}
	}
	return b.buf.Write(p)
}

// Part returns the Part built in the Buffer.
//
// In multipart mode, if no Content-type has been set, it is set to
// DefaultMultipartContentType. The boundary is left for the multipart encoder
// to generate when the Part is serialized.
//
// After this method is called, the Buffer should be disposed of and no longer
// used.
func (b *Buffer) Part() (*Part, error) {
	h := &b.Header
	switch b.Mode() {
	case ModeSingle:
		return &Part{Header: h, Content: b.buf.Bytes()}, nil
	case ModeMultipart:
		if h.First(header.ContentType) == nil {
			h.Set(header.ContentType, DefaultMultipartContentType)
		}
		return &Part{Header: h, Parts: b.parts}, nil
	}
	return nil, ErrModeUnset
}

func newMultipartPart(mt string, parts []*Part) *Part {
	h := header.New()
	h.Set(header.ContentType, mt)
	return &Part{Header: h, Parts: parts}
}

// MultipartAlternative returns a Part with a Content-type header set to
// multipart/alternative and the given parts attached.
func MultipartAlternative(parts ...*Part) *Part {
	return newMultipartPart("multipart/alternative", parts)
}

// MultipartMixed returns a Part with a Content-type header set to
// multipart/mixed and the given parts attached.
func MultipartMixed(parts ...*Part) *Part {
	return newMultipartPart("multipart/mixed", parts)
}
