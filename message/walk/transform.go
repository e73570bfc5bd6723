package walk

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zostay/go-emlstream/message"
)

var (
	// ErrSkip may be returned by a Transformer callback to signal that the part
	// should be skipped entirely.
	ErrSkip = errors.New("skip part")

	// ErrCopy may be returned by a Transformer callback to signal that the part
	// should be copied as is.
	ErrCopy = errors.New("copy part")

	// ErrNilNil is returned by AndTransform when a Transformer callback returns
	// no parts and provides no error.
	ErrNilNil = errors.New("no parts and no error")
)

// BadTransformationError is used when transformation needs to fail with an
// error.
type BadTransformationError struct {
	Cause   error
	Message string
}

// Error returns the error message describing the bad transformation.
func (b *BadTransformationError) Error() string {
	return fmt.Sprintf("%s: %v", b.Message, b.Cause)
}

// Unwrap returns the error that caused the bad transformation.
func (b *BadTransformationError) Unwrap() error {
	return b.Cause
}

// Transformer is a callback that can be passed to the AndTransform() function
// to transform a message and its sub-parts into a new message.
//
// The Transformer is given the part to transform and the ancestry of the part.
// If len(parents) is zero, then this is the top-level part. The parents are the
// original parents of the given original part, not the transformed parents.
//
// The Transformer returns the parts to put in place of the given part, or one
// of ErrSkip and ErrCopy. Any other error causes AndTransform() to fail with
// that error.
type Transformer func(part *message.Multipart, parents []*message.Multipart) ([]*message.Part, error)

// AndTransform performs a transformation on the given message, producing parts
// that can be passed to message.Serialize. The transformation is performed in
// depth-first order, parents before children.
//
// When the Transformer returns ErrCopy for a part with nested parts, the part
// is copied with CopyPart and each of the nested parts is transformed in turn.
// If every nested part is then skipped, the part is skipped too, since empty
// multipart parts are never created. When the Transformer returns parts for a
// part with nested parts, the nested parts are not transformed.
//
// When several parts are returned for a nested part, they all replace it in
// the transformed parent. When several parts are returned for the top-level
// part, they are all returned from this function.
func AndTransform(
	transformer Transformer,
	msg *message.Multipart,
) ([]*message.Part, error) {
	parents := make([]*message.Multipart, 0, 10)
	parts, err := andTransform(transformer, msg, parents)
	if errors.Is(err, ErrSkip) {
		return nil, nil
	}
	return parts, err
}

func andTransform(
	transformer Transformer,
	part *message.Multipart,
	parents []*message.Multipart,
) ([]*message.Part, error) {
	tparts, err := handleTransformationErrors(transformer(part, parents))
	switch {
	case errors.Is(err, ErrCopy):
		// handled below
	case err != nil:
		return nil, err
	default:
		return tparts, nil
	}

	cp := CopyPart(part)
	if !part.IsMultipart() {
		return []*message.Part{cp}, nil
	}

	parents = append(parents, part)
	for _, subPart := range part.GetParts() {
		subParts, err := andTransform(transformer, subPart, parents)
		if errors.Is(err, ErrSkip) {
			continue
		} else if err != nil {
			return nil, err
		}
		cp.Parts = append(cp.Parts, subParts...)
	}

	if len(cp.Parts) == 0 {
		return nil, ErrSkip
	}

	return []*message.Part{cp}, nil
}

func handleTransformationErrors(
	newParts []*message.Part,
	err error,
) ([]*message.Part, error) {
	switch {
	case newParts == nil && err == nil:
		return nil, &BadTransformationError{ErrNilNil, "Transformer error"}
	case newParts != nil && err != nil:
		return nil, &BadTransformationError{err, "Transformer incorrectly returned error and parts"}
	}
	return newParts, err
}

// CopyPart provides a handy utility for copying an original part through to
// make a transformed part with no changes. This is intended for use with
// defining a Transformer, so this doesn't exactly copy a part.
//
// A part without nested parts is copied by cloning its header and its raw
// body, which is left in its Content-transfer-encoding.
//
// A part with nested parts results in a new part with the header cloned from
// the original. But it will have no parts.
func CopyPart(orig *message.Multipart) *message.Part {
	p := &message.Part{Header: orig.GetHeader().Clone()}
	if !orig.IsMultipart() {
		p.Content = bytes.Clone(orig.Body)
	}
	return p
}
