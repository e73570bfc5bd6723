package message

import (
	"io"
	"os"
	"path/filepath"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/header/param"
)

// Part describes a message or message part to serialize.
type Part = codec.Part

// Opaque is the result of Parse: a header and a body, very similar to the
// net/mail message implementation.
type Opaque struct {
	// Header holds the parsed header fields in order.
	Header *header.Header

	// RawHeader holds the header exactly as read, with line breaks, but
	// without the blank line that ended it.
	RawHeader []byte

	// Body holds the body with its final line break removed. It is empty
	// when a decoder took the body over.
	Body []byte
}

// WriteTo writes the header, a blank line, and the body to w using the line
// break detected in the header.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write(m.Body)
	return total + int64(n), err
}

// Part returns the message as a Part for use with Serialize.
func (m *Opaque) Part() *Part {
	return &Part{Header: m.Header, Content: m.Body}
}

// AttachmentFile is a constructor that will create a Part from the given
// filename and MIME type. The file is opened and becomes the Reader of the
// Part, its base name becomes the filename of an attachment
// Content-disposition. It will return an error if the file cannot be opened.
//
// The caller must close the file, available as the Reader of the Part, once
// the Part has been serialized.
func AttachmentFile(fn, mt string) (*Part, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}

	h := header.New()
	h.Set(header.ContentType, mt)
	h.SetParamValue(header.ContentDisposition,
		param.New("attachment", map[string]string{param.Filename: filepath.Base(fn)}))

	return &Part{Header: h, Reader: f}, nil
}
