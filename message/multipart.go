package message

import (
	"bytes"
	"context"
	"io"

	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
	"github.com/zostay/go-emlstream/message/transfer"
)

// Multipart is a node of the part tree built by ParseMultipart. The root
// node is the message itself.
type Multipart struct {
	// ID identifies the part within the parse. The root is 0.
	ID int

	// Boundary is the boundary that separated this part from its siblings.
	// It is empty for the root.
	Boundary string

	Header    *header.Header
	RawHeader []byte

	// Body holds the raw body. For the root, it is empty when the body was
	// split into parts or decoded.
	Body []byte

	// ContentType is the media type of the part, if it has one.
	ContentType string

	// Attachment is the filename of the part, if it has one.
	Attachment string

	// Content holds the decoded bytes of a base64 body.
	Content []byte

	// Parts holds the nested parts in the order they appear.
	Parts []*Multipart
}

// IsMultipart returns true if the part has nested parts.
func (mm *Multipart) IsMultipart() bool {
	return len(mm.Parts) > 0
}

// GetHeader returns the header of the part.
func (mm *Multipart) GetHeader() *header.Header {
	return mm.Header
}

// GetParts returns the nested parts.
func (mm *Multipart) GetParts() []*Multipart {
	return mm.Parts
}

// GetReader returns a reader over the decoded content when present and over
// the body with any Content-transfer-encoding decoded otherwise.
func (mm *Multipart) GetReader() io.Reader {
	if mm.Content != nil {
		return bytes.NewReader(mm.Content)
	}
	return transfer.ApplyTransferDecoding(mm.Header, bytes.NewReader(mm.Body))
}

// Part converts the tree back into a Part for Serialize. Leaf parts keep
// their raw body, still in its Content-transfer-encoding, so the result
// should be serialized with the multipart encoder only.
func (mm *Multipart) Part() *Part {
	p := &Part{Header: mm.Header}
	if len(mm.Parts) == 0 {
		p.Content = mm.Body
		return p
	}

	p.Parts = make([]*Part, len(mm.Parts))
	for i, sub := range mm.Parts {
		p.Parts[i] = sub.Part()
	}
	return p
}

func newNode(id int, boundary string, h *header.Header, rawHeader, body []byte) *Multipart {
	n := &Multipart{
		ID:        id,
		Boundary:  boundary,
		Header:    h,
		RawHeader: rawHeader,
		Body:      body,
	}

	if mt, err := h.GetMediaType(); mt != "" && err == nil {
		n.ContentType = mt
	}

	if fn, err := h.GetFilename(); err == nil {
		n.Attachment = fn
	}

	return n
}

// tree collects the parts flushed during a parse and links them afterward.
type tree struct {
	nodes    map[int]*Multipart
	children map[int][]int
	decoded  map[int][]byte
}

func (t *tree) onPart(_ *codec.Context, p *multipart.Part) error {
	t.nodes[p.ID] = newNode(p.ID, p.Boundary, p.Header, p.RawHeader, p.Body)
	t.children[p.Parent] = append(t.children[p.Parent], p.ID)
	return nil
}

func (t *tree) onDecoded(_ *codec.Context, part int, _ *header.Header, data []byte) error {
	t.decoded[part] = bytes.Clone(data)
	return nil
}

// link attaches children and decoded content to n and its descendants.
func (t *tree) link(n *Multipart) {
	if data, ok := t.decoded[n.ID]; ok {
		n.Content = data
	}

	for _, id := range t.children[n.ID] {
		child := t.nodes[id]
		t.link(child)
		n.Parts = append(n.Parts, child)
	}
}

// ParseMultipart parses a message into a tree of parts. It works like Parse
// with a multipart decoder and a base64 decoder placed in front of any
// decoders given with WithDecoders. Use WithMultipartOptions to configure the
// multipart decoder.
//
// The tree is linked after the input has been read. Each part is attached to
// the part whose body it was found in and each decoded base64 body is attached
// to the part it belongs to, by the part IDs given out during the parse.
func ParseMultipart(ctx context.Context, r io.Reader, opts ...ParseOption) (*Multipart, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	t := &tree{
		nodes:    map[int]*Multipart{},
		children: map[int][]int{},
		decoded:  map[int][]byte{},
	}

	ds := codec.Decoders{
		multipart.NewDecoderFactory(t.onPart, pr.mpOpts...),
		transfer.NewBase64DecoderFactory(t.onDecoded),
	}
	pr.decoders = append(ds, pr.decoders...)

	m, err := pr.parse(ctx, r)
	if m == nil {
		return nil, err
	}

	root := newNode(0, "", m.Header, m.RawHeader, m.Body)
	t.link(root)

	return root, err
}
