package multipart

import (
	"bytes"

	"github.com/zostay/go-emlstream/internal/scanner"
	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
)

// DefaultMaxDepth is the default number of multipart levels that will be
// split.
const DefaultMaxDepth = 10

// Part is a single part of a multipart body as found by the decoder.
type Part struct {
	// ID identifies the part within the parse. IDs are allocated from the
	// codec.Context when the part header ends.
	ID int

	// Parent is the ID of the part whose body this part was found in. The
	// message itself is 0.
	Parent int

	// Boundary is the boundary that separated this part.
	Boundary string

	Header    *header.Header
	RawHeader []byte

	// Body is the part body with the line break before the next boundary
	// removed. It is filled even when a nested decoder also read it.
	Body []byte
}

// OnPart is called once for each part, after any nested decoder for the part
// has been closed.
type OnPart func(ctx *codec.Context, p *Part) error

type config struct {
	deep     bool
	maxDepth int
}

// Option configures a DecoderFactory.
type Option func(c *config)

// WithoutDeep turns off nested decoding. Part bodies are only collected into
// Part.Body, and the blank line that ends each part header is kept at the
// start of the body.
func WithoutDeep() Option {
	return func(c *config) { c.deep = false }
}

// WithMaxDepth sets how many multipart levels are split. Multipart bodies
// nested deeper than this are left unsplit. The default is DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithUnlimitedDepth removes the nesting limit.
func WithUnlimitedDepth() Option {
	return func(c *config) { c.maxDepth = -1 }
}

// DecoderFactory resolves decoders for multipart bodies.
type DecoderFactory struct {
	onPart OnPart
	cfg    config
}

// NewDecoderFactory returns a factory that matches any multipart Content-type
// with a boundary. The onPart callback may be nil.
func NewDecoderFactory(onPart OnPart, opts ...Option) *DecoderFactory {
	cfg := config{
		deep:     true,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DecoderFactory{onPart, cfg}
}

// TryMatch returns a decoder if the header names a multipart Content-type with
// a non-empty boundary and the depth limit has not been reached.
func (f *DecoderFactory) TryMatch(ctx *codec.Context, h *header.Header) codec.Decoder {
	ct, _ := h.GetContentType()
	if ct == nil || ct.Type() != "multipart" {
		return nil
	}

	b := ct.Boundary()
	if b == "" {
		return nil
	}

	if f.cfg.maxDepth >= 0 && ctx.Depth >= f.cfg.maxDepth {
		ctx.Log().Debug().
			Int("depth", ctx.Depth).
			Str("boundary", b).
			Msg("multipart depth limit reached")
		return nil
	}

	return &decoder{
		f:        f,
		boundary: b,
		delim:    []byte("--" + b),
		term:     []byte("--" + b + "--"),
		part:     ctx.Part,
		depth:    ctx.Depth,
	}
}

type decoder struct {
	f        *DecoderFactory
	boundary string
	delim    []byte
	term     []byte
	part     int
	depth    int

	pending []byte
	done    bool
	closed  bool

	// state of the part being read
	inPart     bool
	headerDone bool
	rawHeader  bytes.Buffer
	body       scanner.Joiner
	h          *header.Header
	id         int
	nested     codec.Decoder
	held       []byte
}

func (d *decoder) Decode(ctx *codec.Context, chunk []byte) error {
	if d.closed {
		return codec.ErrClosed
	}

	if d.done {
		return nil
	}

	d.pending = append(d.pending, chunk...)

	lr := scanner.NewLineReader(d.pending)
	for lr.Next() {
		if err := d.line(ctx, lr.Line(), lr.Break(), lr.Raw()); err != nil {
			return err
		}
		if d.done {
			d.pending = nil
			return nil
		}
	}

	n := copy(d.pending, d.pending[lr.Offset():])
	d.pending = d.pending[:n]
	return nil
}

func (d *decoder) Close(ctx *codec.Context) error {
	if d.closed {
		return codec.ErrClosed
	}
	d.closed = true

	if d.done {
		return nil
	}

	if len(d.pending) > 0 {
		last := d.pending
		d.pending = nil
		if err := d.line(ctx, last, nil, last); err != nil {
			return err
		}
		if d.done {
			return nil
		}
	}

	return d.finishPart(ctx)
}

// line handles one line of the multipart body. The raw slice is the line with
// its line break.
func (d *decoder) line(ctx *codec.Context, line, brk, raw []byte) error {
	if scanner.Equal(line, d.term) {
		err := d.finishPart(ctx)
		d.done = true
		return err
	}

	if scanner.Equal(line, d.delim) {
		err := d.finishPart(ctx)
		d.inPart = true
		return err
	}

	// preamble
	if !d.inPart {
		return nil
	}

	if !d.headerDone {
		if len(line) > 0 {
			d.rawHeader.Write(raw)
			return nil
		}

		d.startBody(ctx)
		if !d.f.cfg.deep {
			d.body.Add(line, brk)
		}
		return nil
	}

	d.body.Add(line, brk)
	if d.nested == nil {
		return nil
	}

	// the break before a boundary belongs to the boundary, so each break is
	// only passed on once the next line arrives
	data := line
	if d.held != nil {
		data = scanner.Concat(d.held, line)
	}
	d.held = brk

	if len(data) == 0 {
		return nil
	}

	restore := ctx.Enter(d.boundary, d.id, d.depth+1)
	defer restore()
	return d.nested.Decode(ctx, data)
}

// startBody is called on the blank line that ends a part header.
func (d *decoder) startBody(ctx *codec.Context) {
	d.headerDone = true
	d.h = header.Parse(d.rawHeader.Bytes(), false)
	d.id = ctx.NextID()

	if !d.f.cfg.deep {
		return
	}

	restore := ctx.Enter(d.boundary, d.id, d.depth+1)
	defer restore()

	d.nested = ctx.Decoders.Resolve(ctx, d.h)
	if d.nested != nil {
		ctx.Log().Debug().
			Int("part", d.id).
			Int("depth", d.depth+1).
			Msg("nested decoder resolved")
	}
}

// finishPart closes out the part being read, if any, and resets for the next.
func (d *decoder) finishPart(ctx *codec.Context) error {
	defer d.reset()

	if d.nested != nil {
		restore := ctx.Enter(d.boundary, d.id, d.depth+1)
		err := d.nested.Close(ctx)
		restore()
		d.nested = nil
		if err != nil {
			return err
		}
	}

	if !d.headerDone {
		return nil
	}

	p := &Part{
		ID:        d.id,
		Parent:    d.part,
		Boundary:  d.boundary,
		Header:    d.h,
		RawHeader: bytes.Clone(d.rawHeader.Bytes()),
		Body:      d.body.Bytes(),
	}

	ctx.Log().Debug().
		Int("part", p.ID).
		Int("parent", p.Parent).
		Int("length", len(p.Body)).
		Msg("part complete")

	if d.f.onPart == nil {
		return nil
	}

	restore := ctx.Enter(d.boundary, d.part, d.depth)
	defer restore()
	return d.f.onPart(ctx, p)
}

func (d *decoder) reset() {
	d.headerDone = false
	d.rawHeader.Reset()
	d.body.Reset()
	d.h = nil
	d.id = 0
	d.nested = nil
	d.held = nil
}
