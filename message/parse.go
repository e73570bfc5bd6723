package message

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/zostay/go-emlstream/internal/scanner"
	"github.com/zostay/go-emlstream/message/codec"
	"github.com/zostay/go-emlstream/message/header"
	"github.com/zostay/go-emlstream/message/multipart"
)

// Constants related to Parse() options.
const (
	// DefaultChunkSize the default size of chunks to read from the input while
	// parsing the message. Defaults to 16K, though this could change at any
	// time.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan before
	// giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize
)

// Errors that occur during parsing.
var (
	// ErrLargeHeader is returned by Parse when the header is longer than the
	// configured WithMaxHeaderLength option (or the default,
	// DefaultMaxHeaderLength).
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")
)

// ReadError is returned by Parse when reading from the source fails.
type ReadError struct {
	Err error
}

// Error returns the error message.
func (e *ReadError) Error() string {
	return "unable to read message: " + e.Err.Error()
}

// Unwrap returns the error returned by the source.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// HeaderHook is called with the parsed header of the message before a body
// decoder is resolved. Returning an error aborts the parse.
type HeaderHook func(ctx *codec.Context, h *header.Header) error

type parser struct {
	decoders     codec.Decoders
	bodyHook     codec.Decoder
	headerHook   HeaderHook
	parseParams  bool
	readBody     bool
	chunkSize    int
	maxHeaderLen int
	mpOpts       []multipart.Option
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	readBody:     true,
	chunkSize:    DefaultChunkSize,
	maxHeaderLen: DefaultMaxHeaderLength,
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithDecoders sets the chain of decoder factories consulted once the header
// has been read. The first factory to return a decoder takes over the body.
// The same chain is used for nested parts.
func WithDecoders(ds ...codec.DecoderFactory) ParseOption {
	return func(pr *parser) { pr.decoders = ds }
}

// WithBodyHook sets a decoder that receives the raw bytes of the body when no
// decoder from the chain takes it over. The body is still collected into
// Opaque.Body. The hook is closed once the body ends.
func WithBodyHook(d codec.Decoder) ParseOption {
	return func(pr *parser) { pr.bodyHook = d }
}

// WithHeaderHook sets a function to call as soon as the header has been
// parsed.
func WithHeaderHook(hook HeaderHook) ParseOption {
	return func(pr *parser) { pr.headerHook = hook }
}

// WithHeaderParams causes the parameters of every header field to be split
// into field.Field.Params while parsing. By default, parameters are only
// parsed on demand.
func WithHeaderParams() ParseOption {
	return func(pr *parser) { pr.parseParams = true }
}

// WithoutBody stops the parse as soon as the header has been read, unless a
// decoder or body hook wants the body. The source is closed if it implements
// io.Closer. Use this when only the header is of interest.
func WithoutBody() ParseOption {
	return func(pr *parser) { pr.readBody = false }
}

// WithChunkSize is a ParseOption that controls how many bytes to read at a time
// while parsing an email message. The default chunk size is DefaultChunkSize.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) {
		if chunkSize > 0 {
			pr.chunkSize = chunkSize
		}
	}
}

// WithMaxHeaderLength is a ParseOption that sets the maximum size the header
// is allowed to reach before parsing exits with an ErrLargeHeader error. This
// setting prevents bad input from resulting in an out of memory error. Setting
// this to a value less than or equal to 0 will result in there being no
// maximum length. The default value is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithMultipartOptions passes options on to the multipart decoder installed
// by ParseMultipart.
func WithMultipartOptions(opts ...multipart.Option) ParseOption {
	return func(pr *parser) { pr.mpOpts = append(pr.mpOpts, opts...) }
}

// engine holds the state of a single parse.
type engine struct {
	pr   *parser
	cctx *codec.Context
	log  *zerolog.Logger

	pending   []byte
	rawHeader bytes.Buffer
	inBody    bool
	h         *header.Header
	body      scanner.Joiner

	decoder   codec.Decoder
	hook      codec.Decoder
	forwarded int
}

// Parse reads a message from r and returns its header and body.
//
// The input is read a chunk at a time (see WithChunkSize). Lines are
// collected into the header until the first blank line. Blank lines before
// the first header line are skipped. If the input ends before a blank line,
// the entire message is taken to be header.
//
// Once the header is complete, the decoder chain set with WithDecoders is
// consulted. If a decoder takes over the body, the raw body bytes are passed
// to it as they arrive and Opaque.Body is left empty. Otherwise, the body is
// collected into Opaque.Body, without the final line break. When WithoutBody
// is set and nothing else wants the body, reading stops right after the
// header.
//
// The result does not depend on how the input is split into chunks. Every
// decoder or hook that was given body bytes is closed exactly once when the
// body ends. If the parse fails partway, they are not closed.
//
// A logger may be attached to ctx with zerolog's WithContext to get debug
// output. The ctx is checked for cancellation before each read.
func Parse(ctx context.Context, r io.Reader, opts ...ParseOption) (*Opaque, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	return pr.parse(ctx, r)
}

func (pr *parser) parse(ctx context.Context, r io.Reader) (*Opaque, error) {
	e := &engine{
		pr:   pr,
		cctx: codec.NewContext(pr.decoders),
		log:  zerolog.Ctx(ctx),
	}
	e.cctx.Logger = e.log

	buf := make([]byte, pr.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			e.cancel(r)
			return e.result(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			stop, ferr := e.feed(buf[:n])
			if ferr != nil {
				return e.result(), ferr
			}

			if stop {
				e.log.Debug().Msg("body not wanted, closing source")
				e.cancel(r)
				return e.result(), nil
			}
		}

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return e.result(), &ReadError{err}
		}
	}

	if err := e.finish(); err != nil {
		return e.result(), err
	}

	return e.result(), nil
}

// cancel closes the source, if it can be closed. Errors are only logged since
// the caller has no more use for the source.
func (e *engine) cancel(r io.Reader) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}

	if err := c.Close(); err != nil {
		e.log.Debug().Err(err).Msg("error closing canceled source")
	}
}

// feed handles one chunk read from the source. It returns true when the rest
// of the source is not needed.
func (e *engine) feed(chunk []byte) (bool, error) {
	e.pending = append(e.pending, chunk...)

	if e.inBody {
		return false, e.readBody()
	}

	return e.readHeader()
}

// readHeader consumes complete header lines from pending.
func (e *engine) readHeader() (bool, error) {
	lr := scanner.NewLineReader(e.pending)
	for lr.Next() {
		if len(lr.Line()) > 0 {
			e.rawHeader.Write(lr.Raw())
			if e.largeHeader(0) {
				return false, ErrLargeHeader
			}
			continue
		}

		if e.rawHeader.Len() == 0 {
			continue
		}

		e.slide(lr.Offset())
		if stop, err := e.startBody(); err != nil || stop {
			return stop, err
		}
		return false, e.readBody()
	}

	e.slide(lr.Offset())

	// A trailing CR may still turn out to be the blank line.
	partial := bytes.TrimSuffix(e.pending, []byte("\r"))
	if e.largeHeader(len(partial)) {
		return false, ErrLargeHeader
	}

	return false, nil
}

// largeHeader reports whether the raw header plus extra bytes of a partial
// line is over the limit.
func (e *engine) largeHeader(extra int) bool {
	limit := e.pr.maxHeaderLen
	return limit > 0 && e.rawHeader.Len()+extra > limit
}

// slide drops the first n bytes of pending.
func (e *engine) slide(n int) {
	if n == 0 {
		return
	}

	m := copy(e.pending, e.pending[n:])
	e.pending = e.pending[:m]
	e.forwarded -= n
	if e.forwarded < 0 {
		e.forwarded = 0
	}
}

// completeHeader parses the raw header and calls the header hook.
func (e *engine) completeHeader() error {
	e.h = header.Parse(e.rawHeader.Bytes(), e.pr.parseParams)

	e.log.Debug().
		Int("fields", e.h.Len()).
		Int("length", e.rawHeader.Len()).
		Msg("header complete")

	if e.pr.headerHook != nil {
		return e.pr.headerHook(e.cctx, e.h)
	}
	return nil
}

// startBody is called on the blank line that ends the header. It returns
// true if the body is not wanted.
func (e *engine) startBody() (bool, error) {
	e.inBody = true
	if err := e.completeHeader(); err != nil {
		return false, err
	}

	e.decoder = e.pr.decoders.Resolve(e.cctx, e.h)
	if e.decoder != nil {
		e.log.Debug().Msg("body decoder resolved")
		return false, nil
	}

	if e.pr.bodyHook != nil {
		e.hook = e.pr.bodyHook
		return false, nil
	}

	return !e.pr.readBody, nil
}

// readBody passes pending body bytes on to whatever wants them.
func (e *engine) readBody() error {
	if e.decoder != nil {
		if len(e.pending) == 0 {
			return nil
		}

		err := e.decoder.Decode(e.cctx, e.pending)
		e.pending = e.pending[:0]
		return err
	}

	if e.hook != nil && len(e.pending) > e.forwarded {
		if err := e.hook.Decode(e.cctx, e.pending[e.forwarded:]); err != nil {
			return err
		}
		e.forwarded = len(e.pending)
	}

	lr := scanner.NewLineReader(e.pending)
	for lr.Next() {
		e.body.Add(lr.Line(), lr.Break())
	}
	e.slide(lr.Offset())

	return nil
}

// finish handles the end of the input.
func (e *engine) finish() error {
	if !e.inBody {
		if len(e.pending) > 0 {
			e.rawHeader.Write(e.pending)
			e.pending = nil
		}
		if e.largeHeader(0) {
			return ErrLargeHeader
		}
		return e.completeHeader()
	}

	if e.decoder != nil {
		if err := e.readBody(); err != nil {
			return err
		}
		return e.decoder.Close(e.cctx)
	}

	if err := e.readBody(); err != nil {
		return err
	}

	if len(e.pending) > 0 {
		e.body.Add(e.pending, nil)
		e.pending = nil
	}

	if e.hook != nil {
		return e.hook.Close(e.cctx)
	}

	return nil
}

func (e *engine) result() *Opaque {
	h := e.h
	if h == nil {
		h = header.Parse(e.rawHeader.Bytes(), e.pr.parseParams)
	}

	return &Opaque{
		Header:    h,
		RawHeader: bytes.Clone(e.rawHeader.Bytes()),
		Body:      e.body.Bytes(),
	}
}
