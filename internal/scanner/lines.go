package scanner

import "bytes"

// Byte values used while splitting lines.
const (
	CR = '\x0d'
	LF = '\x0a'
)

var (
	lf   = []byte{LF}
	crlf = []byte{CR, LF}
)

// Concat returns a new slice holding every chunk in order. It allocates once,
// sized to the total length of the input.
func Concat(chunks ...[]byte) []byte {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}

	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// Equal reports whether a and b hold exactly the same bytes. Slices of
// different length are rejected before any byte is compared.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LineReader iterates the complete lines held in a buffer. Lines are split on
// LF only. A CR immediately before the LF is removed from the line and
// reported by HasCR() so the original line ending can be reproduced.
//
// A final line that is not terminated by LF is never returned. The caller is
// expected to keep the bytes after Offset() and try again once more input has
// arrived. This is what lets the parsers restart at any chunk boundary.
//
//	lr := scanner.NewLineReader(buf)
//	for lr.Next() {
//		handle(lr.Line(), lr.Break())
//	}
//	buf = buf[lr.Offset():]
type LineReader struct {
	buf    []byte
	start  int
	offset int
	cr     bool
}

// NewLineReader returns a LineReader positioned at the start of buf.
func NewLineReader(buf []byte) *LineReader {
	return &LineReader{buf: buf}
}

// Next advances to the next complete line. It returns false when no complete
// line remains in the buffer.
func (lr *LineReader) Next() bool {
	ix := bytes.IndexByte(lr.buf[lr.offset:], LF)
	if ix < 0 {
		return false
	}

	end := lr.offset + ix
	lr.start = lr.offset
	lr.cr = end > lr.start && lr.buf[end-1] == CR
	lr.offset = end + 1
	return true
}

// Line returns the current line without its line ending. The slice is
// borrowed from the underlying buffer.
func (lr *LineReader) Line() []byte {
	end := lr.offset - 1
	if lr.cr {
		end--
	}
	return lr.buf[lr.start:end]
}

// Raw returns the current line including its line ending.
func (lr *LineReader) Raw() []byte {
	return lr.buf[lr.start:lr.offset]
}

// HasCR returns true if the current line ended with CRLF rather than LF.
func (lr *LineReader) HasCR() bool {
	return lr.cr
}

// Break returns the line ending of the current line, either CRLF or LF.
func (lr *LineReader) Break() []byte {
	if lr.cr {
		return crlf
	}
	return lf
}

// Offset returns the position just past the last consumed line ending. Bytes
// from Offset() onward have not been returned by Next().
func (lr *LineReader) Offset() int {
	return lr.offset
}

// Joiner accumulates lines, placing each line's own line ending between it and
// the line that follows. The ending of the most recent line is held back, so
// the joined bytes never end in a line break. Since every line carries its
// original ending, the result is the same no matter how the input was
// chunked.
type Joiner struct {
	buf     bytes.Buffer
	brk     []byte
	started bool
}

// Add appends a line and remembers its line ending (which may be nil for a
// final unterminated line).
func (j *Joiner) Add(line, brk []byte) {
	if j.started {
		j.buf.Write(j.brk)
	}
	j.buf.Write(line)
	j.brk = brk
	j.started = true
}

// Started returns true once any line (even an empty one) has been added.
func (j *Joiner) Started() bool {
	return j.started
}

// Len returns the number of bytes joined so far.
func (j *Joiner) Len() int {
	return j.buf.Len()
}

// Bytes returns a copy of the joined bytes. The copy belongs to the caller.
func (j *Joiner) Bytes() []byte {
	return bytes.Clone(j.buf.Bytes())
}

// Reset empties the Joiner for reuse.
func (j *Joiner) Reset() {
	j.buf.Reset()
	j.brk = nil
	j.started = false
}
