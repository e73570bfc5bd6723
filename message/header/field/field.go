package field

import (
	"io"
	"mime"
	"strings"

	"github.com/zostay/go-emlstream/message/header/param"
)

// CharsetReader is used by Text() to decode RFC 2047 encoded words written in
// a charset other than utf-8, iso-8859-1, or us-ascii. It is nil by default,
// which leaves those words undecoded. Importing the encoding package installs
// a reader covering the IANA charset registry.
var CharsetReader func(charset string, input io.Reader) (io.Reader, error)

// Field is a single header field. The Name is kept exactly as it was read so
// the header can be written back out unchanged. Lookups by name elsewhere in
// this library are case-insensitive.
//
// Params is nil unless the parameters have been split off of the Value, either
// eagerly during Parse or later through SplitParams.
type Field struct {
	Name   string
	Value  string
	Params map[string]string
}

// New returns a field with the given name and value and no parameters.
func New(name, value string) *Field {
	return &Field{Name: name, Value: value}
}

// Parse turns a single logical header line (continuations already folded in)
// into a Field. The line is split at the first colon. The name is everything
// before it, left untouched. The value is everything after it with the
// surrounding whitespace trimmed. A line with no colon becomes a field with
// an empty value.
//
// When parseParams is true and the value carries parameters, the parameters
// are removed from Value and stored in Params.
func Parse(line string, parseParams bool) *Field {
	name, value := line, ""
	if ix := strings.IndexByte(line, ':'); ix >= 0 {
		name, value = line[:ix], strings.TrimSpace(line[ix+1:])
	}

	f := &Field{Name: name, Value: value}
	if parseParams {
		f.SplitParams()
	}
	return f
}

// SplitParams moves any parameters found in Value into Params. It does nothing
// if Params is already set or no parameters are present. It returns the field
// to allow chaining.
func (f *Field) SplitParams() *Field {
	if f.Params != nil {
		return f
	}

	v, ps := param.Split(f.Value)
	if ps != nil {
		f.Value, f.Params = v, ps
	}
	return f
}

// Param returns the field body as a param.Value, parsing the parameters on
// demand without modifying the field.
func (f *Field) Param() *param.Value {
	if f.Params != nil {
		return param.New(f.Value, f.Params)
	}
	return param.Parse(f.Value)
}

// Matches returns true if the field has the given name, ignoring case.
func (f *Field) Matches(name string) bool {
	return strings.EqualFold(f.Name, name)
}

// Body returns the value as it will be written, with any Params appended.
func (f *Field) Body() string {
	if len(f.Params) == 0 {
		return f.Value
	}
	return f.Value + "; " + param.Format(f.Params)
}

// Text returns the value with RFC 2047 encoded words decoded. If decoding
// fails, the raw value is returned.
func (f *Field) Text() string {
	dec := &mime.WordDecoder{CharsetReader: CharsetReader}
	s, err := dec.DecodeHeader(f.Value)
	if err != nil {
		return f.Value
	}
	return s
}

// String returns the complete header field as a string.
func (f *Field) String() string {
	return f.Name + ": " + f.Body()
}

// Bytes returns the complete header field as a slice of bytes.
func (f *Field) Bytes() []byte {
	return []byte(f.String())
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := &Field{Name: f.Name, Value: f.Value}
	if f.Params != nil {
		c.Params = make(map[string]string, len(f.Params))
		for k, v := range f.Params {
			c.Params[k] = v
		}
	}
	return c
}
