package header

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-emlstream/message/header/field"
	"github.com/zostay/go-emlstream/message/header/param"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")
)

// These are standard headers defined in RFC 5322 and RFC 2045.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDisposition      = "Content-disposition"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	MessageID               = "Message-id"
	ReplyTo                 = "Reply-to"
	Subject                 = "Subject"
	To                      = "To"
)

// UnixDateWithEarlyYear is a date format seen in the wild that the usual
// parsers have trouble with.
const UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"

// Header is an ordered list of header fields. Fields are kept in the order
// they were read and duplicate names are kept as separate fields. Name lookup
// is case-insensitive.
//
// The zero value is an empty header that uses LF line breaks.
type Header struct {
	lbr    Break
	fields []*field.Field
}

// New returns a header holding the given fields.
func New(fields ...*field.Field) *Header {
	return &Header{lbr: LF, fields: fields}
}

// FromRecord builds a header from a name to value mapping. Entries with an
// empty name or an empty value are skipped. As a map has no order, fields are
// added sorted by name.
func FromRecord(rec map[string]string) *Header {
	names := make([]string, 0, len(rec))
	for n, v := range rec {
		if n != "" && v != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	h := &Header{lbr: LF}
	for _, n := range names {
		h.Add(n, rec[n])
	}
	return h
}

// Break returns the line break used when writing the header. It is detected
// from the input when the header was parsed.
func (h *Header) Break() Break {
	return h.lbr.Or(LF)
}

// SetBreak changes the line break used when writing the header.
func (h *Header) SetBreak(lbr Break) {
	h.lbr = lbr
}

// Len returns the number of fields in the header.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns the fields in order. The slice is shared with the header.
func (h *Header) Fields() []*field.Field {
	return h.fields
}

// GetField returns the field at index n.
func (h *Header) GetField(n int) *field.Field {
	return h.fields[n]
}

// First returns the first field with the given name or nil.
func (h *Header) First(name string) *field.Field {
	for _, f := range h.fields {
		if f.Matches(name) {
			return f
		}
	}
	return nil
}

// GetIndexesNamed returns the indexes of every field with the given name.
func (h *Header) GetIndexesNamed(name string) []int {
	var ixs []int
	for i, f := range h.fields {
		if f.Matches(name) {
			ixs = append(ixs, i)
		}
	}
	return ixs
}

// Get retrieves the value of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return "", ErrNoSuchField
	}

	v := h.fields[ixs[0]].Value
	if len(ixs) > 1 {
		return v, ErrManyFields
	}

	return v, nil
}

// GetAll returns the values of every field with the given name. It returns
// nil with ErrNoSuchField if there are none.
func (h *Header) GetAll(name string) ([]string, error) {
	var vs []string
	for _, f := range h.fields {
		if f.Matches(name) {
			vs = append(vs, f.Value)
		}
	}
	if vs == nil {
		return nil, ErrNoSuchField
	}
	return vs, nil
}

// Add appends a new field to the end of the header.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, field.New(name, value))
}

// AddField appends the given field to the end of the header.
func (h *Header) AddField(f *field.Field) {
	h.fields = append(h.fields, f)
}

// Set replaces the first field with the given name and removes any others. If
// the field does not exist, it is appended to the end of the header.
func (h *Header) Set(name, value string) {
	h.setField(name, field.New(name, value))
}

func (h *Header) setField(name string, nf *field.Field) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		h.fields = append(h.fields, nf)
		return
	}

	nf.Name = h.fields[ixs[0]].Name
	h.fields[ixs[0]] = nf
	for i := len(ixs) - 1; i > 0; i-- {
		ix := ixs[i]
		h.fields = append(h.fields[:ix], h.fields[ix+1:]...)
	}
}

// GetParamValue returns the named field parsed as a param.Value.
//
// It returns ErrNoSuchField if the field is missing. If there are several,
// the first is used and ErrManyFields is returned alongside it.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return nil, ErrNoSuchField
	}

	pv := h.fields[ixs[0]].Param()
	if len(ixs) > 1 {
		return pv, ErrManyFields
	}
	return pv, nil
}

// SetParamValue replaces the named field with one holding the given
// param.Value. The parameters are stored in the field's Params.
func (h *Header) SetParamValue(name string, pv *param.Value) {
	f := field.New(name, pv.Value())
	if ps := pv.Parameters(); len(ps) > 0 {
		f.Params = make(map[string]string, len(ps))
		for k, v := range ps {
			f.Params[k] = v
		}
	}
	h.setField(name, f)
}

// GetContentType returns the Content-type field as a param.Value.
func (h *Header) GetContentType() (*param.Value, error) {
	return h.GetParamValue(ContentType)
}

// GetMediaType returns the media type of the Content-type field, such as
// "text/plain", without any parameters.
func (h *Header) GetMediaType() (string, error) {
	pv, err := h.GetContentType()
	if pv == nil {
		return "", err
	}
	return pv.MediaType(), nil
}

// GetBoundary returns the boundary parameter of the Content-type field. It
// returns ErrNoSuchFieldParameter if the field is present but has no boundary.
func (h *Header) GetBoundary() (string, error) {
	pv, err := h.GetContentType()
	if pv == nil {
		return "", err
	}
	if b := pv.Boundary(); b != "" {
		return b, nil
	}
	return "", ErrNoSuchFieldParameter
}

// GetTransferEncoding returns the Content-transfer-encoding, lower-cased and
// trimmed.
func (h *Header) GetTransferEncoding() (string, error) {
	f := h.First(ContentTransferEncoding)
	if f == nil {
		return "", ErrNoSuchField
	}
	return strings.ToLower(strings.TrimSpace(f.Value)), nil
}

// GetDisposition returns the Content-disposition field as a param.Value.
func (h *Header) GetDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// GetFilename returns the attachment filename. The filename parameter of the
// Content-disposition field is preferred, with the name parameter of the
// Content-type field as a fallback.
func (h *Header) GetFilename() (string, error) {
	if pv, _ := h.GetDisposition(); pv != nil && pv.Filename() != "" {
		return pv.Filename(), nil
	}
	if pv, _ := h.GetContentType(); pv != nil && pv.Parameter(param.Name) != "" {
		return pv.Parameter(param.Name), nil
	}
	return "", ErrNoSuchFieldParameter
}

// ParseTime parses a date header body. The RFC 5322 format is tried first,
// then many other formats seen in the wild.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime parses the named field as a date.
func (h *Header) GetTime(name string) (time.Time, error) {
	f := h.First(name)
	if f == nil {
		return time.Time{}, ErrNoSuchField
	}
	return ParseTime(f.Value)
}

// GetDate returns the Date field as a time.Time.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// ParseAddressList parses an address field body. A strict parse is attempted
// first. When that fails, a very lenient parse is used instead, so some kind
// of result is returned for any input.
func ParseAddressList(body string) addr.AddressList {
	al, err := addr.ParseEmailAddressList(body)
	if err != nil {
		al = parseEmailAddressList(body)
	}
	return al
}

// GetAddressList returns the named field parsed as an address list.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	f := h.First(name)
	if f == nil {
		return nil, ErrNoSuchField
	}
	return ParseAddressList(f.Text()), nil
}

// parseEmailAddressList is the fallback address parser. It splits on commas,
// pulls out comments, treats the last word as the address and everything
// before it as the display name. Groups are not recognized.
func parseEmailAddressList(v string) addr.AddressList {
	extractComments := func(s string) (string, string) {
		var clean, comment strings.Builder
		nestLevel := 0
		for _, c := range s {
			switch {
			case c == '(':
				nestLevel++
				if nestLevel > 1 {
					comment.WriteRune(c)
				}
			case c == ')':
				nestLevel--
				if nestLevel < 0 {
					nestLevel = 0
					clean.WriteRune(c)
				} else if nestLevel > 0 {
					comment.WriteRune(c)
				}
			case nestLevel > 0:
				comment.WriteRune(c)
			default:
				clean.WriteRune(c)
			}
		}

		return clean.String(), comment.String()
	}

	mbs := strings.Split(v, ",")
	as := make(addr.AddressList, 0, len(mbs))
	for _, orig := range mbs {
		mb, com := extractComments(orig)

		parts := strings.Fields(mb)
		if len(parts) == 0 {
			continue
		}

		dn := strings.Join(parts[:len(parts)-1], " ")
		email := strings.Trim(parts[len(parts)-1], "<>")
		com = strings.TrimSpace(com)

		local, domain := email, ""
		if i := strings.LastIndex(email, "@"); i > -1 {
			local, domain = email[:i], email[i+1:]
		}
		addrSpec := addr.NewAddrSpecParsed(local, domain, email)

		mailbox, err := addr.NewMailboxParsed(dn, addrSpec, com, orig)
		if err != nil {
			mailbox, _ = addr.NewMailboxParsed(dn, addrSpec, "", orig)
		}

		as = append(as, mailbox)
	}

	return as
}

// Bytes serializes the header. Each field with a non-empty name is written as
// "Name: value[; params]" followed by the given line break. The blank line
// separating the header from a body is not included.
func (h *Header) Bytes(lbr Break) []byte {
	var sb strings.Builder
	for _, f := range h.fields {
		if f.Name == "" {
			continue
		}
		sb.WriteString(f.String())
		sb.WriteString(string(lbr))
	}
	return []byte(sb.String())
}

// WriteTo writes the header fields followed by the blank line that separates
// the header from the body, using the header's own line break.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	lbr := h.Break()
	n, err := w.Write(h.Bytes(lbr))
	if err != nil {
		return int64(n), err
	}

	bn, err := w.Write(lbr.Bytes())
	return int64(n + bn), err
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	fs := make([]*field.Field, len(h.fields))
	for i, f := range h.fields {
		fs[i] = f.Clone()
	}
	return &Header{lbr: h.lbr, fields: fs}
}
