package param

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter that may be present in the
	// Content-type header.
	Boundary = "boundary"

	// Filename is the name of the filename parameter that may be present in the
	// Content-disposition header.
	Filename = "filename"

	// Name is the name of the name parameter that older mail clients put on
	// the Content-type header of attachments.
	Name = "name"
)

var (
	// startOfParams finds the first name= that follows the start of the value,
	// a semicolon or comma, or whitespace.
	startOfParams = regexp.MustCompile(`(^|[;,]\s*|\s+)[\w\-]+=`)

	// needsQuotes matches any parameter value that cannot be written bare.
	needsQuotes = regexp.MustCompile(`\W`)
)

// Split separates a header field body into its primary value and its
// parameters. When no parameter region is found, the value is returned as-is
// (trimmed) and the map is nil.
//
// Quoted parameter values may contain semicolons and backslash escaped quotes.
// Unquoted parameter values end at the next semicolon. Broken parameter
// syntax never causes an error: whatever can be recovered is returned.
func Split(v string) (string, map[string]string) {
	loc := startOfParams.FindStringSubmatchIndex(v)
	if loc == nil {
		return strings.TrimSpace(v), nil
	}

	value := strings.TrimSpace(v[:loc[0]])
	rest := v[loc[3]:]
	ps := map[string]string{}
	for len(rest) > 0 {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			// trailing junk without a value, keep the name
			if n := strings.Trim(rest, " \t;,"); n != "" {
				ps[n] = ""
			}
			break
		}

		name := strings.Trim(rest[:eq], " \t;,")
		rest = rest[eq+1:]

		var pv string
		if strings.HasPrefix(rest, `"`) {
			pv, rest = unquote(rest[1:])
			if semi := strings.IndexByte(rest, ';'); semi >= 0 {
				rest = rest[semi+1:]
			} else {
				rest = ""
			}
		} else {
			end := strings.IndexByte(rest, ';')
			if end < 0 {
				end = len(rest)
			}
			pv = strings.TrimSpace(rest[:end])
			if end < len(rest) {
				rest = rest[end+1:]
			} else {
				rest = ""
			}
		}

		if name != "" {
			ps[name] = pv
		}
	}

	return value, ps
}

// unquote reads a quoted string body up to the closing quote, removing
// backslash escapes. It returns the unquoted text and whatever follows the
// closing quote. An unterminated quote consumes the rest of the input.
func unquote(s string) (string, string) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '"':
			return sb.String(), s[i+1:]
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), ""
}

// Format serializes parameters as name=value pairs joined with "; ". Names
// are sorted so the output is stable. Any value containing a non-word
// character is quoted and embedded quotes are escaped.
func Format(ps map[string]string) string {
	ks := make([]string, 0, len(ps))
	for k := range ps {
		ks = append(ks, k)
	}
	sort.Strings(ks)

	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = k + "=" + quote(ps[k])
	}
	return strings.Join(parts, "; ")
}

func quote(v string) string {
	if !needsQuotes.MatchString(v) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// Value represents a parsed parameterized header field, such as is used in the
// Content-type and Content-disposition headers. A Value object is immutable:
// You cannot change it in place. However, a Modify() function is provided to
// perform transformation of a Value into a new Value.
type Value struct {
	v  string
	ps map[string]string
}

// Parse splits a header field body into a Value. It never fails; see Split.
func Parse(v string) *Value {
	pv, ps := Split(v)
	if ps == nil {
		ps = map[string]string{}
	}
	return &Value{pv, ps}
}

// New creates a new parameterized header field with the given parameters, if
// any.
func New(v string, ps ...map[string]string) *Value {
	m := map[string]string{}
	for _, p := range ps {
		for k, pv := range p {
			m[k] = pv
		}
	}
	return &Value{v, m}
}

// Modifier is a modification to apply to a Value when calling the Modify()
// function.
type Modifier func(*Value)

// Change is a Modifier that replaces the primary value of the Value.
func Change(value string) Modifier {
	return func(pv *Value) {
		pv.v = value
	}
}

// Set is a Modifier that sets a parameter with the given name on the Value.
func Set(name, value string) Modifier {
	return func(pv *Value) {
		pv.ps[name] = value
	}
}

// Delete is a Modifier that removes the parameter with the given name from the
// Value.
func Delete(name string) Modifier {
	return func(pv *Value) {
		delete(pv.ps, name)
	}
}

// Modify clones a Value, applies the given modifications (if any) and returns
// the new Value.
//
//	v := param.Parse("multipart/mixed; boundary=abc123; charset=latin1")
//	nv := param.Modify(v, param.Change("multipart/alternative"), param.Set("charset", "utf-8"))
func Modify(pv *Value, changes ...Modifier) *Value {
	c := pv.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

// Value returns the primary value, the text before the parameters.
func (pv *Value) Value() string {
	return pv.v
}

// MediaType is a synonym for Value() and returns the Content-type value, e.g.,
// "text/html", "image/jpeg", "multipart/mixed", etc.
func (pv *Value) MediaType() string {
	return pv.v
}

// Disposition is a synonym for Value() and returns the Content-disposition,
// either "inline" or "attachment".
func (pv *Value) Disposition() string {
	return pv.v
}

// Type returns the part of the media type before the slash, lower-cased. If
// there is no slash, it returns an empty string.
func (pv *Value) Type() string {
	if ix := strings.IndexByte(pv.v, '/'); ix >= 0 {
		return strings.ToLower(pv.v[:ix])
	}
	return ""
}

// Subtype returns the part of the media type after the slash, lower-cased. If
// there is no slash, it returns an empty string.
func (pv *Value) Subtype() string {
	if ix := strings.IndexByte(pv.v, '/'); ix >= 0 {
		return strings.ToLower(pv.v[ix+1:])
	}
	return ""
}

// Parameters returns the parameters as a map. Do not modify the returned map.
func (pv *Value) Parameters() map[string]string {
	return pv.ps
}

// Parameter returns the value of the named parameter. Parameter names are
// matched case-insensitively.
func (pv *Value) Parameter(k string) string {
	if v, ok := pv.ps[k]; ok {
		return v
	}
	for pk, v := range pv.ps {
		if strings.EqualFold(pk, k) {
			return v
		}
	}
	return ""
}

// Boundary returns the value of the "boundary" parameter.
func (pv *Value) Boundary() string {
	return pv.Parameter(Boundary)
}

// Charset returns the value of the "charset" parameter.
func (pv *Value) Charset() string {
	return pv.Parameter(Charset)
}

// Filename returns the value of the "filename" parameter.
func (pv *Value) Filename() string {
	return pv.Parameter(Filename)
}

// String returns the primary value followed by the formatted parameters.
func (pv *Value) String() string {
	if len(pv.ps) == 0 {
		return pv.v
	}
	return pv.v + "; " + Format(pv.ps)
}

// Bytes returns String() as a slice of bytes.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}

// Clone returns a deep copy of the Value.
func (pv *Value) Clone() *Value {
	ps := make(map[string]string, len(pv.ps))
	for k, v := range pv.ps {
		ps[k] = v
	}
	return &Value{pv.v, ps}
}
