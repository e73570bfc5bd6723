package header

import "bytes"

// Break is a line ending as it appears in a message.
type Break string

// The line endings a header may be written with. Parsing only ever detects
// CRLF or LF, the others exist for writing.
const (
	Meh  Break = ""         // not known yet, written as LF
	CRLF Break = "\x0d\x0a" // \r\n - Network linebreak
	LF   Break = "\x0a"     // \n - Unix/Linux/BSD linebreak
	CR   Break = "\x0d"     // \r - Commodores/old Macs linebreak
	LFCR Break = "\x0a\x0d" // \n\r - for weirdos
)

// DetectBreak returns the line break used by the first line of m. When m holds
// no line feed at all, it returns Meh.
func DetectBreak(m []byte) Break {
	ix := bytes.IndexByte(m, '\n')
	switch {
	case ix < 0:
		return Meh
	case ix > 0 && m[ix-1] == '\r':
		return CRLF
	default:
		return LF
	}
}

// Or returns b, or def when b is Meh.
func (b Break) Or(def Break) Break {
	if b == Meh {
		return def
	}
	return b
}

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}
