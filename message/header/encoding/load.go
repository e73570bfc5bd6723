// Package encoding installs a charset reader for RFC 2047 encoded words that
// covers the IANA charset registry. It loads every encoding provided by:
//
// * golang.org/x/text/encoding/ianaindex
//
// This will make the size of your compiled binaries considerably larger. Import
// it for side effects when you need to read headers written in rarer
// character sets:
//
//	import _ "github.com/zostay/go-emlstream/message/header/encoding"
package encoding

import (
	"fmt"
	"io"
	"strings"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/zostay/go-emlstream/message/header/field"
)

func init() {
	field.CharsetReader = CharsetReader
}

// CharsetReader wraps input in a decoder that turns the named charset into
// utf-8. It can be used as mime.WordDecoder.CharsetReader.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", "us-ascii", "utf-8":
		return input, nil
	}

	e, _ := ianaindex.MIME.Encoding(charset)
	if e == nil {
		e, _ = ianaindex.IANA.Encoding(charset)
	}
	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	return e.NewDecoder().Reader(input), nil
}

// DecodeBytes converts b from the named charset into a utf-8 string.
func DecodeBytes(charset string, b []byte) (string, error) {
	r, err := CharsetReader(charset, strings.NewReader(string(b)))
	if err != nil {
		return "", err
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(out), nil
}
