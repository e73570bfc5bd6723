package header

import (
	"strings"

	"github.com/zostay/go-emlstream/message/header/field"
)

// Parse builds a Header out of a raw header block. Lines are split on LF with
// a trailing CR removed. Blank lines are skipped. A line starting with a space
// or a tab continues the previous field: it is appended with its first
// character dropped. Each logical line is then handed to field.Parse.
//
// Parse never fails. The line break found on the first line is remembered as
// the header's Break.
func Parse(m []byte, parseParams bool) *Header {
	h := &Header{lbr: DetectBreak(m)}

	var logical []string
	for _, line := range strings.Split(string(m), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if (line[0] == ' ' || line[0] == '\t') && len(logical) > 0 {
			logical[len(logical)-1] += line[1:]
			continue
		}

		logical = append(logical, line)
	}

	h.fields = make([]*field.Field, len(logical))
	for i, line := range logical {
		h.fields[i] = field.Parse(line, parseParams)
	}

	return h
}
