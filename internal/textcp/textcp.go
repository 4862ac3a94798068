// Package textcp encodes window text for legacy single-byte title
// properties.
package textcp

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Encoder converts UTF-8 text to a legacy code page. Characters the code
// page cannot represent are replaced. An Encoder is not safe for concurrent
// use.
type Encoder struct {
	name string
	enc  *encoding.Encoder
}

// New returns an encoder for the IANA-registered encoding name.
func New(name string) (*Encoder, error) {
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("title encoding %q: %w", name, err)
	}
	if e == nil {
		return nil, fmt.Errorf("title encoding %q is not supported", name)
	}
	canonical, err := ianaindex.IANA.Name(e)
	if err != nil {
		canonical = name
	}
	return &Encoder{name: canonical, enc: encoding.ReplaceUnsupported(e.NewEncoder())}, nil
}

// Default returns an ISO-8859-1 encoder.
func Default() *Encoder {
	return &Encoder{name: "ISO-8859-1", enc: encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())}
}

// Name returns the canonical encoding name.
func (e *Encoder) Name() string {
	return e.name
}

// Encode converts s, without a terminator.
func (e *Encoder) Encode(s string) []byte {
	out, err := e.enc.Bytes([]byte(s))
	if err != nil {
		// ReplaceUnsupported only fails on invalid UTF-8 input; keep the ASCII.
		ascii := make([]byte, 0, len(s))
		for i := 0; i < len(s); i++ {
			if s[i] < 0x80 {
				ascii = append(ascii, s[i])
			} else {
				ascii = append(ascii, '?')
			}
		}
		return ascii
	}
	return out
}
