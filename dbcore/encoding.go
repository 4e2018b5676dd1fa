package dbcore

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EncodingConverter decodes/encodes the raw bytes of String and Memo fields
// (§4.2, §4.6, §6). Grounded on the teacher's EncodingConverter interface
// (dbase/encoding.go) and its golang.org/x/text/encoding/charmap-backed
// Win1250Converter, swapped to the code-page-1252 charmap and widened into a
// two-pass primary/fallback decoder per §4.2's "two-pass decode with the
// primary decoder's error count driving fallback" rule (§9 design notes).
type EncodingConverter interface {
	// TryDecode attempts to decode raw with the primary encoding, falling
	// back to the secondary when the primary decode substitutes characters
	// it cannot represent. ok is false only when both decoders fail, per
	// §4.2's "text field is absent" case.
	TryDecode(raw []byte) (text string, ok bool)
	// Encode converts a UTF-8 string back to the primary encoding's bytes,
	// used by the write path (insert/update).
	Encode(s string) ([]byte, error)
}

// cp1252Converter implements the default primary-cp1252/fallback-UTF-8
// policy.
type cp1252Converter struct {
	primary  *charmap.Charmap
	fallback *charmap.Charmap // nil means "try utf8.Valid directly"
}

// DefaultConverter is code-page-1252 primary, UTF-8 fallback, matching the
// Option defaults in §6's catalog configuration table.
var DefaultConverter EncodingConverter = &cp1252Converter{primary: charmap.Windows1252}

// NewConverter builds a converter for the given primary/fallback charmaps,
// backing the "string_encoding_primary"/"string_encoding_fallback" catalog
// options (§6). fallback may be nil for the UTF-8-valid fast path.
func NewConverter(primary, fallback *charmap.Charmap) EncodingConverter {
	if primary == nil {
		primary = charmap.Windows1252
	}
	return &cp1252Converter{primary: primary, fallback: fallback}
}

func (c *cp1252Converter) TryDecode(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	if decoded, ok := decodeWithoutSubstitution(c.primary.NewDecoder(), raw); ok {
		return decoded, true
	}
	if c.fallback != nil {
		if decoded, ok := decodeWithoutSubstitution(c.fallback.NewDecoder(), raw); ok {
			return decoded, true
		}
		return "", false
	}
	if utf8.Valid(raw) {
		return string(raw), true
	}
	return "", false
}

func (c *cp1252Converter) Encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(c.primary.NewEncoder(), []byte(s))
	return out, err
}

// decodeWithoutSubstitution runs raw through dec end to end and reports ok
// only if the decode produced no substitutions. charmap's single-byte
// decoders never return an error from Decode: an unmapped byte comes out as
// U+FFFD, and Windows1252's undefined bytes (0x81, 0x8D, 0x8F, 0x90, 0x9D)
// come out as the C1 control code point of the same value. A decode error
// alone therefore can't drive the "primary decoder reports no
// substitutions" fallback rule, so the decoded output is scanned for
// utf8.RuneError and for C1 controls (U+0080-U+009F) instead.
func decodeWithoutSubstitution(dec *encoding.Decoder, raw []byte) (string, bool) {
	r := transform.NewReader(bytes.NewReader(raw), dec)
	out, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	for _, c := range string(out) {
		if c == utf8.RuneError || (c >= 0x80 && c <= 0x9F) {
			return "", false
		}
	}
	return string(out), true
}
