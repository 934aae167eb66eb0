package netx

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// PreviewLimit caps the number of body bytes rendered into logs.
const PreviewLimit = 8 << 10

// BodyPreview renders at most PreviewLimit bytes of raw as text, or as
// space-separated hex when the bytes are not valid UTF-8.
func BodyPreview(raw []byte) string {
	if len(raw) <= PreviewLimit {
		if utf8.Valid(raw) {
			return string(raw)
		}
		return fmt.Sprintf("% x", raw)
	}

	// A multi-byte rune may straddle the cut.
	for cut := PreviewLimit; cut > PreviewLimit-utf8.UTFMax; cut-- {
		if utf8.Valid(raw[:cut]) {
			return string(raw[:cut])
		}
	}
	return fmt.Sprintf("% x", raw[:PreviewLimit])
}

// FormatHeaders renders headers as sorted "Key: v1, v2" pairs.
func FormatHeaders(h http.Header) string {
	lines := make([]string, 0, len(h))
	for k, v := range h {
		lines = append(lines, k+": "+strings.Join(v, ", "))
	}
	sort.Strings(lines)
	return strings.Join(lines, "; ")
}
