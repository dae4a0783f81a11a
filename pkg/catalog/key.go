package catalog

import (
	"regexp"
	"strings"
)

// keySeparator joins the three normalized descriptor parts. A double pipe
// never appears in supply or target descriptor fields, so joined keys cannot
// collide across part boundaries.
const keySeparator = "||"

// Key is the normalized composite identity of a variant. Two variants are the
// same physical product iff their keys are equal. Matching is deliberately NOT
// by supplier code: supplier codes change independently of physical identity.
type Key string

// String returns the string representation of a key.
func (k Key) String() string {
	return string(k)
}

// IsZero reports whether the key was built from three empty fields. Degenerate
// keys are non-identifying and must be filtered out before key sets are built.
func (k Key) IsZero() bool {
	return k == Key(keySeparator+keySeparator)
}

// BuildKey normalizes a 3-part variant descriptor into a case-insensitive
// composite key: each part is trimmed and lower-cased, then the parts are
// joined in order.
func BuildKey(field1, field2, field3 string) Key {
	parts := []string{
		normalizeKeyField(field1),
		normalizeKeyField(field2),
		normalizeKeyField(field3),
	}
	return Key(strings.Join(parts, keySeparator))
}

func normalizeKeyField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// controlChars matches control characters and byte-order marks that spreadsheet
// exports leak into cell values.
var controlChars = regexp.MustCompile("[\x00-\x1f\x7f-\uFEFF]")

// CleanValue scrubs a raw cell value from an external source: control
// characters and BOMs are removed, a leading formula escape ("=") is dropped,
// double quotes are stripped, and surrounding whitespace is trimmed.
func CleanValue(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "=")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}
