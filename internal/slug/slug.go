package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make converts a name into a URL slug: lowercase, runs of non-alphanumeric
// characters collapsed to single hyphens, trimmed. Returns "storefront" for
// input with no usable characters so callers always get a valid slug.
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "storefront"
	}
	return s
}

// WithSuffix appends a numeric suffix for deduplication: WithSuffix("shop", 2)
// returns "shop-2". A suffix below 2 returns the base unchanged.
func WithSuffix(base string, n int) string {
	if n < 2 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
