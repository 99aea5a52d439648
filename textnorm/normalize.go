package textnorm

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a question for cache lookup and matching:
// lowercase, punctuation removed, surrounding whitespace trimmed.
// Word characters and inner whitespace are preserved, so the operation
// is idempotent. The retrieval query and generation prompts always use
// the original text, never the normalized form.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
