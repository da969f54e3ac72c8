package titles

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	bracketGroupPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	nonAlnumPattern     = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a title into a comparison key: diacritics folded
// to ASCII, lowercased, bracketed groups removed, everything that is not a
// letter or digit stripped. It is deterministic and never fails.
//
// The stripping is intentionally aggressive: it trades a small collision
// risk between punctuation-distinct titles for much better recall against
// feeds that decorate names inconsistently.
func Normalize(name string) string {
	s := unidecode.Unidecode(name)
	s = strings.ToLower(s)
	s = bracketGroupPattern.ReplaceAllString(s, "")
	s = nonAlnumPattern.ReplaceAllString(s, "")
	return s
}

// stripBrackets removes bracketed groups and collapses leftover whitespace,
// keeping the rest of the title intact.
func stripBrackets(name string) string {
	s := bracketGroupPattern.ReplaceAllString(name, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
