package titles

import (
	"regexp"
	"strings"
)

// Decoration tokens stripped by CleanTitle. These show up in playlist names
// but never in the external metadata source, so they would poison lookups.
var (
	trailingBracketPattern = regexp.MustCompile(`\s*[\[(][^\])]*[\])]\s*$`)
	leadingGlyphPattern    = regexp.MustCompile(`^[^\p{L}\p{N}]+`)
	languageTagPattern     = regexp.MustCompile(`(?i)\b(leg(endado)?|dub(lado)?|dual|nacional|latino|legenda)\b\.?`)
	qualityTagPattern      = regexp.MustCompile(`(?i)\b(4k|uhd|fhd|hd|sd|cam|hdts|1080p|720p|480p|x26[45]|h26[45]|hevc|hdr|web-?dl|bluray|remux)\b\.?`)
)

// CleanTitle strips language/quality/edition decorations from a raw title,
// leaving the key used for metadata backfill and external lookup. It is
// looser than Normalize: spacing and case survive, only decoration goes.
// Returns "" when nothing meaningful remains.
func CleanTitle(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}

	// Trailing bracket groups can stack: "Title (2019) [LEG]".
	for {
		stripped := trailingBracketPattern.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	s = leadingGlyphPattern.ReplaceAllString(s, "")

	s = languageTagPattern.ReplaceAllString(s, " ")
	s = qualityTagPattern.ReplaceAllString(s, " ")

	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.Trim(strings.TrimSpace(s), "-. ")
}

// ExtractYear pulls a plausible release year out of a parenthesized group,
// e.g. "Heat (1995)". Returns "" when no year is present.
func ExtractYear(name string) string {
	m := yearPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

var yearPattern = regexp.MustCompile(`\((19\d{2}|20\d{2})\)`)
