package titles

import (
	"regexp"
	"strconv"
	"strings"
)

// EpisodeRef is the result of recognizing a title as a series episode.
type EpisodeRef struct {
	BaseName string
	Season   int
	Episode  int
}

// episodeMatcher is one pattern attempt. Matchers are tried in order; the
// first hit wins, so precedence lives in the slice, not in the regexes.
type episodeMatcher func(title string) (EpisodeRef, bool)

var (
	// "Show Name S01E02" / "Show.Name.S01 E02", nothing after the marker.
	exactMarkerPattern = regexp.MustCompile(`(?i)^(.+?)[ ._-]+S(\d{1,2})[ ._-]*E(\d{1,3})\s*$`)

	// "Show Name S01 Show.Name.S01E02.1080p": some feeds restate the
	// filename after the season marker; take the episode from the restated
	// SxxEyy so the lazy base-name capture cannot swallow the decoration.
	restatedMarkerPattern = regexp.MustCompile(`(?i)^(.+?)[ ._-]+S(\d{1,2})[ ._-]+\S*S\d{1,2}[ ._-]*E(\d{1,3})\b`)

	// "Show Name S01E02 720p LEG": marker followed by trailing decoration.
	markerWithTrailerPattern = regexp.MustCompile(`(?i)^(.+?)[ ._-]+S(\d{1,2})[ ._-]*E(\d{1,3})\b`)

	// "Show Name S2 14": bare trailing episode number. Anchored to the end
	// and gated on the explicit S marker, so movie titles that merely end in
	// digits never match.
	bareTrailingPattern = regexp.MustCompile(`(?i)^(.+?)[ ._-]+S(\d{1,2})[ ._-]+(\d{1,3})\s*$`)
)

var episodeMatchers = []episodeMatcher{
	regexMatcher(exactMarkerPattern),
	regexMatcher(restatedMarkerPattern),
	regexMatcher(markerWithTrailerPattern),
	regexMatcher(bareTrailingPattern),
}

func regexMatcher(re *regexp.Regexp) episodeMatcher {
	return func(title string) (EpisodeRef, bool) {
		m := re.FindStringSubmatch(title)
		if m == nil {
			return EpisodeRef{}, false
		}
		season, err := strconv.Atoi(m[2])
		if err != nil {
			return EpisodeRef{}, false
		}
		episode, err := strconv.Atoi(m[3])
		if err != nil {
			return EpisodeRef{}, false
		}
		base := stripBrackets(strings.TrimSpace(m[1]))
		if base == "" {
			return EpisodeRef{}, false
		}
		return EpisodeRef{BaseName: base, Season: season, Episode: episode}, true
	}
}

// ParseEpisode extracts (series base name, season, episode) from a raw
// title. Titles that match no pattern are standalone movies by policy, so
// the second return is false rather than an error.
func ParseEpisode(title string) (EpisodeRef, bool) {
	for _, match := range episodeMatchers {
		if ref, ok := match(title); ok {
			return ref, true
		}
	}
	return EpisodeRef{}, false
}
