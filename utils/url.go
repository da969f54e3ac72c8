package utils

import (
	"net/url"
	"strings"
)

// EncodeURLWithSpaces encodes a playback URL that may contain raw spaces.
// Some providers hand out URLs with literal spaces in the path, which must
// become %20 before they are usable over HTTP.
func EncodeURLWithSpaces(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	// url.URL.String escapes the path on its own but passes the raw query
	// through untouched, so only the query needs fixing up.
	parsed.RawQuery = strings.ReplaceAll(parsed.RawQuery, " ", "%20")
	return parsed.String(), nil
}
