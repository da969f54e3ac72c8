package playlist

import "vodsync/utils/titles"

// Match returns the playlist URL for a catalog item name, trying the
// normalized primary name first and then the normalized alternate title.
// Matching is exact on the normalized key only; no substring matching
// happens at this layer. Absence is a normal outcome, not an error.
func (idx *Index) Match(name, alternateName string) (string, bool) {
	if url, ok := idx.urlsByName[titles.Normalize(name)]; ok {
		return url, true
	}
	if alternateName != "" {
		if url, ok := idx.urlsByName[titles.Normalize(alternateName)]; ok {
			return url, true
		}
	}
	return "", false
}
