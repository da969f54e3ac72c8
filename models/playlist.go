package models

// PlaylistEntry is one parsed entry of the upstream playlist. Entries are
// rebuilt on every sync pass and never persisted.
type PlaylistEntry struct {
	Name    string
	Group   string
	Artwork string
	URL     string
}
