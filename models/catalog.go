package models

// Catalog item types.
const (
	ItemTypeMovie  = "movie"
	ItemTypeSeries = "series"
)

// Metadata is the enrichment record attached to a catalog item by the
// external lookup. Once attached, fields are only ever filled in when
// missing, never overwritten (first-found wins).
type Metadata struct {
	ExternalID    int64    `json:"externalId,omitempty"`
	Title         string   `json:"title,omitempty"`
	OriginalTitle string   `json:"originalTitle,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	PosterURL     string   `json:"posterUrl,omitempty"`
	BackdropURL   string   `json:"backdropUrl,omitempty"`
	ReleaseDate   string   `json:"releaseDate,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	VoteAverage   float64  `json:"voteAverage,omitempty"`
}

// FillFrom copies fields from other into m, but only where m's field is
// still empty. Existing values are never replaced. It reports whether any
// field was filled.
func (m *Metadata) FillFrom(other *Metadata) bool {
	if other == nil {
		return false
	}
	filled := false
	if m.ExternalID == 0 && other.ExternalID != 0 {
		m.ExternalID = other.ExternalID
		filled = true
	}
	if m.Title == "" && other.Title != "" {
		m.Title = other.Title
		filled = true
	}
	if m.OriginalTitle == "" && other.OriginalTitle != "" {
		m.OriginalTitle = other.OriginalTitle
		filled = true
	}
	if m.Overview == "" && other.Overview != "" {
		m.Overview = other.Overview
		filled = true
	}
	if m.PosterURL == "" && other.PosterURL != "" {
		m.PosterURL = other.PosterURL
		filled = true
	}
	if m.BackdropURL == "" && other.BackdropURL != "" {
		m.BackdropURL = other.BackdropURL
		filled = true
	}
	if m.ReleaseDate == "" && other.ReleaseDate != "" {
		m.ReleaseDate = other.ReleaseDate
		filled = true
	}
	if len(m.Genres) == 0 && len(other.Genres) > 0 {
		m.Genres = other.Genres
		filled = true
	}
	if len(m.Cast) == 0 && len(other.Cast) > 0 {
		m.Cast = other.Cast
		filled = true
	}
	if m.VoteAverage == 0 && other.VoteAverage != 0 {
		m.VoteAverage = other.VoteAverage
		filled = true
	}
	return filled
}

// Episode is a single episode of a series. Within one season the episode
// numbers are unique and the slice is kept sorted ascending.
type Episode struct {
	ID            string `json:"id"`
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	Artwork       string `json:"artwork,omitempty"`
}

// CatalogItem is one movie or series in the persisted catalog.
type CatalogItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"` // movies only; series carry per-episode URLs
	Category string `json:"category"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
	IsAdult  bool   `json:"isAdult,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`

	// EpisodesBySeason maps the season number (as a string, no leading
	// zeros) to that season's episodes. Series only.
	EpisodesBySeason map[string][]Episode `json:"episodesBySeason,omitempty"`
}
