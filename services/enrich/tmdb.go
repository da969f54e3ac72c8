package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"vodsync/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"
const tmdbImageBaseURL = "https://image.tmdb.org/t/p"

// TMDBClient is the default lookup collaborator. It only implements the
// narrow lookup(title, year) contract the synchronizer needs; everything
// else about the TMDB API is out of scope here.
type TMDBClient struct {
	apiKey   string
	language string
	client   *http.Client
}

// NewTMDBClient creates a client with the given API key and result language
// (e.g. "pt-BR").
func NewTMDBClient(apiKey, language string) *TMDBClient {
	if language == "" {
		language = "en-US"
	}
	return &TMDBClient{
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{},
	}
}

type tmdbSearchResult struct {
	ID            int64   `json:"id"`
	MediaType     string  `json:"media_type"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
}

type tmdbSearchResponse struct {
	Results []tmdbSearchResult `json:"results"`
}

// Lookup implements LookupFunc against TMDB's multi search. The first
// movie/tv result wins; no result maps to ErrNotFound.
func (c *TMDBClient) Lookup(ctx context.Context, title, year string) (*models.Metadata, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	q.Set("query", title)
	q.Set("include_adult", "true")
	if year != "" {
		q.Set("year", year)
	}

	endpoint := tmdbBaseURL + "/search/multi?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb search: unexpected status %d", resp.StatusCode)
	}

	var parsed tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}

	for _, r := range parsed.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		return resultToMetadata(r), nil
	}
	return nil, ErrNotFound
}

func resultToMetadata(r tmdbSearchResult) *models.Metadata {
	meta := &models.Metadata{
		ExternalID:    r.ID,
		Title:         firstNonEmpty(r.Title, r.Name),
		OriginalTitle: firstNonEmpty(r.OriginalTitle, r.OriginalName),
		Overview:      r.Overview,
		ReleaseDate:   firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
		VoteAverage:   r.VoteAverage,
	}
	if r.PosterPath != "" {
		meta.PosterURL = tmdbImageBaseURL + "/w500" + r.PosterPath
	}
	if r.BackdropPath != "" {
		meta.BackdropURL = tmdbImageBaseURL + "/original" + r.BackdropPath
	}
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
