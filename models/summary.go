package models

import "time"

// CategorySummary counts what one sync pass did to a single category.
type CategorySummary struct {
	Items            int `json:"items"`
	Updated          int `json:"updated"`
	EpisodesAppended int `json:"episodesAppended"`
	Added            int `json:"added"`
	Failed           int `json:"failed"`
}

// SyncSummary is the human-facing result of one full reconciliation pass.
type SyncSummary struct {
	StartedAt       time.Time                   `json:"startedAt"`
	FinishedAt      time.Time                   `json:"finishedAt"`
	PlaylistEntries int                         `json:"playlistEntries"`
	Categories      map[string]*CategorySummary `json:"categories"`
}

// Category returns the summary bucket for a category, creating it on first use.
func (s *SyncSummary) Category(name string) *CategorySummary {
	if s.Categories == nil {
		s.Categories = make(map[string]*CategorySummary)
	}
	cs, ok := s.Categories[name]
	if !ok {
		cs = &CategorySummary{}
		s.Categories[name] = cs
	}
	return cs
}
