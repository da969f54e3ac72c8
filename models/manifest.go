package models

// ManifestEntry records how a category is split across shard files.
type ManifestEntry struct {
	TotalParts int `json:"totalParts"`
	TotalItems int `json:"totalItems"`
}

// Manifest maps a category base name to its shard accounting. It is the
// single source of truth for which shard files exist; consumers must not
// infer shard count from directory listings.
type Manifest map[string]ManifestEntry
