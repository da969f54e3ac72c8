package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Settings is the persisted application configuration.
type Settings struct {
	PlaylistURL string `json:"playlistUrl"`
	DataDir     string `json:"dataDir"`
	ReportPath  string `json:"reportPath"`
	ListenAddr  string `json:"listenAddr"`
	LogFile     string `json:"logFile"`

	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`

	SyncIntervalMinutes int `json:"syncIntervalMinutes"`

	Enrichment EnrichmentSettings `json:"enrichment"`
}

// EnrichmentSettings tunes the batched metadata lookups.
type EnrichmentSettings struct {
	BatchSize            int `json:"batchSize"`
	Concurrency          int `json:"concurrency"`
	BatchDelaySeconds    int `json:"batchDelaySeconds"`
	LookupTimeoutSeconds int `json:"lookupTimeoutSeconds"`
}

// Manager loads and saves the settings file. Load results are cached;
// callers get a copy so nobody mutates shared state.
type Manager struct {
	path string

	mu     sync.Mutex
	cached *Settings
}

// NewManager creates a manager for the given settings file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings file, applies defaults and environment overrides.
// A missing file is not an error: defaults plus environment are enough to
// run.
func (m *Manager) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		s := *m.cached
		return &s, nil
	}

	settings := &Settings{}
	data, err := os.ReadFile(m.path)
	if err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", m.path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings file %s: %w", m.path, err)
	}

	applyDefaults(settings)
	applyEnvOverrides(settings)

	m.cached = settings
	s := *settings
	return &s, nil
}

// Save persists the settings and refreshes the cache.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file %s: %w", m.path, err)
	}

	s := *settings
	m.cached = &s
	return nil
}

func applyDefaults(s *Settings) {
	if s.DataDir == "" {
		s.DataDir = "data/catalog"
	}
	if s.ReportPath == "" {
		s.ReportPath = "data/enrichment-failures.txt"
	}
	if s.ListenAddr == "" {
		s.ListenAddr = ":8875"
	}
	if s.Language == "" {
		s.Language = "pt-BR"
	}
	if s.SyncIntervalMinutes <= 0 {
		s.SyncIntervalMinutes = 360
	}
	if s.Enrichment.BatchSize <= 0 {
		s.Enrichment.BatchSize = 20
	}
	if s.Enrichment.Concurrency <= 0 {
		s.Enrichment.Concurrency = 5
	}
	if s.Enrichment.BatchDelaySeconds <= 0 {
		s.Enrichment.BatchDelaySeconds = 2
	}
	if s.Enrichment.LookupTimeoutSeconds <= 0 {
		s.Enrichment.LookupTimeoutSeconds = 15
	}
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("VODSYNC_PLAYLIST_URL"); v != "" {
		s.PlaylistURL = v
	}
	if v := os.Getenv("VODSYNC_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv("VODSYNC_LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		s.TMDBAPIKey = v
	}
	if v := os.Getenv("VODSYNC_SYNC_INTERVAL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			s.SyncIntervalMinutes = minutes
		}
	}
}
