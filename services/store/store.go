package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"vodsync/models"
)

// ItemsPerShard is the fixed shard size for category files.
const ItemsPerShard = 50

const manifestFile = "manifest.json"

// Store owns the on-disk catalog layout: one manifest plus, per category,
// numbered shard files each holding a slice of the category's items. The
// manifest is the single source of truth for shard counts; the store never
// infers shards from directory listings.
//
// Writes to the same category are serialized internally; writes to
// different categories are independent.
type Store struct {
	fs   afero.Fs
	root string

	manifestMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a store rooted at dir on the given filesystem.
func New(fs afero.Fs, dir string) *Store {
	return &Store{
		fs:    fs,
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) categoryLock(base string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[base]
	if !ok {
		l = &sync.Mutex{}
		s.locks[base] = l
	}
	return l
}

func (s *Store) shardPath(base string, part int) string {
	return filepath.Join(s.root, fmt.Sprintf("%s-p%d", base, part))
}

// ReadManifest loads the manifest, returning an empty one when the file does
// not exist yet.
func (s *Store) ReadManifest() (models.Manifest, error) {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	return s.readManifestLocked()
}

func (s *Store) readManifestLocked() (models.Manifest, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return models.Manifest{}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

func (s *Store) writeManifestLocked(m models.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.root, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadCategory returns every item of a category, concatenated in shard
// order. A category absent from the manifest yields an empty list. A shard
// that is missing or fails to parse is logged and skipped: one corrupted
// shard must not take the whole category down with it.
func (s *Store) ReadCategory(base string) ([]models.CatalogItem, error) {
	manifest, err := s.ReadManifest()
	if err != nil {
		return nil, err
	}

	entry, ok := manifest[base]
	if !ok {
		return nil, nil
	}

	items := make([]models.CatalogItem, 0, entry.TotalItems)
	for part := 1; part <= entry.TotalParts; part++ {
		path := s.shardPath(base, part)
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			log.Printf("[store] skipping shard %s: %v", path, err)
			continue
		}
		var shard []models.CatalogItem
		if err := json.Unmarshal(data, &shard); err != nil {
			log.Printf("[store] skipping unparseable shard %s: %v", path, err)
			continue
		}
		items = append(items, shard...)
	}

	return items, nil
}

// WriteCategory replaces a category's full item list on disk: old shards
// referenced by the previous manifest entry are deleted first so a shrinking
// category leaves no orphans, then the new list is re-chunked and written,
// then the manifest entry is updated.
//
// The multi-file rewrite is not atomic. Every pass rewrites every item, so
// the recovery path for a crashed run is simply to run again.
func (s *Store) WriteCategory(base string, items []models.CatalogItem) error {
	lock := s.categoryLock(base)
	lock.Lock()
	defer lock.Unlock()

	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create catalog root: %w", err)
	}

	s.manifestMu.Lock()
	manifest, err := s.readManifestLocked()
	s.manifestMu.Unlock()
	if err != nil {
		return err
	}

	if prev, ok := manifest[base]; ok {
		for part := 1; part <= prev.TotalParts; part++ {
			path := s.shardPath(base, part)
			if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("[store] failed to remove stale shard %s: %v", path, err)
			}
		}
	}

	totalParts := (len(items) + ItemsPerShard - 1) / ItemsPerShard
	if totalParts < 1 {
		totalParts = 1
	}

	for part := 1; part <= totalParts; part++ {
		start := (part - 1) * ItemsPerShard
		end := start + ItemsPerShard
		if end > len(items) {
			end = len(items)
		}
		shard := items[start:end]
		if shard == nil {
			shard = []models.CatalogItem{}
		}

		data, err := json.MarshalIndent(shard, "", "  ")
		if err != nil {
			return fmt.Errorf("encode shard %s part %d: %w", base, part, err)
		}
		if err := afero.WriteFile(s.fs, s.shardPath(base, part), data, 0o644); err != nil {
			return fmt.Errorf("write shard %s part %d: %w", base, part, err)
		}
	}

	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	manifest, err = s.readManifestLocked()
	if err != nil {
		return err
	}
	manifest[base] = models.ManifestEntry{
		TotalParts: totalParts,
		TotalItems: len(items),
	}
	return s.writeManifestLocked(manifest)
}
