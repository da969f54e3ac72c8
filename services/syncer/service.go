package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"vodsync/models"
	"vodsync/services/enrich"
	"vodsync/services/playlist"
	"vodsync/services/store"
	"vodsync/utils/titles"
)

// ErrAlreadyRunning is returned when a pass is requested while another is
// still in flight.
var ErrAlreadyRunning = errors.New("sync pass already running")

const phase1Concurrency = 4

// PlaylistSource provides the playlist snapshot a pass reconciles against.
type PlaylistSource interface {
	Fetch(ctx context.Context) (*playlist.Index, error)
}

// MetadataEnricher batches external lookups for items lacking metadata.
type MetadataEnricher interface {
	Enrich(ctx context.Context, targets []enrich.Target) []enrich.Failure
}

// Service runs full reconciliation passes against the upstream playlist.
// A pass refreshes rotated URLs, backfills metadata from sibling entries,
// merges newly-appeared episodes, and admits genuinely new titles. It never
// duplicates an item and never drops previously-enriched metadata.
type Service struct {
	store    *store.Store
	source   PlaylistSource
	enricher MetadataEnricher // optional

	reportFs   afero.Fs
	reportPath string

	mu          sync.Mutex
	running     bool
	lastSummary *models.SyncSummary
}

// New creates a synchronizer. enricher may be nil to skip external lookups.
func New(st *store.Store, source PlaylistSource, enricher MetadataEnricher) *Service {
	return &Service{
		store:    st,
		source:   source,
		enricher: enricher,
	}
}

// WithFailureReport makes each pass write the plain-text enrichment failure
// report to path on fs.
func (s *Service) WithFailureReport(fs afero.Fs, path string) *Service {
	s.reportFs = fs
	s.reportPath = path
	return s
}

// Running reports whether a pass is currently in flight.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastSummary returns the summary of the most recent completed pass, or nil.
func (s *Service) LastSummary() *models.SyncSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

// Run executes one full pass. A playlist fetch failure aborts the pass
// before any mutation; every other failure is logged and skipped so an
// unattended run always makes as much progress as it can.
func (s *Service) Run(ctx context.Context) (*models.SyncSummary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	summary := &models.SyncSummary{StartedAt: time.Now()}

	idx, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("playlist unavailable, aborting pass: %w", err)
	}
	summary.PlaylistEntries = idx.Len()

	manifest, err := s.store.ReadManifest()
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	categories := make([]string, 0, len(manifest))
	for cat := range manifest {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	pc := newPassContext(idx)

	// Phase 1: load every category and build the cross-category indexes.
	// Reads of independent categories share no mutable state, so they fan
	// out; registration stays serial in sorted order so first-registered-
	// wins is deterministic.
	itemsByCategory := make(map[string][]models.CatalogItem, len(categories))
	var loadMu sync.Mutex
	p := pool.New().WithMaxGoroutines(phase1Concurrency)
	for _, cat := range categories {
		p.Go(func() {
			items, err := s.store.ReadCategory(cat)
			if err != nil {
				log.Printf("[sync] failed to read category %s: %v", cat, err)
				items = nil
			}
			loadMu.Lock()
			itemsByCategory[cat] = items
			loadMu.Unlock()
		})
	}
	p.Wait()

	for _, cat := range categories {
		items := itemsByCategory[cat]
		for i := range items {
			pc.registerItem(&items[i])
		}
	}

	// Phase 2: reconcile and persist each category. The active flags must
	// be committed even when nothing else changed: going inactive this pass
	// is itself meaningful output state.
	for _, cat := range categories {
		sum := summary.Category(cat)
		items := itemsByCategory[cat]
		sum.Items = len(items)
		s.reconcileCategory(pc, items, sum)
		itemsByCategory[cat] = items
		if err := s.store.WriteCategory(cat, items); err != nil {
			log.Printf("[sync] failed to persist category %s: %v", cat, err)
			sum.Failed++
		}
	}

	// Phase 3: admit playlist entries that matched nothing anywhere.
	s.admitNewEntries(pc, itemsByCategory, summary)

	// Enrichment: batched external lookups for whatever still lacks
	// metadata, failures reported but never fatal.
	if s.enricher != nil {
		s.enrichMissing(ctx, itemsByCategory, summary)
	}

	summary.FinishedAt = time.Now()
	s.mu.Lock()
	s.lastSummary = summary
	s.mu.Unlock()

	for _, cat := range sortedKeys(summary.Categories) {
		cs := summary.Categories[cat]
		log.Printf("[sync] %s: %d items, %d updated, %d episodes appended, %d added, %d failed",
			cat, cs.Items, cs.Updated, cs.EpisodesAppended, cs.Added, cs.Failed)
	}
	return summary, nil
}

// reconcileCategory applies one pass to a category's items in place.
func (s *Service) reconcileCategory(pc *passContext, items []models.CatalogItem, sum *models.CategorySummary) {
	for i := range items {
		item := &items[i]
		item.Active = false

		// Metadata backfill from siblings that share the clean-title key -
		// no external lookup needed for duplicate/alternate entries. Items
		// carrying partial metadata only gain their missing fields.
		if meta, ok := pc.backfillFor(item.Name); ok {
			switch {
			case item.Metadata == nil:
				item.Metadata = meta
				sum.Updated++
			case item.Metadata.FillFrom(meta):
				sum.Updated++
			}
		}

		alternate := ""
		if item.Metadata != nil {
			alternate = item.Metadata.OriginalTitle
		}
		if url, ok := pc.idx.Match(item.Name, alternate); ok {
			item.Active = true
			pc.consume(url)
			if item.Type != models.ItemTypeSeries && item.URL != url {
				item.URL = url
				sum.Updated++
			}
		}

		if item.Type == models.ItemTypeSeries {
			s.reconcileSeries(pc, item, sum)
		}
	}
}

// reconcileSeries refreshes episode URLs against the playlist and merges
// newly-appeared upstream episodes into the series.
func (s *Service) reconcileSeries(pc *passContext, item *models.CatalogItem, sum *models.CategorySummary) {
	for _, seasonKey := range sortedKeys(item.EpisodesBySeason) {
		season, err := strconv.Atoi(seasonKey)
		if err != nil {
			log.Printf("[sync] series %q has malformed season key %q, skipping", item.Name, seasonKey)
			continue
		}
		episodes := item.EpisodesBySeason[seasonKey]
		for i := range episodes {
			ep := &episodes[i]
			url, ok := pc.idx.Match(fmt.Sprintf("%s S%02d E%02d", item.Name, season, ep.EpisodeNumber), "")
			if !ok {
				url, ok = pc.idx.Match(fmt.Sprintf("%s S%02dE%02d", item.Name, season, ep.EpisodeNumber), "")
			}
			if !ok {
				continue
			}
			item.Active = true
			pc.consume(url)
			if ep.URL != url {
				ep.URL = url
				sum.Updated++
			}
		}
	}

	if upstream, ok := pc.seriesByBase[titles.Normalize(item.Name)]; ok {
		for _, ue := range upstream.Episodes {
			seasonKey := strconv.Itoa(ue.Season)
			if hasEpisode(item.EpisodesBySeason[seasonKey], ue.Episode) {
				continue
			}
			if item.EpisodesBySeason == nil {
				item.EpisodesBySeason = make(map[string][]models.Episode)
			}
			item.EpisodesBySeason[seasonKey] = append(item.EpisodesBySeason[seasonKey], models.Episode{
				ID:            uuid.NewString(),
				EpisodeNumber: ue.Episode,
				Name:          ue.Entry.Name,
				URL:           ue.Entry.URL,
				Artwork:       ue.Entry.Artwork,
			})
			item.Active = true
			pc.consume(ue.Entry.URL)
			sum.EpisodesAppended++
		}
	}

	// Keep every season strictly ascending by episode number. A restored
	// sort order counts as an update even when no episode changed.
	for seasonKey, episodes := range item.EpisodesBySeason {
		if sort.SliceIsSorted(episodes, func(a, b int) bool {
			return episodes[a].EpisodeNumber < episodes[b].EpisodeNumber
		}) {
			continue
		}
		sort.Slice(episodes, func(a, b int) bool {
			return episodes[a].EpisodeNumber < episodes[b].EpisodeNumber
		})
		item.EpisodesBySeason[seasonKey] = episodes
		sum.Updated++
	}
}

func hasEpisode(episodes []models.Episode, number int) bool {
	for _, ep := range episodes {
		if ep.EpisodeNumber == number {
			return true
		}
	}
	return false
}

// pendingSeries accumulates unmatched playlist episodes under one new
// series-to-be.
type pendingSeries struct {
	BaseName string
	Group    string
	Artwork  string
	Episodes []upstreamEpisode
}

// admitNewEntries scans the playlist for entries whose URL was never
// consumed and whose name is unknown, and admits them as new movies or new
// series. Entries whose group maps to no category are discarded.
func (s *Service) admitNewEntries(pc *passContext, itemsByCategory map[string][]models.CatalogItem, summary *models.SyncSummary) {
	pendingMovies := make(map[string][]models.CatalogItem)
	pendingShows := make(map[string]*pendingSeries)

	for _, entry := range pc.idx.Entries {
		if entry.URL == "" || pc.consumed(entry.URL) {
			continue
		}
		nameKey := titles.Normalize(entry.Name)
		if nameKey == "" || pc.isKnown(nameKey) {
			continue
		}

		if ref, ok := titles.ParseEpisode(entry.Name); ok {
			baseKey := titles.Normalize(ref.BaseName)
			if baseKey == "" || pc.isKnown(baseKey) {
				// The series already exists; the Phase 2 merge owns it.
				// Admitting here would create a duplicate one-episode series.
				continue
			}
			show, exists := pendingShows[baseKey]
			if !exists {
				show = &pendingSeries{
					BaseName: ref.BaseName,
					Group:    entry.Group,
					Artwork:  entry.Artwork,
				}
				pendingShows[baseKey] = show
			}
			if !pendingHasEpisode(show.Episodes, ref.Season, ref.Episode) {
				show.Episodes = append(show.Episodes, upstreamEpisode{
					Season:  ref.Season,
					Episode: ref.Episode,
					Entry:   entry,
				})
			}
			continue
		}

		category, ok := CategoryForGroup(entry.Group)
		if !ok {
			continue
		}
		item := models.CatalogItem{
			ID:       uuid.NewString(),
			Name:     entry.Name,
			URL:      entry.URL,
			Category: entry.Group,
			Type:     models.ItemTypeMovie,
			Active:   true,
			IsAdult:  IsAdultGroup(entry.Group),
		}
		if meta, ok := pc.backfillFor(entry.Name); ok {
			item.Metadata = meta
		}
		pendingMovies[category] = append(pendingMovies[category], item)
		pc.registerKnown(entry.Name)
	}

	for _, baseKey := range sortedKeys(pendingShows) {
		show := pendingShows[baseKey]
		category, ok := CategoryForGroup(show.Group)
		if !ok {
			// A series is a series regardless of how exotic its group label
			// is; fall back to the generic series file.
			category = "series"
		}

		item := models.CatalogItem{
			ID:               uuid.NewString(),
			Name:             show.BaseName,
			Category:         show.Group,
			Type:             models.ItemTypeSeries,
			Active:           true,
			IsAdult:          IsAdultGroup(show.Group),
			EpisodesBySeason: make(map[string][]models.Episode),
		}
		if meta, ok := pc.backfillFor(show.BaseName); ok {
			item.Metadata = meta
		}
		for _, ue := range show.Episodes {
			seasonKey := strconv.Itoa(ue.Season)
			item.EpisodesBySeason[seasonKey] = append(item.EpisodesBySeason[seasonKey], models.Episode{
				ID:            uuid.NewString(),
				EpisodeNumber: ue.Episode,
				Name:          ue.Entry.Name,
				URL:           ue.Entry.URL,
				Artwork:       ue.Entry.Artwork,
			})
		}
		for seasonKey := range item.EpisodesBySeason {
			episodes := item.EpisodesBySeason[seasonKey]
			sort.Slice(episodes, func(a, b int) bool {
				return episodes[a].EpisodeNumber < episodes[b].EpisodeNumber
			})
			item.EpisodesBySeason[seasonKey] = episodes
		}

		pendingMovies[category] = append(pendingMovies[category], item)
		pc.registerKnown(show.BaseName)
	}

	for _, category := range sortedKeys(pendingMovies) {
		newItems := pendingMovies[category]
		items := append(itemsByCategory[category], newItems...)
		itemsByCategory[category] = items

		sum := summary.Category(category)
		sum.Added += len(newItems)
		sum.Items = len(items)

		if err := s.store.WriteCategory(category, items); err != nil {
			log.Printf("[sync] failed to persist admissions for %s: %v", category, err)
			sum.Failed++
		}
	}
}

func pendingHasEpisode(episodes []upstreamEpisode, season, number int) bool {
	for _, ep := range episodes {
		if ep.Season == season && ep.Episode == number {
			return true
		}
	}
	return false
}

// enrichMissing runs the batched external lookup for every item still
// lacking metadata and persists the categories that gained some.
func (s *Service) enrichMissing(ctx context.Context, itemsByCategory map[string][]models.CatalogItem, summary *models.SyncSummary) {
	var targets []enrich.Target
	for _, cat := range sortedKeys(itemsByCategory) {
		items := itemsByCategory[cat]
		for i := range items {
			if items[i].Metadata == nil {
				targets = append(targets, enrich.Target{Category: cat, Item: &items[i]})
			}
		}
	}
	if len(targets) == 0 {
		return
	}

	log.Printf("[sync] enriching %d items missing metadata", len(targets))
	failures := s.enricher.Enrich(ctx, targets)

	for _, f := range failures {
		summary.Category(f.Category).Failed++
	}

	for _, cat := range sortedKeys(itemsByCategory) {
		changed := false
		for _, target := range targets {
			if target.Category == cat && target.Item.Metadata != nil {
				changed = true
				summary.Category(cat).Updated++
			}
		}
		if changed {
			if err := s.store.WriteCategory(cat, itemsByCategory[cat]); err != nil {
				log.Printf("[sync] failed to persist enrichment for %s: %v", cat, err)
				summary.Category(cat).Failed++
			}
		}
	}

	if s.reportPath != "" && s.reportFs != nil {
		if err := enrich.WriteReport(s.reportFs, s.reportPath, failures); err != nil {
			log.Printf("[sync] %v", err)
		}
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
