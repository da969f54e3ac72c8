package syncer

import (
	"strings"

	"vodsync/models"
	"vodsync/services/playlist"
	"vodsync/utils/titles"
)

// upstreamEpisode is one playlist entry recognized as a series episode.
type upstreamEpisode struct {
	Season  int
	Episode int
	Entry   models.PlaylistEntry
}

// upstreamSeries groups a playlist's episodes under one detected base name.
type upstreamSeries struct {
	BaseName string
	Group    string
	Artwork  string
	Episodes []upstreamEpisode
}

// passContext carries the cross-category state of a single reconciliation
// pass. It is built once up front and handed into the phase functions by
// argument; nothing here is process-global.
type passContext struct {
	idx *playlist.Index

	// backfill maps clean-title and normalized-name keys to metadata that
	// already exists somewhere in the catalog. First registered wins.
	backfill map[string]*models.Metadata

	// knownNames suppresses re-admitting titles that already exist.
	knownNames map[string]struct{}

	// consumedURLs marks playlist URLs matched during reconciliation so
	// admission only considers genuinely new entries.
	consumedURLs map[string]struct{}

	// seriesByBase groups playlist entries by detected series base name,
	// built once by running the episode extractor over every entry.
	seriesByBase map[string]*upstreamSeries
}

func newPassContext(idx *playlist.Index) *passContext {
	pc := &passContext{
		idx:          idx,
		backfill:     make(map[string]*models.Metadata),
		knownNames:   make(map[string]struct{}),
		consumedURLs: make(map[string]struct{}),
		seriesByBase: make(map[string]*upstreamSeries),
	}

	for _, entry := range idx.Entries {
		ref, ok := titles.ParseEpisode(entry.Name)
		if !ok {
			continue
		}
		key := titles.Normalize(ref.BaseName)
		if key == "" {
			continue
		}
		series, exists := pc.seriesByBase[key]
		if !exists {
			series = &upstreamSeries{
				BaseName: ref.BaseName,
				Group:    entry.Group,
				Artwork:  entry.Artwork,
			}
			pc.seriesByBase[key] = series
		}
		series.Episodes = append(series.Episodes, upstreamEpisode{
			Season:  ref.Season,
			Episode: ref.Episode,
			Entry:   entry,
		})
	}

	return pc
}

// registerItem indexes one existing catalog item: its name becomes known,
// and its metadata (when carrying an external identifier) becomes available
// for backfill under both the clean-title and the normalized-name key.
func (pc *passContext) registerItem(item *models.CatalogItem) {
	pc.registerKnown(item.Name)

	if item.Metadata == nil || item.Metadata.ExternalID == 0 {
		return
	}
	pc.registerBackfill(cleanKey(item.Name), item.Metadata)
	pc.registerBackfill(titles.Normalize(item.Name), item.Metadata)
}

// registerBackfill is insert-if-absent: on key collision the first
// registration wins, making the policy explicit at the call site.
func (pc *passContext) registerBackfill(key string, meta *models.Metadata) {
	if key == "" {
		return
	}
	if _, exists := pc.backfill[key]; exists {
		return
	}
	pc.backfill[key] = meta
}

// backfillFor returns a copy of previously registered metadata for a title,
// looked up by its clean-title key. The copy keeps later fill-ins on one
// item from leaking into its siblings.
func (pc *passContext) backfillFor(name string) (*models.Metadata, bool) {
	meta, ok := pc.backfill[cleanKey(name)]
	if !ok {
		return nil, false
	}
	clone := *meta
	return &clone, true
}

func (pc *passContext) registerKnown(name string) {
	if key := titles.Normalize(name); key != "" {
		pc.knownNames[key] = struct{}{}
	}
}

func (pc *passContext) isKnown(normalizedName string) bool {
	_, ok := pc.knownNames[normalizedName]
	return ok
}

func (pc *passContext) consume(url string) {
	pc.consumedURLs[url] = struct{}{}
}

func (pc *passContext) consumed(url string) bool {
	_, ok := pc.consumedURLs[url]
	return ok
}

// cleanKey is the lookup key used for metadata backfill: the cleaned title,
// lowercased so feeds that shout in caps still hit.
func cleanKey(name string) string {
	return strings.ToLower(titles.CleanTitle(name))
}
