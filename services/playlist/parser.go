package playlist

import (
	"bufio"
	"log"
	"regexp"
	"strings"

	"vodsync/models"
	"vodsync/utils"
	"vodsync/utils/titles"
)

var extinfAttrPattern = regexp.MustCompile(`([a-zA-Z0-9-]+)="([^"]*)"`)

// Index holds one parsed playlist snapshot: the ordered entries plus two
// lookup maps keyed by normalized name. It is immutable after Parse, so
// concurrent readers need no locking.
type Index struct {
	Entries []models.PlaylistEntry

	urlsByName    map[string]string
	entriesByName map[string]models.PlaylistEntry
}

// Parse reads the line-oriented playlist text. A metadata line declares
// name/group/artwork for the next non-comment, non-blank line, which is the
// URL. Dangling metadata with no URL before EOF or before the next metadata
// line is silently dropped.
func Parse(text string) *Index {
	idx := &Index{
		urlsByName:    make(map[string]string),
		entriesByName: make(map[string]models.PlaylistEntry),
	}

	var pending *models.PlaylistEntry
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(nil, 512*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF") {
			// A second metadata line abandons the previous one.
			entry := parseInfoLine(line)
			pending = &entry
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if pending == nil {
			continue
		}
		if strings.Contains(line, " ") {
			if encoded, err := utils.EncodeURLWithSpaces(line); err == nil {
				line = encoded
			}
		}
		pending.URL = line
		idx.add(*pending)
		pending = nil
	}
	if err := sc.Err(); err != nil {
		// A line over the buffer cap stops the scan; keep whatever parsed
		// before it rather than losing the whole snapshot.
		log.Printf("[playlist] scan stopped early after %d entries: %v", len(idx.Entries), err)
	}

	return idx
}

// add appends the entry and indexes it under its normalized name. On a
// normalized-name collision the first-seen entry wins; later duplicates stay
// in the ordered slice but are invisible to lookups.
func (idx *Index) add(entry models.PlaylistEntry) {
	idx.Entries = append(idx.Entries, entry)

	key := titles.Normalize(entry.Name)
	if key == "" {
		return
	}
	if _, exists := idx.entriesByName[key]; exists {
		return
	}
	idx.urlsByName[key] = entry.URL
	idx.entriesByName[key] = entry
}

// Entry returns the first-seen entry for an already-normalized key.
func (idx *Index) Entry(normalizedName string) (models.PlaylistEntry, bool) {
	e, ok := idx.entriesByName[normalizedName]
	return e, ok
}

// Len reports the number of parsed entries, duplicates included.
func (idx *Index) Len() int {
	return len(idx.Entries)
}

func parseInfoLine(line string) models.PlaylistEntry {
	entry := models.PlaylistEntry{}

	for _, m := range extinfAttrPattern.FindAllStringSubmatch(line, -1) {
		switch strings.ToLower(m[1]) {
		case "tvg-name":
			entry.Name = m[2]
		case "tvg-logo":
			entry.Artwork = m[2]
		case "group-title":
			entry.Group = m[2]
		}
	}

	// The display name after the last comma wins over tvg-name when present.
	if i := strings.LastIndex(line, `",`); i >= 0 && i+2 < len(line) {
		if name := strings.TrimSpace(line[i+2:]); name != "" {
			entry.Name = name
		}
	} else if i := strings.LastIndex(line, ","); i >= 0 && !strings.Contains(line[i:], `"`) {
		if name := strings.TrimSpace(line[i+1:]); name != "" {
			entry.Name = name
		}
	}

	return entry
}
