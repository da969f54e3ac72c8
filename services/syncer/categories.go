package syncer

import "strings"

// groupCategories maps lowercase substrings of playlist group labels to
// catalog category base names. Feeds rarely agree on exact group spelling,
// so matching is by substring; the longest matching key wins so that e.g.
// "filmes ação" beats a generic "filmes" key. Entries whose group matches
// no key are discarded during admission, never defaulted to a catch-all.
var groupCategories = map[string]string{
	"ação":         "acao",
	"acao":         "acao",
	"aventura":     "aventura",
	"comédia":      "comedia",
	"comedia":      "comedia",
	"drama":        "drama",
	"terror":       "terror",
	"suspense":     "suspense",
	"romance":      "romance",
	"ficção":       "ficcao",
	"ficcao":       "ficcao",
	"fantasia":     "fantasia",
	"animação":     "animacao",
	"animacao":     "animacao",
	"anime":        "animes",
	"infantil":     "infantil",
	"documentário": "documentarios",
	"documentario": "documentarios",
	"guerra":       "guerra",
	"faroeste":     "faroeste",
	"policial":     "policial",
	"crime":        "crime",
	"religioso":    "religiosos",
	"nacional":     "nacionais",
	"lançamento":   "lancamentos",
	"lancamento":   "lancamentos",
	"show":         "shows",
	"série":        "series",
	"serie":        "series",
	"novela":       "novelas",
	"adulto":       "adultos",
}

// CategoryForGroup resolves a playlist group label to a category base name.
// Longest matching key wins; equal-length ties break on the lexicographically
// smaller key so the result never depends on map iteration order.
func CategoryForGroup(group string) (string, bool) {
	g := strings.ToLower(strings.TrimSpace(group))
	if g == "" {
		return "", false
	}

	bestKey, bestCategory := "", ""
	for key, category := range groupCategories {
		if !strings.Contains(g, key) {
			continue
		}
		if len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey, bestCategory = key, category
		}
	}
	return bestCategory, bestKey != ""
}

// IsAdultGroup classifies a group label as adult content. Set once at item
// creation; sync never flips it afterwards.
func IsAdultGroup(group string) bool {
	g := strings.ToLower(group)
	return strings.Contains(g, "adulto") ||
		strings.Contains(g, "xxx") ||
		strings.Contains(g, "+18")
}
