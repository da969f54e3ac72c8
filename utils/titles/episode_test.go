package titles

import "testing"

func TestParseEpisode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EpisodeRef
		matched bool
	}{
		{
			name:    "compact marker",
			input:   "Example Show S01E02",
			want:    EpisodeRef{BaseName: "Example Show", Season: 1, Episode: 2},
			matched: true,
		},
		{
			name:    "separated marker",
			input:   "Example Show S01 E02",
			want:    EpisodeRef{BaseName: "Example Show", Season: 1, Episode: 2},
			matched: true,
		},
		{
			name:    "dot separated filename style",
			input:   "Dark.Matter.S02E05",
			want:    EpisodeRef{BaseName: "Dark.Matter", Season: 2, Episode: 5},
			matched: true,
		},
		{
			name:    "restated filename after season marker",
			input:   "Breaking Bad S05 Breaking.Bad.S05E07.1080p",
			want:    EpisodeRef{BaseName: "Breaking Bad", Season: 5, Episode: 7},
			matched: true,
		},
		{
			name:    "trailing decoration after marker",
			input:   "The Boys S03E08 720p LEG",
			want:    EpisodeRef{BaseName: "The Boys", Season: 3, Episode: 8},
			matched: true,
		},
		{
			name:    "bare trailing episode number",
			input:   "Chaves S2 14",
			want:    EpisodeRef{BaseName: "Chaves", Season: 2, Episode: 14},
			matched: true,
		},
		{
			name:    "bracket decoration stripped from base",
			input:   "Lost (2004) S04E01",
			want:    EpisodeRef{BaseName: "Lost", Season: 4, Episode: 1},
			matched: true,
		},
		{
			name:    "plain movie title",
			input:   "Cidade de Deus",
			matched: false,
		},
		{
			name:    "movie ending in digits is not an episode",
			input:   "Apollo 13",
			matched: false,
		},
		{
			name:    "movie ending in year is not an episode",
			input:   "Blade Runner 2049",
			matched: false,
		},
		{
			name:    "empty title",
			input:   "",
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEpisode(tt.input)
			if ok != tt.matched {
				t.Fatalf("ParseEpisode(%q) matched=%v, want %v", tt.input, ok, tt.matched)
			}
			if !tt.matched {
				return
			}
			if got != tt.want {
				t.Errorf("ParseEpisode(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
