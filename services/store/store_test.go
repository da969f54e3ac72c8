package store

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"vodsync/models"
)

func makeItems(n int) []models.CatalogItem {
	items := make([]models.CatalogItem, n)
	for i := range items {
		items[i] = models.CatalogItem{
			ID:       fmt.Sprintf("id-%d", i),
			Name:     fmt.Sprintf("Movie %d", i),
			URL:      fmt.Sprintf("http://cdn.example/%d.mp4", i),
			Category: "Ação",
			Type:     models.ItemTypeMovie,
		}
	}
	return items
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	items := makeItems(123)
	require.NoError(t, s.WriteCategory("acao", items))

	got, err := s.ReadCategory("acao")
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestShardAccounting(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	tests := []struct {
		items     int
		wantParts int
	}{
		{items: 0, wantParts: 1},
		{items: 1, wantParts: 1},
		{items: 50, wantParts: 1},
		{items: 51, wantParts: 2},
		{items: 123, wantParts: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.items), func(t *testing.T) {
			require.NoError(t, s.WriteCategory("drama", makeItems(tt.items)))

			manifest, err := s.ReadManifest()
			require.NoError(t, err)
			entry := manifest["drama"]
			require.Equal(t, tt.wantParts, entry.TotalParts)
			require.Equal(t, tt.items, entry.TotalItems)

			// Every referenced shard exists and their lengths sum to TotalItems.
			total := 0
			for part := 1; part <= entry.TotalParts; part++ {
				data, err := afero.ReadFile(fs, s.shardPath("drama", part))
				require.NoError(t, err)
				var shard []models.CatalogItem
				require.NoError(t, json.Unmarshal(data, &shard))
				require.LessOrEqual(t, len(shard), ItemsPerShard)
				total += len(shard)
			}
			require.Equal(t, tt.items, total)
		})
	}
}

func TestShrinkDeletesStaleShards(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	require.NoError(t, s.WriteCategory("terror", makeItems(130)))
	require.NoError(t, s.WriteCategory("terror", makeItems(10)))

	for part := 2; part <= 3; part++ {
		exists, err := afero.Exists(fs, s.shardPath("terror", part))
		require.NoError(t, err)
		require.False(t, exists, "shard p%d should have been deleted", part)
	}

	got, err := s.ReadCategory("terror")
	require.NoError(t, err)
	require.Len(t, got, 10)
}

func TestReadCategoryMissingShardTolerated(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	require.NoError(t, s.WriteCategory("terror", makeItems(120)))
	require.NoError(t, fs.Remove(s.shardPath("terror", 2)))

	got, err := s.ReadCategory("terror")
	require.NoError(t, err)
	require.Len(t, got, 70, "remaining shards should still be returned")
}

func TestReadCategoryCorruptShardTolerated(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	require.NoError(t, s.WriteCategory("comedia", makeItems(60)))
	require.NoError(t, afero.WriteFile(fs, s.shardPath("comedia", 1), []byte("{not json"), 0o644))

	got, err := s.ReadCategory("comedia")
	require.NoError(t, err)
	require.Len(t, got, 10)
}

func TestReadUnknownCategory(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "catalog")

	got, err := s.ReadCategory("nope")
	require.NoError(t, err)
	require.Empty(t, got)
}
