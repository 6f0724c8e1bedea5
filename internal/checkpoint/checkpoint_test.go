package checkpoint

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aymanedev/tiktok-shop-scraper/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	return NewStore(path, slog.Default())
}

func TestSaveAndLoad(t *testing.T) {
	store := testStore(t)

	reviews := []models.Review{
		{
			ProductURL:   "https://shop.tiktok.com/vn/product/1",
			ReviewerName: "alice",
			ReviewText:   "wonderful texture and scent",
			ReviewID:     "abc123def456",
			Market:       "vn",
			ScrapedAt:    time.Now(),
		},
	}

	require.NoError(t, store.Save("run-1", reviews))

	loaded := store.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, "alice", loaded[0].ReviewerName)
	assert.Equal(t, "abc123def456", loaded[0].ReviewID)
}

func TestLoadMissingFile(t *testing.T) {
	store := testStore(t)
	assert.Nil(t, store.Load())
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	store := NewStore(path, slog.Default())
	assert.Nil(t, store.Load())
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Save("run-1", []models.Review{{ReviewID: "a"}}))
	require.NoError(t, store.Save("run-1", []models.Review{{ReviewID: "a"}, {ReviewID: "b"}}))

	loaded := store.Load()
	assert.Len(t, loaded, 2)

	// No temp file left behind.
	_, err := os.Stat(store.path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
