package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/model"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "recents.db"))
	require.NoError(t, err)
	defer store.Close()

	saved := []convindex.Conversation{
		{
			Key:        model.DirectKey([]int64{3, 4}),
			Recipients: []int64{3, 4},
			LatestID:   80,
			Timestamp:  time.Unix(1700000080, 0).UTC(),
			SenderID:   3,
			Preview:    "see you there",
			HasPreview: true,
		},
		{
			Key:      model.TopicKey(1, "Design Review"),
			Topic:    "Design Review",
			LatestID: 50,
			// head deleted before shutdown: no preview metadata
		},
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, saved[0], loaded[0])
	assert.Equal(t, saved[1].Key, loaded[1].Key)
	assert.Equal(t, "Design Review", loaded[1].Topic)
	assert.False(t, loaded[1].HasPreview)
}

func TestSaveReplacesPrevious(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "recents.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save([]convindex.Conversation{
		{Key: model.TopicKey(1, "old"), Topic: "old", LatestID: 10},
	}))
	require.NoError(t, store.Save([]convindex.Conversation{
		{Key: model.TopicKey(1, "new"), Topic: "new", LatestID: 20},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(20), loaded[0].LatestID)
}

func TestLoadEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "recents.db"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
