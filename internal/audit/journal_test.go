package audit

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.Append(Entry{Action: ActionCreate, ListingID: 1, ActorID: 10, Timestamp: at}))
	require.NoError(t, j.Append(Entry{Action: ActionUpdate, ListingID: 1, ActorID: 10}))
	require.NoError(t, j.Append(Entry{Action: ActionDelete, ListingID: 1, ActorID: 99}))

	entries, err := j.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, ActionCreate, entries[0].Action)
	assert.True(t, at.Equal(entries[0].Timestamp))
	assert.False(t, entries[1].Timestamp.IsZero())
	assert.Equal(t, uint64(99), entries[2].ActorID)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Entry{Action: ActionCreate, ListingID: 5, ActorID: 1}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.Append(Entry{Action: ActionDelete, ListingID: 5, ActorID: 1}))

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJournal_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"action\":\"create\",\"listing_id\":3}\n"), 0644))

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(3), entries[0].ListingID)
}

func TestJournal_ConcurrentAppends(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, err)
	defer j.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			assert.NoError(t, j.Append(Entry{Action: ActionCreate, ListingID: id, ActorID: 1}))
		}(uint64(i))
	}
	wg.Wait()

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
