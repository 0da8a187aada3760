package datastore_test

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebq/dumbauth/internal/datastore"
	"github.com/andrebq/dumbauth/internal/testutil"
)

func testData(t *testing.T) datastore.SessionData {
	data := datastore.SessionData{Created: time.Now().Truncate(time.Second)}
	_, err := rand.Read(data.Secret[:])
	require.NoError(t, err)
	return data
}

// The contract every backend must honor: create returns a usable id,
// reads see exactly what was written, absent ids read as nil, deletes
// report existence and ids are never reissued.
func testContract(t *testing.T, store datastore.Datastore) {
	ctx := context.Background()

	first := testData(t)
	firstID, err := store.CreateSession(ctx, first)
	require.NoError(t, err)

	second := testData(t)
	secondID, err := store.CreateSession(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	got, err := store.ReadSession(ctx, firstID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.Secret, got.Secret)
	assert.Equal(t, first.Created.Unix(), got.Created.Unix())

	missing, err := store.ReadSession(ctx, firstID+secondID+12345)
	require.NoError(t, err)
	assert.Nil(t, missing)

	existed, err := store.DeleteSession(ctx, firstID)
	require.NoError(t, err)
	assert.True(t, existed)

	gone, err := store.ReadSession(ctx, firstID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	existed, err = store.DeleteSession(ctx, firstID)
	require.NoError(t, err)
	assert.False(t, existed)

	thirdID, err := store.CreateSession(ctx, testData(t))
	require.NoError(t, err)
	assert.NotEqual(t, firstID, thirdID)
	assert.NotEqual(t, secondID, thirdID)
}

func TestMemoryContract(t *testing.T) {
	store := datastore.NewMemory()
	defer store.Close()
	testContract(t, store)
}

func TestBoltContract(t *testing.T) {
	modes := []struct {
		name  string
		read  datastore.ReadMode
		write datastore.WriteMode
	}{
		{"sync-sync", datastore.ReadSync, datastore.WriteSync},
		{"sync-async", datastore.ReadSync, datastore.WriteAsync},
		{"sync-thread", datastore.ReadSync, datastore.WriteThread},
		{"async-sync", datastore.ReadAsync, datastore.WriteSync},
		{"async-async", datastore.ReadAsync, datastore.WriteAsync},
		{"async-thread", datastore.ReadAsync, datastore.WriteThread},
	}
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			store, cleanup := testutil.AcquireBolt(t, mode.read, mode.write)
			defer cleanup()
			testContract(t, store)
		})
	}
}

func TestSqliteContract(t *testing.T) {
	store, cleanup := testutil.AcquireSqlite(context.Background(), t)
	defer cleanup()
	testContract(t, store)
}

func TestRedisContract(t *testing.T) {
	store, cleanup := testutil.AcquireRedis(context.Background(), t)
	defer cleanup()
	testContract(t, store)
}

func TestMemoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := datastore.NewMemory()
	defer store.Close()

	const workers = 16
	const perWorker = 50
	ids := make(chan datastore.SessionID, workers*perWorker)
	done := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < perWorker; j++ {
				id, err := store.CreateSession(ctx, datastore.SessionData{Created: time.Now()})
				if err != nil {
					t.Error(err)
					return
				}
				ids <- id
			}
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}
	close(ids)

	seen := make(map[datastore.SessionID]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %v issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()

	store, err := datastore.Open(ctx, "", datastore.Options{})
	require.NoError(t, err)
	defer store.Close()
	_, ok := store.(*datastore.Memory)
	assert.True(t, ok)

	dir := t.TempDir()
	store, err = datastore.Open(ctx, dir+"/sessions.db", datastore.Options{})
	require.NoError(t, err)
	defer store.Close()
	_, ok = store.(*datastore.Bolt)
	assert.True(t, ok)

	store, err = datastore.Open(ctx, "sqlite://"+dir+"/sessions.sqlite", datastore.Options{})
	require.NoError(t, err)
	defer store.Close()
	_, ok = store.(*datastore.Sqlite)
	assert.True(t, ok)
}
