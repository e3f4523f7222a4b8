package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/featgate/internal/infrastructure/persistence/jsonfile"
)

func TestStore_GetMissing(t *testing.T) {
	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "profile.json"))

	_, ok, err := store.Get(context.Background(), "some.key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	store := jsonfile.NewStore(path)

	require.NoError(t, store.Set(ctx, "a", `{"x":1}`))
	require.NoError(t, store.Set(ctx, "b", "plain"))
	require.NoError(t, store.Set(ctx, "a", `{"x":2}`))

	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"x":2}`, v)

	// A fresh store over the same file sees the persisted values.
	reopened := jsonfile.NewStore(path)
	v, ok, err = reopened.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "plain", v)
}

func TestStore_CorruptFileReadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	store := jsonfile.NewStore(path)
	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Writing recovers the file.
	require.NoError(t, store.Set(ctx, "a", "v"))
	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestStore_WatchSeesForeignWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "profile.json")
	local := jsonfile.NewStore(path)
	require.NoError(t, local.Set(ctx, "watched", "initial"))

	changed := make(chan struct{}, 8)
	stop, err := local.Watch(ctx, "watched", func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	defer stop()

	// A second store on the same path stands in for another process.
	foreign := jsonfile.NewStore(path)
	require.NoError(t, foreign.Set(ctx, "watched", "updated"))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the foreign write")
	}

	v, ok, err := local.Get(ctx, "watched")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "updated", v)
}

func TestStore_WatchIgnoresOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "profile.json")
	store := jsonfile.NewStore(path)

	changed := make(chan struct{}, 8)
	stop, err := store.Watch(ctx, "watched", func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Set(ctx, "watched", "self"))

	select {
	case <-changed:
		t.Fatal("watcher fired for this process's own write")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestStore_WatchIgnoresOtherKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "profile.json")
	local := jsonfile.NewStore(path)
	require.NoError(t, local.Set(ctx, "watched", "v"))

	changed := make(chan struct{}, 8)
	stop, err := local.Watch(ctx, "watched", func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	defer stop()

	foreign := jsonfile.NewStore(path)
	require.NoError(t, foreign.Set(ctx, "unrelated", "v"))

	select {
	case <-changed:
		t.Fatal("watcher fired for an unrelated key")
	case <-time.After(500 * time.Millisecond):
	}
}
