package usecase_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/featgate/internal/application/usecase"
	"github.com/bnema/featgate/internal/infrastructure/dialog"
	"github.com/bnema/featgate/internal/infrastructure/persistence/jsonfile"
)

// Exercises the watchable-store path: a registry over a jsonfile store
// picks up a write made through a separate store on the same file, as
// another window sharing the profile would do.
func TestRegistry_ReloadsOnForeignStoreWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "profile.json")

	reg, err := usecase.NewFeatureAccessRegistry(ctx, jsonfile.NewStore(path), testCatalog(), dialog.AllowAll{})
	require.NoError(t, err)
	defer reg.Close()

	var mu sync.Mutex
	var events []usecase.EnablementChange
	reg.OnEnablementChanged(func(ev usecase.EnablementChange) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	foreign := jsonfile.NewStore(path)
	require.NoError(t, foreign.Set(ctx,
		usecase.StateStorageKey,
		`{"vendor.ext-a":{"lm.tools":{"disabled":true,"accessCount":3}}}`,
	))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, 3*time.Second, 20*time.Millisecond, "registry did not reload after foreign write")

	mu.Lock()
	assert.Equal(t, usecase.EnablementChange{ExtensionID: "vendor.ext-a", FeatureID: "lm.tools", Enabled: false}, events[0])
	mu.Unlock()

	assert.False(t, reg.IsEnabled("vendor.ext-a", "lm.tools"))
	data := reg.AccessData("vendor.ext-a", "lm.tools")
	require.NotNil(t, data)
	assert.Equal(t, 3, data.TotalCount)
}
