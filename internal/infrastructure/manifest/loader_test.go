package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/featgate/internal/domain/entity"
	"github.com/bnema/featgate/internal/infrastructure/manifest"
)

func TestLoader_ValidManifest(t *testing.T) {
	loader, err := manifest.NewLoader()
	require.NoError(t, err)

	features, err := loader.Load("test.json", []byte(`{
		"features": [
			{"id": "lm.tools", "label": "Language Model Tools", "description": "Invoke tools."},
			{"id": "terminal.shell", "label": "Shell Integration"}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, entity.Feature{ID: "lm.tools", Label: "Language Model Tools", Description: "Invoke tools."}, features[0])
	assert.Equal(t, entity.Feature{ID: "terminal.shell", Label: "Shell Integration"}, features[1])
}

func TestLoader_RejectsInvalidManifests(t *testing.T) {
	loader, err := manifest.NewLoader()
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{broken`},
		{name: "missing features", raw: `{}`},
		{name: "missing id", raw: `{"features":[{"label":"X"}]}`},
		{name: "missing label", raw: `{"features":[{"id":"x"}]}`},
		{name: "empty id", raw: `{"features":[{"id":"","label":"X"}]}`},
		{name: "unknown field", raw: `{"features":[{"id":"x","label":"X","extra":true}]}`},
		{name: "top-level extra", raw: `{"features":[],"extra":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(tt.name, []byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadDirs_BuildsCatalog(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.json", `{"features":[{"id":"lm.tools","label":"Tools"}]}`)
	writeManifest(t, dir, "b.json", `{"features":[{"id":"terminal.shell","label":"Shell"}]}`)

	catalog, err := manifest.LoadDirs(context.Background(), []string{dir, filepath.Join(dir, "missing")})
	require.NoError(t, err)

	require.NotNil(t, catalog.Feature("lm.tools"))
	require.NotNil(t, catalog.Feature("terminal.shell"))
	assert.Nil(t, catalog.Feature("nope"))
	assert.Len(t, catalog.Features(), 2)
}

func TestLoadDirs_DuplicateKeepsLast(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.json", `{"features":[{"id":"lm.tools","label":"First"}]}`)
	writeManifest(t, dir, "b.json", `{"features":[{"id":"lm.tools","label":"Second"}]}`)

	catalog, err := manifest.LoadDirs(context.Background(), []string{dir})
	require.NoError(t, err)

	f := catalog.Feature("lm.tools")
	require.NotNil(t, f)
	assert.Equal(t, "Second", f.Label)
	assert.Len(t, catalog.Features(), 1)
}

func TestLoadDirs_InvalidManifestFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.json", `{"features":[{"label":"no id"}]}`)

	_, err := manifest.LoadDirs(context.Background(), []string{dir})
	require.Error(t, err)
}

func TestCatalog_FeaturesSorted(t *testing.T) {
	catalog := manifest.NewCatalog(
		entity.Feature{ID: "b", Label: "B"},
		entity.Feature{ID: "a", Label: "A"},
	)

	features := catalog.Features()
	require.Len(t, features, 2)
	assert.Equal(t, "a", features[0].ID)
	assert.Equal(t, "b", features[1].ID)
}

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
