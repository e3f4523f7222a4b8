// Package manifest loads declarative feature manifests and builds the
// feature catalog from them. Manifests are JSON documents validated
// against an embedded schema before any feature is registered.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bnema/featgate/internal/domain/entity"
	"github.com/bnema/featgate/internal/logging"
)

const schemaURL = "featgate://features.schema.json"

// featuresSchema constrains manifest documents: a features array whose
// entries carry a non-empty id and label plus an optional description.
const featuresSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["features"],
  "additionalProperties": false,
  "properties": {
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "label"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "label": {"type": "string", "minLength": 1},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

type manifestDocument struct {
	Features []manifestFeature `json:"features"`
}

type manifestFeature struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Loader validates and parses feature manifest files.
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader compiles the embedded manifest schema.
func NewLoader() (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(featuresSchema)); err != nil {
		return nil, fmt.Errorf("add manifest schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	return &Loader{schema: schema}, nil
}

// LoadFile validates one manifest file and returns its features.
func (l *Loader) LoadFile(path string) ([]entity.Feature, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return l.Load(path, raw)
}

// Load validates raw manifest bytes; name is used in error messages.
func (l *Loader) Load(name string, raw []byte) ([]entity.Feature, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", name, err)
	}

	var parsed manifestDocument
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}

	features := make([]entity.Feature, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		features = append(features, entity.Feature{
			ID:          f.ID,
			Label:       f.Label,
			Description: f.Description,
		})
	}
	return features, nil
}

// LoadDirs builds a catalog from every *.json manifest under the given
// directories. Missing directories are skipped; invalid manifests fail
// the whole load. Duplicate feature ids keep the last declaration, with
// a warning.
func LoadDirs(ctx context.Context, dirs []string) (*Catalog, error) {
	log := logging.FromContext(ctx)

	loader, err := NewLoader()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string) // feature id -> declaring file
	var all []entity.Feature
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read manifest directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
				continue
			}
			path := filepath.Join(dir, e.Name())
			features, err := loader.LoadFile(path)
			if err != nil {
				return nil, err
			}
			for _, f := range features {
				if prev, dup := seen[f.ID]; dup {
					log.Warn().
						Str("feature_id", f.ID).
						Str("declared_in", prev).
						Str("redeclared_in", path).
						Msg("duplicate feature declaration, keeping the later one")
				}
				seen[f.ID] = path
				all = append(all, f)
			}
		}
	}

	log.Debug().Int("features", len(seen)).Msg("feature manifests loaded")
	return NewCatalog(all...), nil
}
