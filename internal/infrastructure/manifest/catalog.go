package manifest

import (
	"sort"

	"github.com/bnema/featgate/internal/domain/entity"
)

// Catalog is an in-memory feature catalog. It satisfies the application
// layer's FeatureCatalog port and is immutable once built.
type Catalog struct {
	features map[string]entity.Feature
}

// NewCatalog builds a catalog from the given features. Duplicate ids
// keep the last declaration.
func NewCatalog(features ...entity.Feature) *Catalog {
	c := &Catalog{features: make(map[string]entity.Feature, len(features))}
	for _, f := range features {
		c.features[f.ID] = f
	}
	return c
}

// Feature returns the declaration for id, or nil if unregistered.
func (c *Catalog) Feature(id string) *entity.Feature {
	f, ok := c.features[id]
	if !ok {
		return nil
	}
	return &f
}

// Features lists all registered features sorted by id.
func (c *Catalog) Features() []entity.Feature {
	out := make([]entity.Feature, 0, len(c.features))
	for _, f := range c.features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
