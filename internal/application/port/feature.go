package port

import "github.com/bnema/featgate/internal/domain/entity"

// FeatureCatalog resolves registered features. Registration happens
// outside the access registry (manifest loading, tests); the registry
// only ever reads.
type FeatureCatalog interface {
	// Feature returns the declaration for id, or nil if unregistered.
	Feature(id string) *entity.Feature

	// Features lists all registered features.
	Features() []entity.Feature
}
