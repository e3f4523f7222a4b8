// Package entity defines the domain model for consent-gated extension features.
package entity

import "errors"

// ErrUnknownFeature is returned by write paths when the feature id is not
// registered in the catalog. Read paths report defaults instead of erroring.
var ErrUnknownFeature = errors.New("unknown feature")
