package entity

import "time"

// Feature is a named, independently toggleable capability an extension
// exposes to the host. Features are declared externally (manifests) and
// looked up by id; this package does not own their registration.
type Feature struct {
	ID          string // Stable identifier, unique across the catalog
	Label       string // Human-readable name shown in confirmation prompts
	Description string // Longer explanation shown as prompt detail
}

// Extension identifies the extension requesting feature access.
type Extension struct {
	ID          string // Stable extension identifier
	DisplayName string // Name shown to the user in confirmation prompts
}

// PairKey identifies the state record for one (extension, feature) pair.
// A single composite key avoids the aliasing pitfalls of nested maps.
type PairKey struct {
	ExtensionID string
	FeatureID   string
}

// StatusSeverity classifies a reported feature status.
type StatusSeverity string

const (
	SeverityInfo    StatusSeverity = "info"
	SeverityWarning StatusSeverity = "warning"
	SeverityError   StatusSeverity = "error"
)

// AccessStatus is the last operational status reported for a pair,
// e.g. a warning raised by the feature's own logic.
type AccessStatus struct {
	Severity StatusSeverity
	Message  string
}

// SessionAccess tracks usage within the current process lifetime.
// None of it survives a reload.
type SessionAccess struct {
	Count        int
	LastAccessed time.Time
	Status       *AccessStatus
}

// AccessData combines the lifetime access total with the current
// session's usage. TotalCount never decreases for a given pair.
type AccessData struct {
	TotalCount int
	Current    *SessionAccess
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (d AccessData) Clone() AccessData {
	out := AccessData{TotalCount: d.TotalCount}
	if d.Current != nil {
		cur := *d.Current
		if d.Current.Status != nil {
			status := *d.Current.Status
			cur.Status = &status
		}
		out.Current = &cur
	}
	return out
}

// FeatureState is the per-pair record. Disabled is nil until a decision
// is recorded, either explicitly or through a confirmation outcome; once
// set it stays non-nil.
type FeatureState struct {
	Disabled   *bool
	AccessData AccessData
}

// Enabled reports the effective enablement. A missing record and an
// undecided record both read as enabled.
func (s *FeatureState) Enabled() bool {
	return s == nil || s.Disabled == nil || !*s.Disabled
}

// Decided reports whether an explicit enable/disable decision exists.
func (s *FeatureState) Decided() bool {
	return s != nil && s.Disabled != nil
}
