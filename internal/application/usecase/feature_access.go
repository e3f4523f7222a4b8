// Package usecase contains application use cases that orchestrate domain logic.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bnema/featgate/internal/application/port"
	"github.com/bnema/featgate/internal/domain/entity"
	"github.com/bnema/featgate/internal/domain/repository"
	"github.com/bnema/featgate/internal/event"
	"github.com/bnema/featgate/internal/logging"
)

// StateStorageKey is the single profile-store key holding the persisted
// feature access state as a JSON document.
const StateStorageKey = "extension.features.state"

// EnablementChange reports that the effective enablement of a pair changed.
type EnablementChange struct {
	ExtensionID string
	FeatureID   string
	Enabled     bool
}

// AccessDataChange reports that the access data of a pair changed.
type AccessDataChange struct {
	ExtensionID string
	FeatureID   string
	AccessData  entity.AccessData
}

// ExtensionEnablement is one row of EnablementData: an extension that
// holds an explicit decision for a feature.
type ExtensionEnablement struct {
	ExtensionID string
	Enabled     bool
}

// Wire format of the persisted state. Only the decision and the lifetime
// count survive a reload; session data is rebuilt empty.
type storedFeatureState struct {
	Disabled    *bool `json:"disabled,omitempty"`
	AccessCount int   `json:"accessCount"`
}

// FeatureAccessRegistry tracks, per (extension, feature) pair, whether
// the feature is enabled and how often it was accessed, gates first
// access behind a user confirmation, and persists the durable subset to
// a profile-scoped key-value store.
//
// All collaborators are injected; the registry holds no global state.
type FeatureAccessRegistry struct {
	store   repository.ProfileStore
	catalog port.FeatureCatalog

	dialog   port.ConfirmationPresenter
	dialogMu sync.RWMutex

	mu     sync.RWMutex
	states map[entity.PairKey]*entity.FeatureState

	enablementChanged event.Emitter[EnablementChange]
	accessDataChanged event.Emitter[AccessDataChange]

	stopWatch func()
	closeOnce sync.Once
}

// NewFeatureAccessRegistry loads the persisted state and, when the store
// supports it, starts watching for out-of-process changes to the state
// key. Close releases the watch.
func NewFeatureAccessRegistry(
	ctx context.Context,
	store repository.ProfileStore,
	catalog port.FeatureCatalog,
	dialog port.ConfirmationPresenter,
) (*FeatureAccessRegistry, error) {
	raw, ok, err := store.Get(ctx, StateStorageKey)
	if err != nil {
		return nil, fmt.Errorf("load feature access state: %w", err)
	}
	if !ok {
		raw = ""
	}

	r := &FeatureAccessRegistry{
		store:   store,
		catalog: catalog,
		dialog:  dialog,
		states:  decodeStates(ctx, raw),
	}

	if w, watchable := store.(repository.Watcher); watchable {
		stop, err := w.Watch(ctx, StateStorageKey, func() {
			if rerr := r.Reload(ctx); rerr != nil {
				logging.FromContext(ctx).Warn().Err(rerr).Msg("reload after external state change failed")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("watch feature access state: %w", err)
		}
		r.stopWatch = stop
	}

	return r, nil
}

// SetPresenter swaps the confirmation presenter. This can be called
// after construction when the interactive surface becomes available.
func (r *FeatureAccessRegistry) SetPresenter(dialog port.ConfirmationPresenter) {
	r.dialogMu.Lock()
	defer r.dialogMu.Unlock()
	r.dialog = dialog
}

// getDialog safely returns the current presenter.
func (r *FeatureAccessRegistry) getDialog() port.ConfirmationPresenter {
	r.dialogMu.RLock()
	defer r.dialogMu.RUnlock()
	return r.dialog
}

// Close stops observing the underlying store. Idempotent.
func (r *FeatureAccessRegistry) Close() {
	r.closeOnce.Do(func() {
		if r.stopWatch != nil {
			r.stopWatch()
		}
	})
}

// OnEnablementChanged registers a handler for enablement changes.
func (r *FeatureAccessRegistry) OnEnablementChanged(fn func(EnablementChange)) *event.Subscription {
	return r.enablementChanged.Subscribe(fn)
}

// OnAccessDataChanged registers a handler for access data changes.
func (r *FeatureAccessRegistry) OnAccessDataChanged(fn func(AccessDataChange)) *event.Subscription {
	return r.accessDataChanged.Subscribe(fn)
}

// IsEnabled reports whether extensionID may use featureID. Unknown
// features read as disabled; undecided pairs read as enabled.
func (r *FeatureAccessRegistry) IsEnabled(extensionID, featureID string) bool {
	if r.catalog.Feature(featureID) == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[entity.PairKey{ExtensionID: extensionID, FeatureID: featureID}].Enabled()
}

// SetEnablement records an explicit enable/disable decision for the
// pair. It fails for unregistered features. When the effective value
// actually changes the new state is persisted and an enablement event
// fires; repeating the current value is a no-op.
func (r *FeatureAccessRegistry) SetEnablement(ctx context.Context, extensionID, featureID string, enabled bool) error {
	if r.catalog.Feature(featureID) == nil {
		return fmt.Errorf("set enablement of %q for %q: %w", featureID, extensionID, entity.ErrUnknownFeature)
	}

	disabled := !enabled

	r.mu.Lock()
	st := r.ensureStateLocked(entity.PairKey{ExtensionID: extensionID, FeatureID: featureID})
	changed := st.Disabled == nil || *st.Disabled != disabled
	var persistErr error
	if changed {
		st.Disabled = &disabled
		persistErr = r.persistLocked(ctx)
	}
	r.mu.Unlock()

	if changed {
		logging.FromContext(ctx).Debug().
			Str("extension_id", extensionID).
			Str("feature_id", featureID).
			Bool("enabled", enabled).
			Msg("feature enablement changed")
		r.enablementChanged.Emit(EnablementChange{
			ExtensionID: extensionID,
			FeatureID:   featureID,
			Enabled:     enabled,
		})
	}
	if persistErr != nil {
		return fmt.Errorf("persist enablement of %q for %q: %w", featureID, extensionID, persistErr)
	}
	return nil
}

// EnablementData lists the extensions holding an explicit decision for
// featureID, sorted by extension id. Undecided pairs are skipped; an
// unregistered feature yields nil.
func (r *FeatureAccessRegistry) EnablementData(featureID string) []ExtensionEnablement {
	if r.catalog.Feature(featureID) == nil {
		return nil
	}

	r.mu.RLock()
	var out []ExtensionEnablement
	for key, st := range r.states {
		if key.FeatureID != featureID || !st.Decided() {
			continue
		}
		out = append(out, ExtensionEnablement{ExtensionID: key.ExtensionID, Enabled: st.Enabled()})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ExtensionID < out[j].ExtensionID })
	return out
}

// GetAccess is the gating operation. It returns false for unregistered
// features and explicitly disabled pairs. A never-decided pair suspends
// on the confirmation presenter: allowing enables the pair, disallowing
// (including dismissal) disables it without counting an access. On every
// granted access the session count and lifetime total increment, the
// access timestamp updates, the state persists and an access data event
// fires.
func (r *FeatureAccessRegistry) GetAccess(ctx context.Context, ext entity.Extension, featureID string) bool {
	log := logging.FromContext(ctx)

	feature := r.catalog.Feature(featureID)
	if feature == nil {
		log.Debug().Str("feature_id", featureID).Msg("access to unregistered feature denied")
		return false
	}

	key := entity.PairKey{ExtensionID: ext.ID, FeatureID: featureID}

	r.mu.RLock()
	st := r.states[key]
	decided := st.Decided()
	enabled := st.Enabled()
	r.mu.RUnlock()

	if decided && !enabled {
		return false
	}

	if !decided {
		dialog := r.getDialog()
		if dialog == nil {
			log.Warn().
				Str("extension_id", ext.ID).
				Str("feature_id", featureID).
				Msg("no confirmation presenter available, denying feature access")
			return false
		}
		res, err := dialog.Confirm(ctx, confirmationRequest(ext, feature))
		if err != nil {
			// Leave the pair undecided so the user is asked again next time.
			log.Warn().Err(err).
				Str("extension_id", ext.ID).
				Str("feature_id", featureID).
				Msg("feature access confirmation failed")
			return false
		}
		if !res.Confirmed {
			if serr := r.SetEnablement(ctx, ext.ID, featureID, false); serr != nil {
				log.Warn().Err(serr).Msg("record disallowed feature access")
			}
			return false
		}
		if serr := r.SetEnablement(ctx, ext.ID, featureID, true); serr != nil {
			log.Warn().Err(serr).Msg("record allowed feature access")
		}
	}

	r.mu.Lock()
	st = r.ensureStateLocked(key)
	if !st.Enabled() {
		// The decision flipped while we were waiting on the prompt.
		r.mu.Unlock()
		return false
	}
	cur := st.AccessData.Current
	if cur == nil {
		cur = &entity.SessionAccess{}
		st.AccessData.Current = cur
	}
	cur.Count++
	cur.LastAccessed = time.Now()
	st.AccessData.TotalCount++
	data := st.AccessData.Clone()
	persistErr := r.persistLocked(ctx)
	r.mu.Unlock()

	if persistErr != nil {
		log.Warn().Err(persistErr).
			Str("extension_id", ext.ID).
			Str("feature_id", featureID).
			Msg("persist feature access state failed")
	}

	r.accessDataChanged.Emit(AccessDataChange{
		ExtensionID: ext.ID,
		FeatureID:   featureID,
		AccessData:  data,
	})
	return true
}

// AccessData returns a copy of the pair's access data, or nil for an
// unregistered feature or a pair without state.
func (r *FeatureAccessRegistry) AccessData(extensionID, featureID string) *entity.AccessData {
	if r.catalog.Feature(featureID) == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	st := r.states[entity.PairKey{ExtensionID: extensionID, FeatureID: featureID}]
	if st == nil {
		return nil
	}
	data := st.AccessData.Clone()
	return &data
}

// SetStatus updates only the current session status of the pair,
// preserving counts and timestamps, and fires exactly one access data
// event. A nil status clears it. Status is session-scoped: the persisted
// form carries only the disabled flag and lifetime count, so nothing is
// written to the store.
func (r *FeatureAccessRegistry) SetStatus(ctx context.Context, extensionID, featureID string, status *entity.AccessStatus) error {
	if r.catalog.Feature(featureID) == nil {
		return fmt.Errorf("set status of %q for %q: %w", featureID, extensionID, entity.ErrUnknownFeature)
	}

	r.mu.Lock()
	st := r.ensureStateLocked(entity.PairKey{ExtensionID: extensionID, FeatureID: featureID})
	if st.AccessData.Current == nil {
		st.AccessData.Current = &entity.SessionAccess{}
	}
	st.AccessData.Current.Status = status
	data := st.AccessData.Clone()
	r.mu.Unlock()

	r.accessDataChanged.Emit(AccessDataChange{
		ExtensionID: extensionID,
		FeatureID:   featureID,
		AccessData:  data,
	})
	return nil
}

// Reload replaces the in-memory state wholesale with whatever the store
// currently holds and re-emits events for every pair whose effective
// enablement or lifetime total differs. Session data does not survive:
// last writer wins at the granularity of the whole map.
func (r *FeatureAccessRegistry) Reload(ctx context.Context) error {
	raw, ok, err := r.store.Get(ctx, StateStorageKey)
	if err != nil {
		return fmt.Errorf("reload feature access state: %w", err)
	}
	if !ok {
		raw = ""
	}
	fresh := decodeStates(ctx, raw)

	r.mu.Lock()
	old := r.states
	r.states = fresh

	keys := make(map[entity.PairKey]struct{}, len(old)+len(fresh))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range fresh {
		keys[k] = struct{}{}
	}

	var enablementEvents []EnablementChange
	var accessEvents []AccessDataChange
	for k := range keys {
		before, after := old[k], fresh[k]
		if before.Enabled() != after.Enabled() {
			enablementEvents = append(enablementEvents, EnablementChange{
				ExtensionID: k.ExtensionID,
				FeatureID:   k.FeatureID,
				Enabled:     after.Enabled(),
			})
		}
		beforeTotal, afterTotal := 0, 0
		if before != nil {
			beforeTotal = before.AccessData.TotalCount
		}
		if after != nil {
			afterTotal = after.AccessData.TotalCount
		}
		if beforeTotal != afterTotal {
			var data entity.AccessData
			if after != nil {
				data = after.AccessData.Clone()
			}
			accessEvents = append(accessEvents, AccessDataChange{
				ExtensionID: k.ExtensionID,
				FeatureID:   k.FeatureID,
				AccessData:  data,
			})
		}
	}
	r.mu.Unlock()

	logging.FromContext(ctx).Debug().
		Int("enablement_changes", len(enablementEvents)).
		Int("access_changes", len(accessEvents)).
		Msg("feature access state reloaded")

	for _, ev := range enablementEvents {
		r.enablementChanged.Emit(ev)
	}
	for _, ev := range accessEvents {
		r.accessDataChanged.Emit(ev)
	}
	return nil
}

// ensureStateLocked lazily creates the state record for key.
// Caller holds the write lock.
func (r *FeatureAccessRegistry) ensureStateLocked(key entity.PairKey) *entity.FeatureState {
	st := r.states[key]
	if st == nil {
		st = &entity.FeatureState{}
		r.states[key] = st
	}
	return st
}

// persistLocked writes the durable subset of the state map to the store.
// Caller holds the write lock.
func (r *FeatureAccessRegistry) persistLocked(ctx context.Context) error {
	wire := make(map[string]map[string]storedFeatureState)
	for key, st := range r.states {
		features := wire[key.ExtensionID]
		if features == nil {
			features = make(map[string]storedFeatureState)
			wire[key.ExtensionID] = features
		}
		features[key.FeatureID] = storedFeatureState{
			Disabled:    st.Disabled,
			AccessCount: st.AccessData.TotalCount,
		}
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, StateStorageKey, string(raw))
}

// decodeStates parses the persisted JSON document into the composite-key
// state map. Malformed input loads as empty state.
func decodeStates(ctx context.Context, raw string) map[entity.PairKey]*entity.FeatureState {
	states := make(map[entity.PairKey]*entity.FeatureState)
	if raw == "" {
		return states
	}

	var wire map[string]map[string]storedFeatureState
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("discarding malformed feature access state")
		return states
	}

	for extensionID, features := range wire {
		for featureID, stored := range features {
			states[entity.PairKey{ExtensionID: extensionID, FeatureID: featureID}] = &entity.FeatureState{
				Disabled:   stored.Disabled,
				AccessData: entity.AccessData{TotalCount: stored.AccessCount},
			}
		}
	}
	return states
}

// confirmationRequest builds the prompt shown before a first access.
func confirmationRequest(ext entity.Extension, feature *entity.Feature) port.ConfirmationRequest {
	name := ext.DisplayName
	if name == "" {
		name = ext.ID
	}
	return port.ConfirmationRequest{
		Title:        fmt.Sprintf("Allow %q?", feature.Label),
		Message:      fmt.Sprintf("%s wants to use %s.", name, feature.Label),
		Detail:       feature.Description,
		ConfirmLabel: "Allow",
		CancelLabel:  "Don't Allow",
	}
}
