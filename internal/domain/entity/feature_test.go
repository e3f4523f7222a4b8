package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/featgate/internal/domain/entity"
)

func TestFeatureState_Enabled(t *testing.T) {
	disabled := true
	enabled := false

	tests := []struct {
		name    string
		state   *entity.FeatureState
		enabled bool
		decided bool
	}{
		{name: "nil state", state: nil, enabled: true, decided: false},
		{name: "undecided", state: &entity.FeatureState{}, enabled: true, decided: false},
		{name: "disabled", state: &entity.FeatureState{Disabled: &disabled}, enabled: false, decided: true},
		{name: "explicitly enabled", state: &entity.FeatureState{Disabled: &enabled}, enabled: true, decided: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, tt.state.Enabled())
			assert.Equal(t, tt.decided, tt.state.Decided())
		})
	}
}

func TestAccessData_CloneIsDeep(t *testing.T) {
	now := time.Now()
	original := entity.AccessData{
		TotalCount: 3,
		Current: &entity.SessionAccess{
			Count:        2,
			LastAccessed: now,
			Status:       &entity.AccessStatus{Severity: entity.SeverityWarning, Message: "slow"},
		},
	}

	clone := original.Clone()
	clone.Current.Count = 99
	clone.Current.Status.Message = "changed"

	assert.Equal(t, 2, original.Current.Count)
	assert.Equal(t, "slow", original.Current.Status.Message)
	assert.Equal(t, now, clone.Current.LastAccessed)
}

func TestAccessData_CloneWithoutSession(t *testing.T) {
	clone := entity.AccessData{TotalCount: 1}.Clone()
	assert.Equal(t, 1, clone.TotalCount)
	assert.Nil(t, clone.Current)
}
