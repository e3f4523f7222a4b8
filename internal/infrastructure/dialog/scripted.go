package dialog

import (
	"context"

	"github.com/bnema/featgate/internal/application/port"
)

// AllowAll confirms every request without prompting. Useful for
// non-interactive runs and tests.
type AllowAll struct{}

func (AllowAll) Confirm(_ context.Context, _ port.ConfirmationRequest) (port.ConfirmationResult, error) {
	return port.ConfirmationResult{Confirmed: true}, nil
}

// DenyAll refuses every request without prompting.
type DenyAll struct{}

func (DenyAll) Confirm(_ context.Context, _ port.ConfirmationRequest) (port.ConfirmationResult, error) {
	return port.ConfirmationResult{Confirmed: false}, nil
}
