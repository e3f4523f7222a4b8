// Package dialog provides confirmation presenters: an interactive
// terminal prompt plus scripted presenters for automation and tests.
package dialog

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/bnema/featgate/internal/application/port"
)

// Terminal asks for confirmation with an interactive huh form.
type Terminal struct{}

// Confirm renders the prompt and blocks until the user answers.
// Aborting the form (esc, ctrl-c) counts as a refusal, not an error.
func (Terminal) Confirm(ctx context.Context, req port.ConfirmationRequest) (port.ConfirmationResult, error) {
	affirmative := req.ConfirmLabel
	if affirmative == "" {
		affirmative = "Allow"
	}
	negative := req.CancelLabel
	if negative == "" {
		negative = "Deny"
	}

	description := req.Message
	if req.Detail != "" {
		description = strings.TrimSpace(description + "\n\n" + req.Detail)
	}

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(req.Title).
			Description(description).
			Affirmative(affirmative).
			Negative(negative).
			Value(&confirmed),
	))

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return port.ConfirmationResult{Confirmed: false}, nil
		}
		return port.ConfirmationResult{}, err
	}
	return port.ConfirmationResult{Confirmed: confirmed}, nil
}
