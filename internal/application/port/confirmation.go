// Package port defines the interfaces the application layer requires
// from its collaborators. Implementations live in infrastructure.
package port

import "context"

// ConfirmationRequest carries everything a presenter needs to ask the
// user whether an extension may use a feature.
type ConfirmationRequest struct {
	Title   string
	Message string
	Detail  string

	// Button labels. Presenters fall back to their own defaults when empty.
	ConfirmLabel string
	CancelLabel  string
}

// ConfirmationResult is the user's answer. Dismissing the prompt without
// answering reports Confirmed=false.
type ConfirmationResult struct {
	Confirmed bool
}

// ConfirmationPresenter surfaces a confirmation prompt to the user.
// Confirm blocks until the user answers or ctx is done; it is the only
// collaborator call that may suspend.
type ConfirmationPresenter interface {
	Confirm(ctx context.Context, req ConfirmationRequest) (ConfirmationResult, error)
}
