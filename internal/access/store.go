package access

import "context"

// Store is the authorization accessor contract.
type Store interface {
	// IsAuthorized reports whether the user is an active recipient.
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
	// AddRecipient upserts an active recipient.
	AddRecipient(ctx context.Context, r Recipient) error
	// ActiveRecipients lists all active recipients.
	ActiveRecipients(ctx context.Context) ([]Recipient, error)
	// Deactivate marks the recipient inactive, or sentinel.ErrNotFound when
	// the user is not an active recipient.
	Deactivate(ctx context.Context, userID int64) error

	// FindPending returns the user's pending request, or sentinel.ErrNotFound.
	FindPending(ctx context.Context, userID int64) (Request, error)
	// CreateRequest stores a new pending request.
	CreateRequest(ctx context.Context, r Request) error
	// ResolvePending moves the user's pending request to status and returns
	// it, or sentinel.ErrNotFound when the user has none pending.
	ResolvePending(ctx context.Context, userID int64, status RequestStatus) (Request, error)
	// ListPending lists pending requests, newest first.
	ListPending(ctx context.Context) ([]Request, error)
}
