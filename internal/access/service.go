package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/platform/sentinel"
	"davomat/pkg/requestcontext"
)

// Service runs the access request lifecycle: request, approve, reject.
type Service struct {
	log   *slog.Logger
	store Store
}

func NewService(log *slog.Logger, store Store) *Service {
	return &Service{log: log, store: store}
}

// Request creates a pending access request for the user. Conflicts when the
// user already has a pending request or is already authorized.
func (s *Service) Request(ctx context.Context, userID int64, username string, chatID int64) (Request, error) {
	if _, err := s.store.FindPending(ctx, userID); err == nil {
		return Request{}, dErrors.New(dErrors.CodeConflict, "access request already pending")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "check pending request")
	}

	authorized, err := s.store.IsAuthorized(ctx, userID)
	if err != nil {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "check authorization")
	}
	if authorized {
		return Request{}, dErrors.New(dErrors.CodeConflict, "user already authorized")
	}

	req := Request{
		ID:          uuid.New(),
		UserID:      userID,
		Username:    username,
		ChatID:      chatID,
		Status:      RequestPending,
		RequestedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "create access request")
	}

	s.log.InfoContext(ctx, "access requested", "user_id", userID, "username", username)
	return req, nil
}

// Approve resolves the user's pending request and promotes them to an active
// recipient. Returns the resolved request so the caller can notify its chat.
func (s *Service) Approve(ctx context.Context, userID, approvedBy int64) (Request, error) {
	req, err := s.store.ResolvePending(ctx, userID, RequestApproved)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Request{}, dErrors.New(dErrors.CodeNotFound, "no pending request for user")
		}
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve access request")
	}

	recipient := Recipient{
		UserID:       req.UserID,
		Username:     req.Username,
		ChatID:       req.ChatID,
		Status:       RecipientActive,
		AuthorizedBy: approvedBy,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.AddRecipient(ctx, recipient); err != nil {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "add recipient")
	}

	s.log.InfoContext(ctx, "access approved", "user_id", userID, "approved_by", approvedBy)
	return req, nil
}

// Reject resolves the user's pending request without granting access.
func (s *Service) Reject(ctx context.Context, userID, rejectedBy int64) (Request, error) {
	req, err := s.store.ResolvePending(ctx, userID, RequestRejected)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Request{}, dErrors.New(dErrors.CodeNotFound, "no pending request for user")
		}
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve access request")
	}

	s.log.InfoContext(ctx, "access rejected", "user_id", userID, "rejected_by", rejectedBy)
	return req, nil
}

// Revoke marks an active recipient inactive. They stop receiving summaries
// and lose report access, but the authorization record is kept.
func (s *Service) Revoke(ctx context.Context, userID, revokedBy int64) error {
	if err := s.store.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user is not an active recipient")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "deactivate recipient")
	}

	s.log.InfoContext(ctx, "access revoked", "user_id", userID, "revoked_by", revokedBy)
	return nil
}

// IsAuthorized reports whether the user is an active recipient.
func (s *Service) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	authorized, err := s.store.IsAuthorized(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check authorization")
	}
	return authorized, nil
}

// ListPending lists open requests, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Request, error) {
	reqs, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending requests")
	}
	return reqs, nil
}

// Recipients lists active notification targets.
func (s *Service) Recipients(ctx context.Context) ([]Recipient, error) {
	recipients, err := s.store.ActiveRecipients(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list recipients")
	}
	return recipients, nil
}
