// Package settings is a small persisted key-value store for runtime bot
// state. Its main tenant is the report chat binding: the group chat that
// scheduled digests are pushed to, captured once via /start and reloaded at
// every boot so a restart never loses the target.
package settings

import (
	"context"
	"errors"
	"strconv"

	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/platform/sentinel"
)

const KeyReportChatID = "report_chat_id"

// Store is the key-value accessor contract.
type Store interface {
	// Get returns the value for key, or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set upserts the value for key.
	Set(ctx context.Context, key, value string) error
}

// Service exposes typed accessors over the raw store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ReportChatID returns the bound report chat, or 0 when none is bound yet.
func (s *Service) ReportChatID(ctx context.Context) (int64, error) {
	raw, err := s.store.Get(ctx, KeyReportChatID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "load report chat binding")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "malformed report chat binding")
	}
	return id, nil
}

// BindReportChat persists chatID as the scheduled-report target.
func (s *Service) BindReportChat(ctx context.Context, chatID int64) error {
	if err := s.store.Set(ctx, KeyReportChatID, strconv.FormatInt(chatID, 10)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist report chat binding")
	}
	return nil
}
