package report

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"davomat/internal/attendance"
	"davomat/internal/attendance/store"
	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/localdate"
)

// Service reads the attendance store and renders reports.
type Service struct {
	log     *slog.Logger
	store   store.Store
	classes attendance.ClassList
}

func NewService(log *slog.Logger, st store.Store, classes attendance.ClassList) *Service {
	return &Service{log: log, store: st, classes: classes}
}

// Daily renders the per-class report for one date.
func (s *Service) Daily(ctx context.Context, date localdate.Date) (string, error) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load records for daily report")
	}
	return Daily(date, records, s.classes), nil
}

// Weekly renders the range report for the 7 days ending at end, inclusive.
func (s *Service) Weekly(ctx context.Context, end localdate.Date) (string, error) {
	start := end.AddDays(-6)
	records, err := s.store.ListByRange(ctx, start, end)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load records for weekly report")
	}
	return Weekly(start, end, records), nil
}

// Monthly renders the range report for a calendar month.
func (s *Service) Monthly(ctx context.Context, year int, month time.Month) (string, error) {
	start, end := localdate.MonthRange(year, month)
	records, err := s.store.ListByRange(ctx, start, end)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load records for monthly report")
	}
	return Monthly(year, month, records), nil
}

// GroupSummary renders the scheduled group digest for one date.
func (s *Service) GroupSummary(ctx context.Context, date localdate.Date) (string, error) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load records for group summary")
	}
	return GroupSummary(records), nil
}

// RecipientSummary renders the per-recipient digest for one date.
func (s *Service) RecipientSummary(ctx context.Context, date localdate.Date) (string, error) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load records for recipient summary")
	}
	return RecipientSummary(records, s.classes), nil
}

// MissingClasses lists the known classes with no record for the date, in
// enumeration order.
func (s *Service) MissingClasses(ctx context.Context, date localdate.Date) ([]string, error) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load records for reminder")
	}
	submitted := make(map[string]bool, len(records))
	for _, rec := range records {
		submitted[strings.ToUpper(rec.ClassName)] = true
	}
	return s.classes.Missing(submitted), nil
}
