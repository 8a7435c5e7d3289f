// Package service orchestrates the attendance pipeline: classify raw chat
// text, run the pure reconciliation core, and persist through the store
// accessor.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"davomat/internal/attendance"
	"davomat/internal/attendance/store"
	"davomat/internal/platform/metrics"
	"davomat/internal/roster"
	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/localdate"
	"davomat/pkg/platform/sentinel"
	"davomat/pkg/requestcontext"
)

// Service applies incoming messages to the attendance store.
//
// Student names flow into the longitudinal roster sink on both submissions
// and arrivals; that sink is best-effort and never blocks the attendance
// write itself.
type Service struct {
	log     *slog.Logger
	store   store.Store
	roster  roster.Store
	classes attendance.ClassList
	loc     *time.Location
	metrics *metrics.Metrics
}

func New(log *slog.Logger, st store.Store, ro roster.Store, classes attendance.ClassList, loc *time.Location, m *metrics.Metrics) *Service {
	return &Service{
		log:     log,
		store:   st,
		roster:  ro,
		classes: classes,
		loc:     loc,
		metrics: m,
	}
}

// OutcomeKind classifies what a message did.
type OutcomeKind int

const (
	// OutcomeIgnored: no grammar matched, or the class is unknown, or the
	// late-update window is closed. Never an error; the chat stays silent.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeSubmissionStored: a full submission was upserted.
	OutcomeSubmissionStored
	// OutcomeLateUpdateApplied: an arrival/departure patched an existing record.
	OutcomeLateUpdateApplied
	// OutcomeLateUpdateDropped: a late update arrived with no base record.
	OutcomeLateUpdateDropped
)

// Outcome reports what happened to a message so the transport layer can
// compose the reply.
type Outcome struct {
	Kind       OutcomeKind
	Record     attendance.Record
	Created    bool // submission had no prior record for the key
	LateUpdate attendance.LateUpdate

	// Day totals after the write, for the late-update confirmation line.
	DayTotal   int
	DayPresent int
}

// HandleMessage classifies text and applies it for today's date. The
// submission grammar always wins over the late-update grammar; late updates
// are only honored when allowLate is set (the transport gates this on the
// wall clock).
func (s *Service) HandleMessage(ctx context.Context, text string, allowLate bool) (Outcome, error) {
	parsed, ok := attendance.Parse(text)
	if !ok {
		s.metrics.IncParseRejections()
		return Outcome{Kind: OutcomeIgnored}, nil
	}

	switch {
	case parsed.Submission != nil:
		sub := *parsed.Submission
		if !s.classes.Contains(sub.ClassName) {
			s.log.DebugContext(ctx, "submission for unknown class ignored", "class", sub.ClassName)
			s.metrics.IncParseRejections()
			return Outcome{Kind: OutcomeIgnored}, nil
		}
		rec, created, err := s.SubmitAttendance(ctx, sub)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeSubmissionStored, Record: rec, Created: created}, nil

	case parsed.LateUpdate != nil:
		ev := *parsed.LateUpdate
		if !s.classes.Contains(ev.ClassName) {
			s.metrics.IncParseRejections()
			return Outcome{Kind: OutcomeIgnored}, nil
		}
		if !allowLate {
			return Outcome{Kind: OutcomeIgnored}, nil
		}
		return s.applyLateUpdate(ctx, ev)
	}

	return Outcome{Kind: OutcomeIgnored}, nil
}

// SubmitAttendance upserts today's record for the submission's class. The
// admin roster total, when present and positive, overrides the submitted
// total. A resubmission fully replaces the prior record.
func (s *Service) SubmitAttendance(ctx context.Context, sub attendance.Submission) (attendance.Record, bool, error) {
	now := requestcontext.Now(ctx)
	date := localdate.FromTime(now, s.loc)

	rosterTotal := s.rosterTotal(ctx, sub.ClassName)

	var existing *attendance.Record
	created := true
	if prior, err := s.store.Find(ctx, sub.ClassName, date); err == nil {
		existing = &prior
		created = false
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncStoreFailures()
		return attendance.Record{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "load attendance record")
	}

	rec := attendance.ApplySubmission(existing, date, sub, rosterTotal, now)
	if err := s.store.Upsert(ctx, rec); err != nil {
		s.metrics.IncStoreFailures()
		return attendance.Record{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "store attendance record")
	}

	s.metrics.IncSubmissionsAccepted()
	s.log.InfoContext(ctx, "attendance stored",
		"class", rec.ClassName,
		"date", rec.Date.String(),
		"total", rec.TotalCount,
		"present", rec.PresentCount,
		"created", created,
		"chat_id", requestcontext.ChatID(ctx),
		"sender_id", requestcontext.SenderID(ctx),
	)

	s.sinkStudents(ctx, rec.ClassName, rec.PresentNames)
	return rec, created, nil
}

// applyLateUpdate patches today's record for the event's class. A missing
// base record drops the event silently per contract.
func (s *Service) applyLateUpdate(ctx context.Context, ev attendance.LateUpdate) (Outcome, error) {
	now := requestcontext.Now(ctx)
	date := localdate.FromTime(now, s.loc)

	prior, err := s.store.Find(ctx, ev.ClassName, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLateUpdatesDropped()
			s.log.DebugContext(ctx, "late update without base record dropped",
				"class", ev.ClassName, "student", ev.StudentName)
			return Outcome{Kind: OutcomeLateUpdateDropped, LateUpdate: ev}, nil
		}
		s.metrics.IncStoreFailures()
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "load attendance record")
	}

	rec, applied := attendance.ApplyLateUpdate(&prior, ev, now)
	if !applied {
		s.metrics.IncLateUpdatesDropped()
		return Outcome{Kind: OutcomeLateUpdateDropped, LateUpdate: ev}, nil
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		s.metrics.IncStoreFailures()
		return Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "store attendance record")
	}

	s.metrics.IncLateUpdatesApplied()
	s.log.InfoContext(ctx, "late update applied",
		"class", ev.ClassName,
		"student", ev.StudentName,
		"action", string(ev.Action),
		"present", rec.PresentCount,
		"chat_id", requestcontext.ChatID(ctx),
		"sender_id", requestcontext.SenderID(ctx),
	)

	if ev.Action == attendance.ActionArrived {
		s.sinkStudents(ctx, ev.ClassName, []string{ev.StudentName})
	}

	dayTotal, dayPresent := s.dayTotals(ctx, date)
	return Outcome{
		Kind:       OutcomeLateUpdateApplied,
		Record:     rec,
		LateUpdate: ev,
		DayTotal:   dayTotal,
		DayPresent: dayPresent,
	}, nil
}

// PurgeDate removes every record for the date. Administrative use only.
func (s *Service) PurgeDate(ctx context.Context, date localdate.Date) error {
	if err := s.store.DeleteByDate(ctx, date); err != nil {
		s.metrics.IncStoreFailures()
		return dErrors.Wrap(err, dErrors.CodeInternal, "purge attendance records")
	}
	s.log.InfoContext(ctx, "attendance purged", "date", date.String())
	return nil
}

// Today returns the current calendar date in the school's timezone.
func (s *Service) Today(ctx context.Context) localdate.Date {
	return localdate.FromTime(requestcontext.Now(ctx), s.loc)
}

func (s *Service) rosterTotal(ctx context.Context, className string) int {
	total, err := s.roster.TotalStudents(ctx, className)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			// Roster is advisory; fall back to the submitted total.
			s.log.WarnContext(ctx, "roster lookup failed", "class", className, "error", err)
		}
		return 0
	}
	return total
}

func (s *Service) sinkStudents(ctx context.Context, className string, names []string) {
	for _, name := range names {
		if err := s.roster.RecordStudent(ctx, className, name); err != nil {
			s.log.WarnContext(ctx, "student sink failed",
				"class", className, "student", name, "error", err)
			return
		}
	}
}

func (s *Service) dayTotals(ctx context.Context, date localdate.Date) (total, present int) {
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		s.metrics.IncStoreFailures()
		s.log.WarnContext(ctx, "day totals unavailable", "date", date.String(), "error", err)
		return 0, 0
	}
	for _, rec := range records {
		total += rec.TotalCount
		present += rec.PresentCount
	}
	return total, present
}
