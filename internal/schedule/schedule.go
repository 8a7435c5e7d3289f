// Package schedule drives the time-triggered side of the bot: daily digests,
// missing-class reminders, and the end-of-day notice, all on the school's
// local wall clock.
//
// Job failures are logged and swallowed; a broken store call must never stop
// subsequent cycles from firing.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"davomat/internal/access"
	"davomat/internal/notify"
	"davomat/internal/platform/metrics"
	"davomat/internal/report"
	"davomat/internal/settings"
	"davomat/pkg/localdate"
)

const endOfDayMessage = "Bot kunlik faoliyatini yakunladi"

// Config carries the wall-clock times the jobs fire at.
type Config struct {
	SummaryTimes  []localdate.TimeOfDay
	ReminderTimes []localdate.TimeOfDay
	EndOfDay      localdate.TimeOfDay
	Location      *time.Location
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	log      *slog.Logger
	cron     *cron.Cron
	cfg      Config
	reports  *report.Service
	access   *access.Service
	settings *settings.Service
	notifier *notify.Notifier
	metrics  *metrics.Metrics
}

func New(
	log *slog.Logger,
	cfg Config,
	reports *report.Service,
	ac *access.Service,
	st *settings.Service,
	notifier *notify.Notifier,
	m *metrics.Metrics,
) *Scheduler {
	return &Scheduler{
		log:      log,
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		cfg:      cfg,
		reports:  reports,
		access:   ac,
		settings: st,
		notifier: notifier,
		metrics:  m,
	}
}

// Start registers all jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	for _, at := range s.cfg.SummaryTimes {
		if _, err := s.cron.AddFunc(cronSpec(at), func() { s.RunSummary(context.Background()) }); err != nil {
			return fmt.Errorf("schedule summary at %s: %w", at, err)
		}
	}
	for _, at := range s.cfg.ReminderTimes {
		if _, err := s.cron.AddFunc(cronSpec(at), func() { s.RunReminder(context.Background()) }); err != nil {
			return fmt.Errorf("schedule reminder at %s: %w", at, err)
		}
	}
	if _, err := s.cron.AddFunc(cronSpec(s.cfg.EndOfDay), func() { s.RunEndOfDay(context.Background()) }); err != nil {
		return fmt.Errorf("schedule end of day at %s: %w", s.cfg.EndOfDay, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		"summaries", len(s.cfg.SummaryTimes),
		"reminders", len(s.cfg.ReminderTimes),
		"timezone", s.cfg.Location.String(),
	)
	return nil
}

// Stop halts the runner and waits for any in-flight job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunSummary pushes the daily digest to the group chat and the per-recipient
// digest to every authorized user.
func (s *Scheduler) RunSummary(ctx context.Context) {
	s.metrics.IncScheduledCycle("summary")
	today := localdate.Today(s.cfg.Location)

	chatID, ok := s.reportChat(ctx, "summary")
	if ok {
		text, err := s.reports.GroupSummary(ctx, today)
		if err != nil {
			s.log.ErrorContext(ctx, "group summary failed", "error", err)
		} else {
			_ = s.notifier.Send(ctx, chatID, text)
		}
	}

	text, err := s.reports.RecipientSummary(ctx, today)
	if err != nil {
		s.log.ErrorContext(ctx, "recipient summary failed", "error", err)
		return
	}
	recipients, err := s.access.Recipients(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "recipient list unavailable", "error", err)
		return
	}
	chatIDs := make([]int64, 0, len(recipients))
	for _, r := range recipients {
		chatIDs = append(chatIDs, r.ChatID)
	}
	delivered := s.notifier.Broadcast(ctx, chatIDs, text)
	s.log.InfoContext(ctx, "summary cycle complete", "recipients", len(chatIDs), "delivered", delivered)
}

// RunReminder nags the group about classes that have not submitted yet.
// Silent when every class has reported.
func (s *Scheduler) RunReminder(ctx context.Context) {
	s.metrics.IncScheduledCycle("reminder")

	chatID, ok := s.reportChat(ctx, "reminder")
	if !ok {
		return
	}

	missing, err := s.reports.MissingClasses(ctx, localdate.Today(s.cfg.Location))
	if err != nil {
		s.log.ErrorContext(ctx, "reminder failed", "error", err)
		return
	}
	text := report.Reminder(missing)
	if text == "" {
		s.log.DebugContext(ctx, "all classes submitted, reminder skipped")
		return
	}
	_ = s.notifier.Send(ctx, chatID, text)
}

// RunEndOfDay announces the close of the collection day.
func (s *Scheduler) RunEndOfDay(ctx context.Context) {
	s.metrics.IncScheduledCycle("end_of_day")

	chatID, ok := s.reportChat(ctx, "end_of_day")
	if !ok {
		return
	}
	_ = s.notifier.Send(ctx, chatID, endOfDayMessage)
}

func (s *Scheduler) reportChat(ctx context.Context, job string) (int64, bool) {
	chatID, err := s.settings.ReportChatID(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "report chat binding unavailable", "job", job, "error", err)
		return 0, false
	}
	if chatID == 0 {
		s.log.WarnContext(ctx, "no report chat bound, job skipped", "job", job)
		return 0, false
	}
	return chatID, true
}

func cronSpec(at localdate.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * *", at.Minute, at.Hour)
}
