package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"davomat/internal/access"
	"davomat/internal/attendance"
	attendancesvc "davomat/internal/attendance/service"
	"davomat/internal/notify"
	"davomat/internal/platform/metrics"
	"davomat/internal/report"
	"davomat/internal/settings"
	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/localdate"
	"davomat/pkg/requestcontext"
)

// Callback action tokens carried in inline keyboard buttons.
const (
	callbackApprovePrefix = "access:approve:"
	callbackRejectPrefix  = "access:reject:"
)

// HandlerConfig is the slice of runtime configuration the update handler
// needs.
type HandlerConfig struct {
	OwnerID        int64
	AllowedGroupID int64 // 0 accepts any group
	ActiveWindow   localdate.Window
	SummaryTimes   []localdate.TimeOfDay
	EndOfDay       localdate.TimeOfDay
	Location       *time.Location
}

// Handler routes inbound updates to the domain services and composes replies.
type Handler struct {
	log        *slog.Logger
	api        API
	attendance *attendancesvc.Service
	reports    *report.Service
	access     *access.Service
	settings   *settings.Service
	notifier   *notify.Notifier
	dedupe     Deduper
	metrics    *metrics.Metrics
	cfg        HandlerConfig
}

func NewHandler(
	log *slog.Logger,
	api API,
	att *attendancesvc.Service,
	reports *report.Service,
	ac *access.Service,
	st *settings.Service,
	notifier *notify.Notifier,
	dedupe Deduper,
	m *metrics.Metrics,
	cfg HandlerConfig,
) *Handler {
	return &Handler{
		log:        log,
		api:        api,
		attendance: att,
		reports:    reports,
		access:     ac,
		settings:   st,
		notifier:   notifier,
		dedupe:     dedupe,
		metrics:    m,
		cfg:        cfg,
	}
}

// ProcessUpdate handles one inbound update end to end. It never returns an
// error: every failure path either replies to the initiator or is logged.
func (h *Handler) ProcessUpdate(ctx context.Context, upd tgbotapi.Update) {
	seen, err := h.dedupe.Seen(ctx, upd.UpdateID)
	if err != nil {
		// Dedupe is an optimization; process anyway.
		h.log.WarnContext(ctx, "dedupe check failed", "update_id", upd.UpdateID, "error", err)
	} else if seen {
		h.log.DebugContext(ctx, "duplicate update skipped", "update_id", upd.UpdateID)
		return
	}

	if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}

	msg := upd.Message
	ctx = requestcontext.WithChatID(ctx, msg.Chat.ID)
	if msg.From != nil {
		ctx = requestcontext.WithSenderID(ctx, msg.From.ID)
	}
	ctx = requestcontext.WithTime(ctx, msg.Time())

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}
	h.handleText(ctx, msg)
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if h.foreignGroup(msg.Chat) {
		return
	}

	now := requestcontext.Now(ctx)
	if !h.cfg.ActiveWindow.Contains(now, h.cfg.Location) {
		h.log.DebugContext(ctx, "message outside active window ignored", "chat_id", msg.Chat.ID)
		return
	}

	outcome, err := h.attendance.HandleMessage(ctx, msg.Text, h.lateUpdatesOpen(now))
	if err != nil {
		h.log.ErrorContext(ctx, "message handling failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}

	switch outcome.Kind {
	case attendancesvc.OutcomeSubmissionStored:
		rec := outcome.Record
		text := submissionUpdatedMessage(rec.ClassName, rec.TotalCount, rec.PresentCount)
		if outcome.Created {
			text = submissionAcceptedMessage(rec.ClassName, rec.TotalCount, rec.PresentCount)
		}
		h.reply(ctx, msg.Chat.ID, text)
		h.broadcastToRecipients(ctx, text)

	case attendancesvc.OutcomeLateUpdateApplied:
		ev := outcome.LateUpdate
		keyword := "keldi"
		if ev.Action == attendance.ActionDeparted {
			keyword = "ketdi"
		}
		h.reply(ctx, msg.Chat.ID, lateUpdateMessage(
			ev.ClassName, ev.StudentName, keyword, outcome.DayTotal, outcome.DayPresent))
		rec := outcome.Record
		h.broadcastToRecipients(ctx, submissionUpdatedMessage(rec.ClassName, rec.TotalCount, rec.PresentCount))

	default:
		// Rejected, dropped, or ignored: the chat stays silent.
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "ruxsat":
		h.handleAccessRequest(ctx, msg)
	case "hisobot":
		h.handleDailyReport(ctx, msg)
	case "haftalik":
		h.handleWeeklyReport(ctx, msg)
	case "oylik":
		h.handleMonthlyReport(ctx, msg)
	case "tozalash":
		h.handlePurge(ctx, msg)
	case "bekor":
		h.handleRevoke(ctx, msg)
	default:
		// Unknown commands are ignored, same as unparseable text.
	}
}

// handleStart greets and, when invoked from a group, binds that group as the
// scheduled-report target. The binding is persisted so a restart keeps it.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		if h.foreignGroup(msg.Chat) {
			return
		}
		if err := h.settings.BindReportChat(ctx, msg.Chat.ID); err != nil {
			h.log.ErrorContext(ctx, "report chat binding failed", "error", err)
			h.reply(ctx, msg.Chat.ID, errorMessage)
			return
		}
		h.log.InfoContext(ctx, "report chat bound", "chat_id", msg.Chat.ID)
	}
	h.reply(ctx, msg.Chat.ID, welcomeMessage)
}

func (h *Handler) handleAccessRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	req, err := h.access.Request(ctx, msg.From.ID, msg.From.UserName, msg.Chat.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			authorized, aerr := h.access.IsAuthorized(ctx, msg.From.ID)
			if aerr == nil && authorized {
				h.reply(ctx, msg.Chat.ID, accessAlreadyMessage)
			} else {
				h.reply(ctx, msg.Chat.ID, accessPendingMessage)
			}
			return
		}
		h.log.ErrorContext(ctx, "access request failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}

	h.reply(ctx, msg.Chat.ID, accessRequestedMessage)

	if h.cfg.OwnerID == 0 {
		return
	}
	uid := strconv.FormatInt(req.UserID, 10)
	err = h.api.SendKeyboard(ctx, h.cfg.OwnerID,
		accessRequestPrompt(req.Username, req.UserID),
		[]Button{
			{Label: "✅ Tasdiqlash", Data: callbackApprovePrefix + uid},
			{Label: "❌ Rad etish", Data: callbackRejectPrefix + uid},
		})
	if err != nil {
		h.log.ErrorContext(ctx, "owner prompt failed", "error", err)
	}
}

func (h *Handler) handleDailyReport(ctx context.Context, msg *tgbotapi.Message) {
	if !h.requireAuthorized(ctx, msg) {
		return
	}

	date := h.attendance.Today(ctx)
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := localdate.Parse(arg)
		if err != nil {
			h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Sana formati noto'g'ri, %s kutilgan edi.", localdate.Layout))
			return
		}
		date = parsed
	}

	text, err := h.reports.Daily(ctx, date)
	if err != nil {
		h.log.ErrorContext(ctx, "daily report failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}
	h.reply(ctx, msg.Chat.ID, text)
}

func (h *Handler) handleWeeklyReport(ctx context.Context, msg *tgbotapi.Message) {
	if !h.requireAuthorized(ctx, msg) {
		return
	}

	text, err := h.reports.Weekly(ctx, h.attendance.Today(ctx))
	if err != nil {
		h.log.ErrorContext(ctx, "weekly report failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}
	h.reply(ctx, msg.Chat.ID, text)
}

func (h *Handler) handleMonthlyReport(ctx context.Context, msg *tgbotapi.Message) {
	if !h.requireAuthorized(ctx, msg) {
		return
	}

	today := h.attendance.Today(ctx)
	year, month := today.Year, today.Month
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := time.Parse("2006-01", arg)
		if err != nil {
			h.reply(ctx, msg.Chat.ID, "Oy formati noto'g'ri, YYYY-MM kutilgan edi.")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	text, err := h.reports.Monthly(ctx, year, month)
	if err != nil {
		h.log.ErrorContext(ctx, "monthly report failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}
	h.reply(ctx, msg.Chat.ID, text)
}

func (h *Handler) handlePurge(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != h.cfg.OwnerID {
		h.reply(ctx, msg.Chat.ID, ownerOnlyMessage)
		return
	}
	if err := h.attendance.PurgeDate(ctx, h.attendance.Today(ctx)); err != nil {
		h.log.ErrorContext(ctx, "purge failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}
	h.reply(ctx, msg.Chat.ID, purgeDoneMessage)
}

func (h *Handler) handleRevoke(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != h.cfg.OwnerID {
		h.reply(ctx, msg.Chat.ID, ownerOnlyMessage)
		return
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, revokeUsageMessage)
		return
	}
	if err := h.access.Revoke(ctx, userID, msg.From.ID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.reply(ctx, msg.Chat.ID, notRecipientMessage)
			return
		}
		h.log.ErrorContext(ctx, "revoke failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return
	}
	h.reply(ctx, msg.Chat.ID, revokeDoneMessage(userID))
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.From.ID != h.cfg.OwnerID {
		if err := h.api.AnswerCallback(ctx, cb.ID, notAuthorizedMessage); err != nil {
			h.log.WarnContext(ctx, "callback answer failed", "error", err)
		}
		return
	}

	var (
		userID  int64
		approve bool
		err     error
	)
	switch {
	case strings.HasPrefix(cb.Data, callbackApprovePrefix):
		userID, err = strconv.ParseInt(strings.TrimPrefix(cb.Data, callbackApprovePrefix), 10, 64)
		approve = true
	case strings.HasPrefix(cb.Data, callbackRejectPrefix):
		userID, err = strconv.ParseInt(strings.TrimPrefix(cb.Data, callbackRejectPrefix), 10, 64)
	default:
		return
	}
	if err != nil {
		h.log.WarnContext(ctx, "malformed callback token", "data", cb.Data)
		return
	}

	var (
		req        access.Request
		answer     string
		resolution string
	)
	if approve {
		req, err = h.access.Approve(ctx, userID, cb.From.ID)
		answer, resolution = "Tasdiqlandi", accessApprovedMessage
	} else {
		req, err = h.access.Reject(ctx, userID, cb.From.ID)
		answer, resolution = "Rad etildi", accessRejectedMessage
	}
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			answer = noPendingRequestsMessage
		} else {
			h.log.ErrorContext(ctx, "access resolution failed", "error", err)
			answer = errorMessage
		}
		if aerr := h.api.AnswerCallback(ctx, cb.ID, answer); aerr != nil {
			h.log.WarnContext(ctx, "callback answer failed", "error", aerr)
		}
		return
	}

	if aerr := h.api.AnswerCallback(ctx, cb.ID, answer); aerr != nil {
		h.log.WarnContext(ctx, "callback answer failed", "error", aerr)
	}
	h.reply(ctx, req.ChatID, resolution)
}

func (h *Handler) requireAuthorized(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	if msg.From.ID == h.cfg.OwnerID && h.cfg.OwnerID != 0 {
		return true
	}
	authorized, err := h.access.IsAuthorized(ctx, msg.From.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "authorization check failed", "error", err)
		h.reply(ctx, msg.Chat.ID, errorMessage)
		return false
	}
	if !authorized {
		h.reply(ctx, msg.Chat.ID, notAuthorizedMessage)
		return false
	}
	return true
}

// lateUpdatesOpen reports whether single-student deltas are accepted: after
// the first scheduled summary and strictly before end of day.
func (h *Handler) lateUpdatesOpen(now time.Time) bool {
	if len(h.cfg.SummaryTimes) == 0 {
		return false
	}
	first := h.cfg.SummaryTimes[0]
	for _, at := range h.cfg.SummaryTimes[1:] {
		if at.Minutes() < first.Minutes() {
			first = at
		}
	}
	local := now.In(h.cfg.Location)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= first.Minutes() && minutes < h.cfg.EndOfDay.Minutes()
}

func (h *Handler) foreignGroup(chat *tgbotapi.Chat) bool {
	if chat == nil || h.cfg.AllowedGroupID == 0 {
		return false
	}
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return false
	}
	return chat.ID != h.cfg.AllowedGroupID
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.api.Send(ctx, chatID, text); err != nil {
		h.log.ErrorContext(ctx, "reply failed", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) broadcastToRecipients(ctx context.Context, text string) {
	recipients, err := h.access.Recipients(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "recipient list unavailable", "error", err)
		return
	}
	chatIDs := make([]int64, 0, len(recipients))
	for _, r := range recipients {
		chatIDs = append(chatIDs, r.ChatID)
	}
	h.notifier.Broadcast(ctx, chatIDs, text)
}
