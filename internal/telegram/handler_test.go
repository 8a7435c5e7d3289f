package telegram_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"davomat/internal/access"
	"davomat/internal/attendance"
	attendancesvc "davomat/internal/attendance/service"
	"davomat/internal/attendance/store"
	"davomat/internal/notify"
	"davomat/internal/report"
	"davomat/internal/roster"
	"davomat/internal/settings"
	"davomat/internal/telegram"
	"davomat/internal/telegram/mocks"
	"davomat/pkg/localdate"
)

const (
	ownerID   int64 = 1
	groupID   int64 = -100500
	teacherID int64 = 42
)

type HandlerSuite struct {
	suite.Suite

	ctx      context.Context
	ctrl     *gomock.Controller
	api      *mocks.MockAPI
	store    *store.InMemory
	access   *access.Service
	settings *settings.Service
	handler  *telegram.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.api = mocks.NewMockAPI(s.ctrl)
	s.store = store.NewInMemory()

	log := slog.New(slog.DiscardHandler)
	classes := attendance.ClassList{"6A", "9A"}
	s.access = access.NewService(log, access.NewInMemory())
	s.settings = settings.NewService(settings.NewInMemory())

	att := attendancesvc.New(log, s.store, roster.NewInMemory(), classes, time.UTC, nil)
	s.handler = telegram.NewHandler(
		log,
		s.api,
		att,
		report.NewService(log, s.store, classes),
		s.access,
		s.settings,
		notify.New(log, s.api, nil),
		telegram.NewMemoryDeduper(),
		nil,
		telegram.HandlerConfig{
			OwnerID:        ownerID,
			AllowedGroupID: groupID,
			ActiveWindow: localdate.Window{
				Start: localdate.TimeOfDay{Hour: 8, Minute: 15},
				End:   localdate.TimeOfDay{Hour: 13, Minute: 0},
			},
			SummaryTimes: []localdate.TimeOfDay{{Hour: 9, Minute: 15}},
			EndOfDay:     localdate.TimeOfDay{Hour: 13, Minute: 0},
			Location:     time.UTC,
		},
	)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func at(hour, minute int) int {
	return int(time.Date(2026, time.March, 2, hour, minute, 0, 0, time.UTC).Unix())
}

func groupMessage(updateID int, text string, unix int) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: updateID,
			From:      &tgbotapi.User{ID: teacherID, UserName: "teacher_a"},
			Chat:      &tgbotapi.Chat{ID: groupID, Type: "supergroup"},
			Text:      text,
			Date:      unix,
		},
	}
}

func command(updateID int, chatID, fromID int64, chatType, text string, unix int) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		cmdLen = i
	}
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: updateID,
			From:      &tgbotapi.User{ID: fromID, UserName: "someone"},
			Chat:      &tgbotapi.Chat{ID: chatID, Type: chatType},
			Text:      text,
			Date:      unix,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: cmdLen},
			},
		},
	}
}

func (s *HandlerSuite) expectReply(chatID int64, contains string) {
	s.api.EXPECT().
		Send(gomock.Any(), chatID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, text string) error {
			s.Contains(text, contains)
			return nil
		})
}

func (s *HandlerSuite) TestSubmissionConfirmed() {
	s.expectReply(groupID, "✅ 9A davomad qabul qilindi: 30/27")
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27 Ali", at(8, 30)))

	rec, err := s.store.Find(s.ctx, "9A", localdate.Date{Year: 2026, Month: time.March, Day: 2})
	s.Require().NoError(err)
	s.Equal(27, rec.PresentCount)
}

func (s *HandlerSuite) TestResubmissionConfirmedAsUpdate() {
	s.expectReply(groupID, "davomad qabul qilindi")
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/25", at(8, 30)))

	s.expectReply(groupID, "✅ 9A yangilandi: 30/27")
	s.handler.ProcessUpdate(s.ctx, groupMessage(2, "9A 30/27", at(8, 40)))
}

func (s *HandlerSuite) TestMessageOutsideActiveWindowIgnored() {
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27", at(7, 0)))
	s.handler.ProcessUpdate(s.ctx, groupMessage(2, "9A 30/27", at(13, 30)))

	_, err := s.store.Find(s.ctx, "9A", localdate.Date{Year: 2026, Month: time.March, Day: 2})
	s.Error(err)
}

func (s *HandlerSuite) TestLateUpdateBeforeSummaryIgnored() {
	s.expectReply(groupID, "davomad qabul qilindi")
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27 Ali", at(8, 30)))

	// 08:45 is inside the active window but before the first summary.
	s.handler.ProcessUpdate(s.ctx, groupMessage(2, "9A Bobur keldi", at(8, 45)))

	rec, err := s.store.Find(s.ctx, "9A", localdate.Date{Year: 2026, Month: time.March, Day: 2})
	s.Require().NoError(err)
	s.Equal(27, rec.PresentCount)
}

func (s *HandlerSuite) TestLateUpdateAfterSummaryApplied() {
	s.expectReply(groupID, "davomad qabul qilindi")
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27 Ali", at(8, 30)))

	s.expectReply(groupID, "9A yangilandi: Bobur keldi\nBugun jami 30 dan 28 kishi keldi")
	s.handler.ProcessUpdate(s.ctx, groupMessage(2, "9A Bobur keldi", at(9, 30)))
}

func (s *HandlerSuite) TestForeignGroupIgnored() {
	foreign := groupMessage(1, "9A 30/27", at(8, 30))
	foreign.Message.Chat.ID = -200999

	s.handler.ProcessUpdate(s.ctx, foreign)

	_, err := s.store.Find(s.ctx, "9A", localdate.Date{Year: 2026, Month: time.March, Day: 2})
	s.Error(err)
}

func (s *HandlerSuite) TestDuplicateUpdateSkipped() {
	s.expectReply(groupID, "davomad qabul qilindi")

	upd := groupMessage(7, "9A 30/27", at(8, 30))
	s.handler.ProcessUpdate(s.ctx, upd)
	s.handler.ProcessUpdate(s.ctx, upd)
}

func (s *HandlerSuite) TestStartInGroupBindsReportChat() {
	s.expectReply(groupID, "xush kelibsiz")
	s.handler.ProcessUpdate(s.ctx, command(1, groupID, teacherID, "supergroup", "/start", at(8, 0)))

	chatID, err := s.settings.ReportChatID(s.ctx)
	s.Require().NoError(err)
	s.Equal(groupID, chatID)
}

func (s *HandlerSuite) TestStartInPrivateDoesNotBind() {
	s.expectReply(teacherID, "xush kelibsiz")
	s.handler.ProcessUpdate(s.ctx, command(1, teacherID, teacherID, "private", "/start", at(8, 0)))

	chatID, err := s.settings.ReportChatID(s.ctx)
	s.Require().NoError(err)
	s.Zero(chatID)
}

func (s *HandlerSuite) TestDailyReportRequiresAuthorization() {
	s.expectReply(teacherID, "ruxsat yo'q")
	s.handler.ProcessUpdate(s.ctx, command(1, teacherID, teacherID, "private", "/hisobot", at(10, 0)))
}

func (s *HandlerSuite) TestDailyReportForOwner() {
	s.expectReply(ownerID, "Kunlik hisobot")
	s.handler.ProcessUpdate(s.ctx, command(1, ownerID, ownerID, "private", "/hisobot", at(10, 0)))
}

func (s *HandlerSuite) TestDailyReportWithExplicitDate() {
	s.expectReply(ownerID, "2026-02-27")
	s.handler.ProcessUpdate(s.ctx, command(1, ownerID, ownerID, "private", "/hisobot 2026-02-27", at(10, 0)))
}

func (s *HandlerSuite) TestAccessRequestFlowsToOwner() {
	s.expectReply(teacherID, "So'rovingiz yuborildi")
	s.api.EXPECT().
		SendKeyboard(gomock.Any(), ownerID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, text string, buttons []telegram.Button) error {
			s.Contains(text, "@someone")
			s.Require().Len(buttons, 2)
			s.Equal("access:approve:42", buttons[0].Data)
			s.Equal("access:reject:42", buttons[1].Data)
			return nil
		})

	s.handler.ProcessUpdate(s.ctx, command(1, teacherID, teacherID, "private", "/ruxsat", at(8, 0)))
}

func (s *HandlerSuite) TestCallbackApproveNotifiesRequester() {
	_, err := s.access.Request(s.ctx, teacherID, "teacher_a", teacherID)
	s.Require().NoError(err)

	s.api.EXPECT().AnswerCallback(gomock.Any(), "cb-1", "Tasdiqlandi").Return(nil)
	s.expectReply(teacherID, "Sizga ruxsat berildi")

	s.handler.ProcessUpdate(s.ctx, tgbotapi.Update{
		UpdateID: 1,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: ownerID},
			Data: "access:approve:42",
		},
	})

	authorized, err := s.access.IsAuthorized(s.ctx, teacherID)
	s.Require().NoError(err)
	s.True(authorized)
}

func (s *HandlerSuite) TestCallbackFromNonOwnerRefused() {
	_, err := s.access.Request(s.ctx, teacherID, "teacher_a", teacherID)
	s.Require().NoError(err)

	s.api.EXPECT().AnswerCallback(gomock.Any(), "cb-2", gomock.Any()).Return(nil)

	s.handler.ProcessUpdate(s.ctx, tgbotapi.Update{
		UpdateID: 1,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-2",
			From: &tgbotapi.User{ID: teacherID},
			Data: "access:approve:42",
		},
	})

	authorized, err := s.access.IsAuthorized(s.ctx, teacherID)
	s.Require().NoError(err)
	s.False(authorized)
}

func (s *HandlerSuite) TestPurgeOwnerOnly() {
	s.expectReply(groupID, "davomad qabul qilindi")
	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27", at(8, 30)))

	s.expectReply(teacherID, "faqat bot egasi")
	s.handler.ProcessUpdate(s.ctx, command(2, teacherID, teacherID, "private", "/tozalash", at(10, 0)))

	s.expectReply(ownerID, "tozalandi")
	s.handler.ProcessUpdate(s.ctx, command(3, ownerID, ownerID, "private", "/tozalash", at(10, 0)))

	_, err := s.store.Find(s.ctx, "9A", localdate.Date{Year: 2026, Month: time.March, Day: 2})
	s.Error(err)
}

func (s *HandlerSuite) TestRevokeOwnerOnly() {
	_, err := s.access.Request(s.ctx, teacherID, "teacher_a", teacherID)
	s.Require().NoError(err)
	_, err = s.access.Approve(s.ctx, teacherID, ownerID)
	s.Require().NoError(err)

	s.expectReply(teacherID, "faqat bot egasi")
	s.handler.ProcessUpdate(s.ctx, command(1, teacherID, teacherID, "private", "/bekor 42", at(10, 0)))

	s.expectReply(ownerID, "ruxsat bekor qilindi")
	s.handler.ProcessUpdate(s.ctx, command(2, ownerID, ownerID, "private", "/bekor 42", at(10, 0)))

	authorized, err := s.access.IsAuthorized(s.ctx, teacherID)
	s.Require().NoError(err)
	s.False(authorized)
}

func (s *HandlerSuite) TestRevokeWithoutArgumentShowsUsage() {
	s.expectReply(ownerID, "Foydalanish: /bekor")
	s.handler.ProcessUpdate(s.ctx, command(1, ownerID, ownerID, "private", "/bekor", at(10, 0)))
}

func (s *HandlerSuite) TestRevokeUnknownUser() {
	s.expectReply(ownerID, "ruxsat berilmagan")
	s.handler.ProcessUpdate(s.ctx, command(1, ownerID, ownerID, "private", "/bekor 999", at(10, 0)))
}

func (s *HandlerSuite) TestSubmissionBroadcastToRecipients() {
	_, err := s.access.Request(s.ctx, 100, "deputy", 700)
	s.Require().NoError(err)
	_, err = s.access.Approve(s.ctx, 100, ownerID)
	s.Require().NoError(err)

	s.expectReply(groupID, "✅ 9A davomad qabul qilindi: 30/27")
	s.expectReply(int64(700), "✅ 9A davomad qabul qilindi: 30/27")

	s.handler.ProcessUpdate(s.ctx, groupMessage(1, "9A 30/27", at(8, 30)))
}
