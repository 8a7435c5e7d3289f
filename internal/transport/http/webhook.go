package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"davomat/internal/telegram"
)

// WebhookHandler receives update payloads from Telegram.
type WebhookHandler struct {
	log     *slog.Logger
	handler *telegram.Handler
}

func NewWebhookHandler(log *slog.Logger, handler *telegram.Handler) *WebhookHandler {
	return &WebhookHandler{log: log, handler: handler}
}

// HandleUpdate decodes and processes one update. It always answers 200:
// Telegram retries non-200 responses, and a poison update would otherwise be
// redelivered forever.
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.log.WarnContext(r.Context(), "malformed webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	h.handler.ProcessUpdate(r.Context(), upd)
	w.WriteHeader(http.StatusOK)
}
