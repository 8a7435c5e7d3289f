// Package httptransport is the HTTP surface: the webhook endpoint Telegram
// posts updates to, health and metrics endpoints, and a small JWT-protected
// admin API for pulling reports outside the chat.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"davomat/pkg/platform/httputil"
)

// Config carries the transport's own settings.
type Config struct {
	// BotToken doubles as the webhook path secret, the scheme Telegram
	// recommends for webhook endpoints.
	BotToken string
	// AdminJWTKey signs admin API tokens. Empty disables the admin routes.
	AdminJWTKey string
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires all endpoints.
func NewRouter(log *slog.Logger, cfg Config, webhook *WebhookHandler, admin *AdminHandler, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth(log, checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if webhook != nil {
		r.Post("/webhook/"+cfg.BotToken, webhook.HandleUpdate)
	}

	if admin != nil && cfg.AdminJWTKey != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth(log, cfg.AdminJWTKey))
			r.Get("/reports/daily", admin.HandleDaily)
			r.Get("/reports/weekly", admin.HandleWeekly)
			r.Get("/reports/monthly", admin.HandleMonthly)
			r.Get("/access/pending", admin.HandlePendingRequests)
		})
	}

	return r
}

func handleHealth(log *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "health check failed", "component", name, "error", err)
				body[name] = "down"
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, code, body)
	}
}
