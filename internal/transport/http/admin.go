package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"davomat/internal/access"
	"davomat/internal/report"
	dErrors "davomat/pkg/domain-errors"
	"davomat/pkg/localdate"
	"davomat/pkg/platform/httputil"
)

// AdminHandler serves report and access data to the school administration
// outside the chat.
type AdminHandler struct {
	log      *slog.Logger
	reports  *report.Service
	access   *access.Service
	location *time.Location
}

func NewAdminHandler(log *slog.Logger, reports *report.Service, ac *access.Service, loc *time.Location) *AdminHandler {
	return &AdminHandler{log: log, reports: reports, access: ac, location: loc}
}

type reportResponse struct {
	Report string `json:"report"`
}

// HandleDaily serves GET /admin/reports/daily?date=YYYY-MM-DD (default today).
func (h *AdminHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	date := localdate.Today(h.location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := localdate.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be "+localdate.Layout))
			return
		}
		date = parsed
	}

	text, err := h.reports.Daily(r.Context(), date)
	if err != nil {
		h.log.ErrorContext(r.Context(), "daily report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reportResponse{Report: text})
}

// HandleWeekly serves GET /admin/reports/weekly?end=YYYY-MM-DD (default today).
func (h *AdminHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	end := localdate.Today(h.location)
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := localdate.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "end must be "+localdate.Layout))
			return
		}
		end = parsed
	}

	text, err := h.reports.Weekly(r.Context(), end)
	if err != nil {
		h.log.ErrorContext(r.Context(), "weekly report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reportResponse{Report: text})
}

// HandleMonthly serves GET /admin/reports/monthly?year=YYYY&month=M (default
// current month).
func (h *AdminHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	today := localdate.Today(h.location)
	year, month := today.Year, today.Month

	if raw := r.URL.Query().Get("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "year must be an integer"))
			return
		}
		year = n
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "month must be 1-12"))
			return
		}
		month = time.Month(n)
	}

	text, err := h.reports.Monthly(r.Context(), year, month)
	if err != nil {
		h.log.ErrorContext(r.Context(), "monthly report failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reportResponse{Report: text})
}

type pendingRequestResponse struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// HandlePendingRequests serves GET /admin/access/pending.
func (h *AdminHandler) HandlePendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.access.ListPending(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "pending requests lookup failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]pendingRequestResponse, 0, len(pending))
	for _, req := range pending {
		out = append(out, pendingRequestResponse{
			ID:          req.ID.String(),
			UserID:      req.UserID,
			Username:    req.Username,
			RequestedAt: req.RequestedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
