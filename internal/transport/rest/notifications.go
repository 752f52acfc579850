package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marcosklein04/alquileres-ai/internal/service/notifier"
)

type notifierService interface {
	RunPass(ctx context.Context) (notifier.PassReport, error)
}

// NotificationsHandler serves the notification pass endpoint.
type NotificationsHandler struct {
	svc notifierService
	log *slog.Logger
}

// NewNotificationsHandler creates a NotificationsHandler.
func NewNotificationsHandler(svc notifierService, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		svc: svc,
		log: logger.With("handler", "notifications"),
	}
}

// Run handles POST /api/notifications/run. It always returns the full
// structured pass report; only a pass-level failure maps to an error.
func (h *NotificationsHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.RunPass(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "notification pass failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "notification pass failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
