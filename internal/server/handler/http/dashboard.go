package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/service"
	"github.com/lexora/lexora/internal/store"
)

// DashboardService defines the aggregation operations required by the
// dashboard handlers.
type DashboardService interface {
	Load(ctx context.Context, owner string) (*service.Overview, error)
	CompleteAppointment(ctx context.Context, owner, id string) (store.Record, error)
}

// DashboardHandler serves the summary counters, revenue series, and the
// upcoming-appointments widget.
type DashboardHandler struct {
	Dashboard DashboardService
}

// Overview handles GET /api/dashboard.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserIDFromContext(r.Context())
	overview, err := h.Dashboard.Load(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// Complete handles POST /api/appointments/{id}/complete, the widget's
// mark-complete action.
func (h *DashboardHandler) Complete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserIDFromContext(r.Context())
	rec, err := h.Dashboard.CompleteAppointment(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
