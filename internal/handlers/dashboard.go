package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/service"
)

// DashboardHandler serves the aggregate fleet dashboard.
type DashboardHandler struct {
	svc *service.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *service.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get handles GET /api/transport/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// CompletionRate handles GET /api/transport/trip-completion. Optional
// "from" and "to" query parameters bound the date range.
func (h *DashboardHandler) CompletionRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := h.svc.TripCompletionRate(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":           q.Get("from"),
		"to":             q.Get("to"),
		"completion_pct": rate,
	})
}
