package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/service"
)

// MaintenanceHandler handles maintenance record requests.
type MaintenanceHandler struct {
	svc *service.Service
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(svc *service.Service) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// Schedule handles POST /api/maintenance.
func (h *MaintenanceHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.svc.ScheduleMaintenance(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List handles GET /api/maintenance.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.svc.ListMaintenance(r.Context(), q.Get("vehicle_id"), q.Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /api/maintenance/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Start handles POST /api/maintenance/{id}/start.
func (h *MaintenanceHandler) Start(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.StartMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Complete handles POST /api/maintenance/{id}/complete.
func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.CompleteMaintenance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
