package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/service"
)

// TripHandler handles trip scheduling and lifecycle requests.
type TripHandler struct {
	svc *service.Service
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(svc *service.Service) *TripHandler {
	return &TripHandler{svc: svc}
}

// Schedule handles POST /api/trips.
func (h *TripHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	trip, err := h.svc.ScheduleTrip(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// List handles GET /api/trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trips, err := h.svc.ListTrips(r.Context(), db.TripFilter{
		RouteID:   q.Get("route_id"),
		VehicleID: q.Get("vehicle_id"),
		DriverID:  q.Get("driver_id"),
		Date:      q.Get("date"),
		DateFrom:  q.Get("from"),
		DateTo:    q.Get("to"),
		Status:    models.TripStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// Get handles GET /api/trips/{id}.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.GetTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Start handles POST /api/trips/{id}/start.
func (h *TripHandler) Start(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.StartTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Cancel handles POST /api/trips/{id}/cancel.
func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.CancelTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Complete handles POST /api/trips/{id}/complete.
func (h *TripHandler) Complete(w http.ResponseWriter, r *http.Request) {
	trip, err := h.svc.CompleteTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}
