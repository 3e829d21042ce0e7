package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/service"
)

// DriverHandler handles driver CRUD requests.
type DriverHandler struct {
	svc *service.Service
}

// NewDriverHandler creates a new driver handler.
func NewDriverHandler(svc *service.Service) *DriverHandler {
	return &DriverHandler{svc: svc}
}

// Create handles POST /api/drivers.
func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDriverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	driver, err := h.svc.CreateDriver(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, driver)
}

// List handles GET /api/drivers.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	drivers, err := h.svc.ListDrivers(r.Context(), q.Get("status"), q.Get("availability"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

// Get handles GET /api/drivers/{id}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.svc.GetDriver(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// Update handles PUT /api/drivers/{id}.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateDriverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	driver, err := h.svc.UpdateDriver(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}
