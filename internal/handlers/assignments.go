package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/service"
)

// AssignmentHandler handles student assignment requests.
type AssignmentHandler struct {
	svc *service.Service
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(svc *service.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// Create handles POST /api/student-assignments.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	assignment, err := h.svc.CreateAssignment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// List handles GET /api/student-assignments.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assignments, err := h.svc.ListAssignments(r.Context(),
		q.Get("route_id"), q.Get("student_id"), q.Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// Get handles GET /api/student-assignments/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.svc.GetAssignment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

// Update handles PUT /api/student-assignments/{id}.
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	assignment, err := h.svc.UpdateAssignment(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

// Cancel handles POST /api/student-assignments/{id}/cancel.
func (h *AssignmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.svc.CancelAssignment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}
