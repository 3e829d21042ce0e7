package handlers

import (
	"net/http"

	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/service"
)

// RouteHandler handles route CRUD requests.
type RouteHandler struct {
	svc *service.Service
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(svc *service.Service) *RouteHandler {
	return &RouteHandler{svc: svc}
}

// Create handles POST /api/routes.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	route, err := h.svc.CreateRoute(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

// List handles GET /api/routes. Every route is returned with its derived
// active enrollment count.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.ListRoutes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

// Get handles GET /api/routes/{id}.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	route, err := h.svc.GetRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// Update handles PUT /api/routes/{id}.
func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	route, err := h.svc.UpdateRoute(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// Suspend handles POST /api/routes/{id}/suspend.
func (h *RouteHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	route, err := h.svc.SuspendRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}
