package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ukydev/school-transport/internal/auth"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/middleware"
	"github.com/ukydev/school-transport/internal/service"
)

// RouterConfig carries the rate limit settings for the HTTP surface.
type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   int // seconds
}

// NewRouter wires every handler into one http.Handler with
// authentication, role checks, rate limiting, logging and metrics.
func NewRouter(svc *service.Service, authSvc *auth.Service, users db.UserStore, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	vehicles := NewVehicleHandler(svc)
	drivers := NewDriverHandler(svc)
	routes := NewRouteHandler(svc)
	assignments := NewAssignmentHandler(svc)
	trips := NewTripHandler(svc)
	maintenance := NewMaintenanceHandler(svc)
	dash := NewDashboardHandler(svc)
	authHandler := NewAuthHandler(authSvc, users)

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)

	mux.HandleFunc("POST /api/vehicles", vehicles.Create)
	mux.HandleFunc("GET /api/vehicles", vehicles.List)
	mux.HandleFunc("GET /api/vehicles/{id}", vehicles.Get)
	mux.HandleFunc("PUT /api/vehicles/{id}", vehicles.Update)
	mux.HandleFunc("POST /api/vehicles/{id}/retire", vehicles.Retire)
	mux.HandleFunc("DELETE /api/vehicles/{id}", vehicles.Delete)

	mux.HandleFunc("POST /api/drivers", drivers.Create)
	mux.HandleFunc("GET /api/drivers", drivers.List)
	mux.HandleFunc("GET /api/drivers/{id}", drivers.Get)
	mux.HandleFunc("PUT /api/drivers/{id}", drivers.Update)

	mux.HandleFunc("POST /api/routes", routes.Create)
	mux.HandleFunc("GET /api/routes", routes.List)
	mux.HandleFunc("GET /api/routes/{id}", routes.Get)
	mux.HandleFunc("PUT /api/routes/{id}", routes.Update)
	mux.HandleFunc("POST /api/routes/{id}/suspend", routes.Suspend)

	mux.HandleFunc("POST /api/student-assignments", assignments.Create)
	mux.HandleFunc("GET /api/student-assignments", assignments.List)
	mux.HandleFunc("GET /api/student-assignments/{id}", assignments.Get)
	mux.HandleFunc("PUT /api/student-assignments/{id}", assignments.Update)
	mux.HandleFunc("POST /api/student-assignments/{id}/cancel", assignments.Cancel)

	mux.HandleFunc("POST /api/trips", trips.Schedule)
	mux.HandleFunc("GET /api/trips", trips.List)
	mux.HandleFunc("GET /api/trips/{id}", trips.Get)
	mux.HandleFunc("POST /api/trips/{id}/start", trips.Start)
	mux.HandleFunc("POST /api/trips/{id}/cancel", trips.Cancel)
	mux.HandleFunc("POST /api/trips/{id}/complete", trips.Complete)

	mux.HandleFunc("POST /api/maintenance", maintenance.Schedule)
	mux.HandleFunc("GET /api/maintenance", maintenance.List)
	mux.HandleFunc("GET /api/maintenance/{id}", maintenance.Get)
	mux.HandleFunc("POST /api/maintenance/{id}/start", maintenance.Start)
	mux.HandleFunc("POST /api/maintenance/{id}/complete", maintenance.Complete)

	mux.HandleFunc("GET /api/transport/dashboard", dash.Get)
	mux.HandleFunc("GET /api/transport/trip-completion", dash.CompletionRate)

	mux.HandleFunc("GET /health", Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMw := middleware.NewAuthMiddleware(authSvc)
	rateMw := middleware.NewRateLimitMiddleware()

	var handler http.Handler = mux
	handler = authMw.RequireMutator(handler)
	handler = authMw.Authenticate(handler)
	if cfg.RateLimitRequests > 0 {
		handler = rateMw.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)(handler)
	}
	handler = middleware.Logging(handler)
	return handler
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
