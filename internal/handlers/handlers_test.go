package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/school-transport/internal/auth"
	"github.com/ukydev/school-transport/internal/dashboard"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/notify"
	"github.com/ukydev/school-transport/internal/scheduling"
	"github.com/ukydev/school-transport/internal/service"
)

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	token   string
	authSvc *auth.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := db.NewMemoryStore()
	engine := scheduling.NewEngine(store, notify.Noop{})
	agg := dashboard.NewAggregator(store, 0)
	svc := service.New(store, engine, agg, notify.Noop{}, 0)
	authSvc := auth.NewService("test-secret", time.Hour)

	router := NewRouter(svc, authSvc, store, RouterConfig{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	token, err := authSvc.GenerateToken(&models.User{
		ID: "u1", Username: "admin", Role: models.RoleAdmin,
	})
	assert.NoError(t, err)

	return &testAPI{t: t, server: server, token: token, authSvc: authSvc}
}

func (a *testAPI) do(method, path string, payload any) (*http.Response, map[string]any) {
	a.t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		assert.NoError(a.t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	assert.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(a.t, err)
	defer resp.Body.Close()

	var result map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func (a *testAPI) createVehicle(number string, capacity int) string {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/vehicles", map[string]any{
		"number": number, "type": "bus", "capacity": capacity,
		"make": "MAN", "model": "Lion's City", "year": 2021,
		"license_plate": "PL-" + number,
	})
	assert.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func (a *testAPI) createDriver(name, license string) string {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/drivers", map[string]any{
		"personnel_id": "P-" + license, "name": name,
		"license_number": license, "license_class": "D",
	})
	assert.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func (a *testAPI) createRoute(number string, maxCapacity int) string {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/routes", map[string]any{
		"name": "Route " + number, "route_number": number,
		"start_location": "A", "end_location": "B",
		"pickup_time": "07:15", "dropoff_time": "16:00",
		"operating_days": []string{"monday", "friday"},
		"max_capacity":   maxCapacity, "monthly_fee": 120.0,
	})
	assert.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	resp, body := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	resp, _ := api.do(http.MethodGet, "/api/vehicles", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestViewerCannotMutate(t *testing.T) {
	api := newTestAPI(t)
	viewerToken, err := api.authSvc.GenerateToken(&models.User{
		ID: "u2", Username: "viewer", Role: models.RoleViewer,
	})
	assert.NoError(t, err)
	api.token = viewerToken

	resp, _ := api.do(http.MethodGet, "/api/vehicles", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(http.MethodPost, "/api/vehicles", map[string]any{
		"number": "BUS-01", "type": "bus", "capacity": 40,
		"make": "MAN", "model": "Lion's City", "year": 2021, "license_plate": "P1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	resp, body := api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"username": "manager1", "email": "m1@school.example",
		"password": "long-enough-pass", "first_name": "M", "last_name": "One",
		"role": "manager",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"username": "manager1", "password": "long-enough-pass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = api.do(http.MethodPost, "/api/auth/login", map[string]any{
		"username": "manager1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVehicleCRUD(t *testing.T) {
	api := newTestAPI(t)
	id := api.createVehicle("BUS-01", 48)

	resp, body := api.do(http.MethodGet, "/api/vehicles/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "BUS-01", body["number"])
	assert.Equal(t, "active", body["status"])

	resp, body = api.do(http.MethodPut, "/api/vehicles/"+id, map[string]any{"capacity": 50})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(50), body["capacity"])

	// Unknown fields are rejected.
	resp, _ = api.do(http.MethodPut, "/api/vehicles/"+id, map[string]any{"seets": 50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodPost, "/api/vehicles/"+id+"/retire", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "retired", body["status"])

	resp, _ = api.do(http.MethodGet, "/api/vehicles/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVehicleDuplicateNumber(t *testing.T) {
	api := newTestAPI(t)
	api.createVehicle("BUS-01", 48)

	resp, body := api.do(http.MethodPost, "/api/vehicles", map[string]any{
		"number": "BUS-01", "type": "bus", "capacity": 40,
		"make": "MAN", "model": "Lion's City", "year": 2021, "license_plate": "OTHER",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_key", body["kind"])
}

func TestTripScheduling(t *testing.T) {
	api := newTestAPI(t)
	routeID := api.createRoute("R-01", 40)
	vehicleID := api.createVehicle("BUS-01", 48)
	driverID := api.createDriver("Ayse", "DL-1")

	tripReq := map[string]any{
		"route_id": routeID, "vehicle_id": vehicleID, "driver_id": driverID,
		"date": "2026-09-07", "start_time": "07:00", "end_time": "08:30",
	}
	resp, body := api.do(http.MethodPost, "/api/trips", tripReq)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "scheduled", body["status"])
	tripID := body["id"].(string)

	// Overlapping second booking conflicts.
	tripReq["start_time"] = "08:00"
	tripReq["end_time"] = "09:00"
	resp, body = api.do(http.MethodPost, "/api/trips", tripReq)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "scheduling_conflict", body["kind"])

	resp, body = api.do(http.MethodPost, "/api/trips/"+tripID+"/start", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_progress", body["status"])

	resp, body = api.do(http.MethodPost, "/api/trips/"+tripID+"/complete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["status"])

	resp, _ = api.do(http.MethodPost, "/api/trips/"+tripID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAssignmentCapacityOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	routeID := api.createRoute("R-01", 2)

	mk := func(studentID string) (*http.Response, map[string]any) {
		return api.do(http.MethodPost, "/api/student-assignments", map[string]any{
			"student_id": studentID, "route_id": routeID,
			"pickup_location": "Stop 1", "dropoff_location": "Campus",
			"contact_phone": "+90-555-1", "emergency_contact": "+90-555-2",
		})
	}

	resp, body := mk("STU-1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["payment_status"])
	assert.Equal(t, 120.0, body["monthly_fee"])

	resp, _ = mk("STU-2")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = mk("STU-3")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "route_full", body["kind"])

	// Enrollment is derived on the route view.
	resp, body = api.do(http.MethodGet, "/api/routes/"+routeID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["current_enrollment"])
}

func TestMaintenanceOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	vehicleID := api.createVehicle("BUS-01", 48)

	resp, body := api.do(http.MethodPost, "/api/maintenance", map[string]any{
		"vehicle_id": vehicleID, "service_type": "oil_change", "date": "2026-09-10",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	recID := body["id"].(string)

	resp, body = api.do(http.MethodPost, "/api/maintenance/"+recID+"/start", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_progress", body["status"])

	resp, body = api.do(http.MethodGet, "/api/vehicles/"+vehicleID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "maintenance", body["status"])

	resp, _ = api.do(http.MethodPost, "/api/maintenance/"+recID+"/complete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/vehicles/"+vehicleID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["status"])
}

func TestDashboardEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.createVehicle("BUS-01", 48)
	api.createDriver("Ayse", "DL-1")
	api.createRoute("R-01", 40)

	resp, body := api.do(http.MethodGet, "/api/transport/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	vehicles := body["vehicles"].(map[string]any)
	assert.Equal(t, float64(1), vehicles["total"])
	assert.Len(t, body["routes"], 1)
	assert.Contains(t, body, "trip_completion_pct")
	assert.Contains(t, body, "maintenance_alerts")
}

func TestTripCompletionEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(http.MethodGet, "/api/transport/trip-completion?from=2026-09-01&to=2026-09-30", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["completion_pct"])

	resp, _ = api.do(http.MethodGet, "/api/transport/trip-completion?from=bad-date", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorBodyShape(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(http.MethodPost, "/api/vehicles", map[string]any{
		"number": "BUS-01", "type": "bus",
		"make": "MAN", "model": "Lion's City", "year": 2021, "license_plate": "P1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body["kind"])
	assert.Equal(t, "capacity", body["field"])
	assert.NotEmpty(t, body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	resp, err := http.Get(fmt.Sprintf("%s/metrics", api.server.URL))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
