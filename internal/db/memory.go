package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
)

// MemoryStore is the in-process EntityStore. All maps are guarded by a
// single RWMutex; reads copy records out so callers always observe a
// consistent snapshot and never share memory with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	vehicles    map[string]models.Vehicle
	drivers     map[string]models.Driver
	routes      map[string]models.Route
	assignments map[string]models.StudentAssignment
	trips       map[string]models.Trip
	maintenance map[string]models.MaintenanceRecord
	users       map[string]models.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles:    make(map[string]models.Vehicle),
		drivers:     make(map[string]models.Driver),
		routes:      make(map[string]models.Route),
		assignments: make(map[string]models.StudentAssignment),
		trips:       make(map[string]models.Trip),
		maintenance: make(map[string]models.MaintenanceRecord),
		users:       make(map[string]models.User),
	}
}

func newID() string { return uuid.NewString() }

// --- vehicles ---

func (s *MemoryStore) CreateVehicle(_ context.Context, v models.Vehicle) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.vehicles {
		if other.Number == v.Number {
			return nil, faults.DuplicateKey("number", v.Number)
		}
		if other.LicensePlate == v.LicensePlate {
			return nil, faults.DuplicateKey("license_plate", v.LicensePlate)
		}
	}
	v.ID = newID()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	s.vehicles[v.ID] = v
	return &v, nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, faults.NotFound("vehicle", id)
	}
	return &v, nil
}

func (s *MemoryStore) UpdateVehicle(_ context.Context, v models.Vehicle) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.vehicles[v.ID]
	if !ok {
		return nil, faults.NotFound("vehicle", v.ID)
	}
	for id, other := range s.vehicles {
		if id == v.ID {
			continue
		}
		if other.Number == v.Number {
			return nil, faults.DuplicateKey("number", v.Number)
		}
		if other.LicensePlate == v.LicensePlate {
			return nil, faults.DuplicateKey("license_plate", v.LicensePlate)
		}
	}
	v.CreatedAt = cur.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	s.vehicles[v.ID] = v
	return &v, nil
}

func (s *MemoryStore) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[id]; !ok {
		return faults.NotFound("vehicle", id)
	}
	for _, t := range s.trips {
		if t.VehicleID == id {
			return faults.ReferentialIntegrity(id, "vehicle is referenced by trip %s", t.ID)
		}
	}
	for _, m := range s.maintenance {
		if m.VehicleID == id {
			return faults.ReferentialIntegrity(id, "vehicle is referenced by maintenance record %s", m.ID)
		}
	}
	delete(s.vehicles, id)
	return nil
}

func (s *MemoryStore) ListVehicles(_ context.Context, f VehicleFilter) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// --- drivers ---

func (s *MemoryStore) CreateDriver(_ context.Context, d models.Driver) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.drivers {
		if other.LicenseNumber == d.LicenseNumber {
			return nil, faults.DuplicateKey("license_number", d.LicenseNumber)
		}
	}
	d.ID = newID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	s.drivers[d.ID] = d
	return &d, nil
}

func (s *MemoryStore) GetDriver(_ context.Context, id string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, faults.NotFound("driver", id)
	}
	return &d, nil
}

func (s *MemoryStore) UpdateDriver(_ context.Context, d models.Driver) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.drivers[d.ID]
	if !ok {
		return nil, faults.NotFound("driver", d.ID)
	}
	for id, other := range s.drivers {
		if id != d.ID && other.LicenseNumber == d.LicenseNumber {
			return nil, faults.DuplicateKey("license_number", d.LicenseNumber)
		}
	}
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	s.drivers[d.ID] = d
	return &d, nil
}

func (s *MemoryStore) DeleteDriver(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return faults.NotFound("driver", id)
	}
	for _, t := range s.trips {
		if t.DriverID == id {
			return faults.ReferentialIntegrity(id, "driver is referenced by trip %s", t.ID)
		}
	}
	delete(s.drivers, id)
	return nil
}

func (s *MemoryStore) ListDrivers(_ context.Context, f DriverFilter) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Availability != "" && d.Availability != f.Availability {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// --- routes ---

func (s *MemoryStore) CreateRoute(_ context.Context, r models.Route) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.routes {
		if other.RouteNumber == r.RouteNumber {
			return nil, faults.DuplicateKey("route_number", r.RouteNumber)
		}
	}
	r.ID = newID()
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.routes[r.ID] = r
	return &r, nil
}

func (s *MemoryStore) GetRoute(_ context.Context, id string) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, faults.NotFound("route", id)
	}
	return &r, nil
}

func (s *MemoryStore) UpdateRoute(_ context.Context, r models.Route) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.routes[r.ID]
	if !ok {
		return nil, faults.NotFound("route", r.ID)
	}
	for id, other := range s.routes {
		if id != r.ID && other.RouteNumber == r.RouteNumber {
			return nil, faults.DuplicateKey("route_number", r.RouteNumber)
		}
	}
	r.CreatedAt = cur.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	s.routes[r.ID] = r
	return &r, nil
}

func (s *MemoryStore) DeleteRoute(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[id]; !ok {
		return faults.NotFound("route", id)
	}
	for _, t := range s.trips {
		if t.RouteID == id {
			return faults.ReferentialIntegrity(id, "route is referenced by trip %s", t.ID)
		}
	}
	for _, a := range s.assignments {
		if a.RouteID == id {
			return faults.ReferentialIntegrity(id, "route is referenced by assignment %s", a.ID)
		}
	}
	delete(s.routes, id)
	return nil
}

func (s *MemoryStore) ListRoutes(_ context.Context, f RouteFilter) ([]models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// --- student assignments ---

func (s *MemoryStore) CreateAssignment(_ context.Context, a models.StudentAssignment) (*models.StudentAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = newID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.assignments[a.ID] = a
	return &a, nil
}

func (s *MemoryStore) GetAssignment(_ context.Context, id string) (*models.StudentAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, faults.NotFound("assignment", id)
	}
	return &a, nil
}

func (s *MemoryStore) UpdateAssignment(_ context.Context, a models.StudentAssignment) (*models.StudentAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.assignments[a.ID]
	if !ok {
		return nil, faults.NotFound("assignment", a.ID)
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.assignments[a.ID] = a
	return &a, nil
}

func (s *MemoryStore) ListAssignments(_ context.Context, f AssignmentFilter) ([]models.StudentAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StudentAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if f.RouteID != "" && a.RouteID != f.RouteID {
			continue
		}
		if f.StudentID != "" && a.StudentID != f.StudentID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) CountActiveAssignments(_ context.Context, routeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.assignments {
		if a.RouteID == routeID && a.Status == models.AssignmentStatusActive {
			n++
		}
	}
	return n, nil
}

// --- trips ---

func (s *MemoryStore) CreateTrip(_ context.Context, t models.Trip) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = newID()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.trips[t.ID] = t
	return &t, nil
}

func (s *MemoryStore) GetTrip(_ context.Context, id string) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[id]
	if !ok {
		return nil, faults.NotFound("trip", id)
	}
	return &t, nil
}

func (s *MemoryStore) UpdateTrip(_ context.Context, t models.Trip) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.trips[t.ID]
	if !ok {
		return nil, faults.NotFound("trip", t.ID)
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.trips[t.ID] = t
	return &t, nil
}

func (s *MemoryStore) ListTrips(_ context.Context, f TripFilter) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		if !matchTrip(t, f) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func matchTrip(t models.Trip, f TripFilter) bool {
	if f.RouteID != "" && t.RouteID != f.RouteID {
		return false
	}
	if f.VehicleID != "" && t.VehicleID != f.VehicleID {
		return false
	}
	if f.DriverID != "" && t.DriverID != f.DriverID {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	// ISO dates compare correctly as strings.
	if f.DateFrom != "" && t.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && t.Date > f.DateTo {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.LiveOnly && !t.Status.Live() {
		return false
	}
	return true
}

// --- maintenance ---

func (s *MemoryStore) CreateMaintenance(_ context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = newID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.maintenance[m.ID] = m
	return &m, nil
}

func (s *MemoryStore) GetMaintenance(_ context.Context, id string) (*models.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maintenance[id]
	if !ok {
		return nil, faults.NotFound("maintenance record", id)
	}
	return &m, nil
}

func (s *MemoryStore) UpdateMaintenance(_ context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.maintenance[m.ID]
	if !ok {
		return nil, faults.NotFound("maintenance record", m.ID)
	}
	m.CreatedAt = cur.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	s.maintenance[m.ID] = m
	return &m, nil
}

func (s *MemoryStore) ListMaintenance(_ context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MaintenanceRecord, 0, len(s.maintenance))
	for _, m := range s.maintenance {
		if f.VehicleID != "" && m.VehicleID != f.VehicleID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.OpenOnly && !m.Status.Open() {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// --- users ---

func (s *MemoryStore) InsertUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Username == user.Username {
			return nil, faults.DuplicateKey("username", user.Username)
		}
		if other.Email == user.Email {
			return nil, faults.DuplicateKey("email", user.Email)
		}
	}
	user.ID = newID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, faults.NotFound("user", id)
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, faults.NotFound("user", username)
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, faults.NotFound("user", email)
}

func (s *MemoryStore) UpdateLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return faults.NotFound("user", id)
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}
