// Package service is the transport façade: one method per UI action.
// Every mutation validates its payload, takes the per-entity locks,
// re-runs the constraint checks and either commits through the entity
// store or returns a typed error with nothing changed.
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/school-transport/internal/constraints"
	"github.com/ukydev/school-transport/internal/dashboard"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/notify"
	"github.com/ukydev/school-transport/internal/scheduling"
)

// DefaultLockTimeout bounds how long a mutation waits for entity locks.
const DefaultLockTimeout = 2 * time.Second

// Kind-level lock keys serialize creates, where no entity id exists yet.
const (
	lockVehicles    = "kind:vehicles"
	lockDrivers     = "kind:drivers"
	lockRoutes      = "kind:routes"
	lockAssignments = "kind:assignments"
)

// Service composes the entity store, constraint checks, scheduling engine
// and dashboard aggregator into the operations the UI invokes.
type Service struct {
	store       db.EntityStore
	engine      *scheduling.Engine
	agg         *dashboard.Aggregator
	events      notify.Publisher
	validate    *playground.Validate
	locks       *lockManager
	lockTimeout time.Duration
}

// New creates the transport service. Pass 0 for the default lock timeout.
func New(store db.EntityStore, engine *scheduling.Engine, agg *dashboard.Aggregator,
	events notify.Publisher, lockTimeout time.Duration) *Service {

	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	v := playground.New()
	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		store:       store,
		engine:      engine,
		agg:         agg,
		events:      events,
		validate:    v,
		locks:       newLockManager(),
		lockTimeout: lockTimeout,
	}
}

// checkPayload runs struct-tag validation and converts the first failure
// into a field-naming validation fault.
func (s *Service) checkPayload(payload any) error {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return faults.Validation(f.Field(), "field %q failed %q validation", f.Field(), f.Tag())
	}
	return faults.Validation("", "invalid payload: %v", err)
}

// --- vehicles ---

// CreateVehicle registers a vehicle. Status defaults to active.
func (s *Service) CreateVehicle(ctx context.Context, req models.CreateVehicleRequest) (*models.Vehicle, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockVehicles)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.store.CreateVehicle(ctx, models.Vehicle{
		Number:       req.Number,
		Type:         req.Type,
		Capacity:     req.Capacity,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		FuelType:     req.FuelType,
		Status:       models.VehicleStatusActive,
	})
}

// UpdateVehicle applies a partial update to a vehicle.
func (s *Service) UpdateVehicle(ctx context.Context, id string, req models.UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockVehicles, id)
	if err != nil {
		return nil, err
	}
	defer release()
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Number != nil {
		v.Number = *req.Number
	}
	if req.Type != nil {
		v.Type = *req.Type
	}
	if req.Capacity != nil {
		v.Capacity = *req.Capacity
	}
	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.LicensePlate != nil {
		v.LicensePlate = *req.LicensePlate
	}
	if req.FuelType != nil {
		v.FuelType = *req.FuelType
	}
	if req.Status != nil {
		v.Status = *req.Status
	}
	return s.store.UpdateVehicle(ctx, *v)
}

// RetireVehicle soft-deletes a vehicle. Retired vehicles stay visible for
// historical trips but cannot take new ones. Retiring twice is a no-op.
func (s *Service) RetireVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	release, err := s.locks.acquire(s.lockTimeout, lockVehicles, id)
	if err != nil {
		return nil, err
	}
	defer release()
	v, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == models.VehicleStatusRetired {
		return v, nil
	}
	v.Status = models.VehicleStatusRetired
	return s.store.UpdateVehicle(ctx, *v)
}

// DeleteVehicle hard-deletes a vehicle; refused while trips or
// maintenance records still reference it.
func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	release, err := s.locks.acquire(s.lockTimeout, lockVehicles, id)
	if err != nil {
		return err
	}
	defer release()
	return s.store.DeleteVehicle(ctx, id)
}

// GetVehicle looks up one vehicle.
func (s *Service) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// ListVehicles lists vehicles, optionally filtered by status.
func (s *Service) ListVehicles(ctx context.Context, status string) ([]models.Vehicle, error) {
	f := db.VehicleFilter{}
	if status != "" {
		st := models.VehicleStatus(status)
		if !st.Valid() {
			return nil, faults.Validation("status", "unknown vehicle status %q", status)
		}
		f.Status = st
	}
	return s.store.ListVehicles(ctx, f)
}

// --- drivers ---

// CreateDriver registers a driver; status defaults to active and
// availability to available.
func (s *Service) CreateDriver(ctx context.Context, req models.CreateDriverRequest) (*models.Driver, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockDrivers)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.store.CreateDriver(ctx, models.Driver{
		PersonnelID:     req.PersonnelID,
		Name:            req.Name,
		LicenseNumber:   req.LicenseNumber,
		LicenseClass:    req.LicenseClass,
		ExperienceYears: req.ExperienceYears,
		EmploymentType:  req.EmploymentType,
		Status:          models.DriverStatusActive,
		Availability:    models.DriverAvailable,
	})
}

// UpdateDriver applies a partial update. Availability is owned by the
// scheduling engine and is not part of the request schema.
func (s *Service) UpdateDriver(ctx context.Context, id string, req models.UpdateDriverRequest) (*models.Driver, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockDrivers, id)
	if err != nil {
		return nil, err
	}
	defer release()
	d, err := s.store.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.LicenseNumber != nil {
		d.LicenseNumber = *req.LicenseNumber
	}
	if req.LicenseClass != nil {
		d.LicenseClass = *req.LicenseClass
	}
	if req.ExperienceYears != nil {
		d.ExperienceYears = *req.ExperienceYears
	}
	if req.EmploymentType != nil {
		d.EmploymentType = *req.EmploymentType
	}
	if req.Status != nil {
		d.Status = *req.Status
	}
	return s.store.UpdateDriver(ctx, *d)
}

// GetDriver looks up one driver.
func (s *Service) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	return s.store.GetDriver(ctx, id)
}

// ListDrivers lists drivers, optionally filtered by status and availability.
func (s *Service) ListDrivers(ctx context.Context, status, availability string) ([]models.Driver, error) {
	f := db.DriverFilter{}
	if status != "" {
		st := models.DriverStatus(status)
		if !st.Valid() {
			return nil, faults.Validation("status", "unknown driver status %q", status)
		}
		f.Status = st
	}
	if availability != "" {
		av := models.DriverAvailability(availability)
		switch av {
		case models.DriverAvailable, models.DriverOnTrip, models.DriverOffDuty:
			f.Availability = av
		default:
			return nil, faults.Validation("availability", "unknown availability %q", availability)
		}
	}
	return s.store.ListDrivers(ctx, f)
}

// --- routes ---

// CreateRoute creates a route; status defaults to active.
func (s *Service) CreateRoute(ctx context.Context, req models.CreateRouteRequest) (*models.RouteView, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	if _, err := models.ParseClock(req.PickupTime); err != nil {
		return nil, faults.Validation("pickup_time", "%s", err)
	}
	if _, err := models.ParseClock(req.DropoffTime); err != nil {
		return nil, faults.Validation("dropoff_time", "%s", err)
	}
	release, err := s.locks.acquire(s.lockTimeout, lockRoutes)
	if err != nil {
		return nil, err
	}
	defer release()
	route, err := s.store.CreateRoute(ctx, models.Route{
		Name:          req.Name,
		RouteNumber:   req.RouteNumber,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		PickupTime:    req.PickupTime,
		DropoffTime:   req.DropoffTime,
		OperatingDays: req.OperatingDays,
		MaxCapacity:   req.MaxCapacity,
		MonthlyFee:    req.MonthlyFee,
		Status:        models.RouteStatusActive,
	})
	if err != nil {
		return nil, err
	}
	return &models.RouteView{Route: *route}, nil
}

// UpdateRoute applies a partial update. Shrinking max_capacity below the
// current active enrollment is rejected so the capacity invariant holds.
func (s *Service) UpdateRoute(ctx context.Context, id string, req models.UpdateRouteRequest) (*models.RouteView, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	if req.PickupTime != nil {
		if _, err := models.ParseClock(*req.PickupTime); err != nil {
			return nil, faults.Validation("pickup_time", "%s", err)
		}
	}
	if req.DropoffTime != nil {
		if _, err := models.ParseClock(*req.DropoffTime); err != nil {
			return nil, faults.Validation("dropoff_time", "%s", err)
		}
	}
	release, err := s.locks.acquire(s.lockTimeout, lockRoutes, id)
	if err != nil {
		return nil, err
	}
	defer release()
	r, err := s.store.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.store.CountActiveAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.MaxCapacity != nil && *req.MaxCapacity < active {
		return nil, faults.Validation("max_capacity",
			"max_capacity %d is below current active enrollment %d", *req.MaxCapacity, active)
	}
	if req.Name != nil {
		r.Name = *req.Name
	}
	if req.RouteNumber != nil {
		r.RouteNumber = *req.RouteNumber
	}
	if req.StartLocation != nil {
		r.StartLocation = *req.StartLocation
	}
	if req.EndLocation != nil {
		r.EndLocation = *req.EndLocation
	}
	if req.PickupTime != nil {
		r.PickupTime = *req.PickupTime
	}
	if req.DropoffTime != nil {
		r.DropoffTime = *req.DropoffTime
	}
	if req.OperatingDays != nil {
		r.OperatingDays = *req.OperatingDays
	}
	if req.MaxCapacity != nil {
		r.MaxCapacity = *req.MaxCapacity
	}
	if req.MonthlyFee != nil {
		r.MonthlyFee = *req.MonthlyFee
	}
	if req.Status != nil {
		r.Status = *req.Status
	}
	updated, err := s.store.UpdateRoute(ctx, *r)
	if err != nil {
		return nil, err
	}
	return &models.RouteView{Route: *updated, CurrentEnrollment: active}, nil
}

// SuspendRoute suspends a route; new assignments and trips are refused
// while suspended. Suspending twice is a no-op.
func (s *Service) SuspendRoute(ctx context.Context, id string) (*models.RouteView, error) {
	release, err := s.locks.acquire(s.lockTimeout, lockRoutes, id)
	if err != nil {
		return nil, err
	}
	defer release()
	r, err := s.store.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != models.RouteStatusSuspended {
		r.Status = models.RouteStatusSuspended
		if r, err = s.store.UpdateRoute(ctx, *r); err != nil {
			return nil, err
		}
	}
	return s.routeView(ctx, r)
}

// GetRoute returns a route with its derived enrollment count.
func (s *Service) GetRoute(ctx context.Context, id string) (*models.RouteView, error) {
	r, err := s.store.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.routeView(ctx, r)
}

// ListRoutes lists routes with derived enrollment, optionally by status.
func (s *Service) ListRoutes(ctx context.Context, status string) ([]models.RouteView, error) {
	f := db.RouteFilter{}
	if status != "" {
		st := models.RouteStatus(status)
		if !st.Valid() {
			return nil, faults.Validation("status", "unknown route status %q", status)
		}
		f.Status = st
	}
	routes, err := s.store.ListRoutes(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]models.RouteView, 0, len(routes))
	for i := range routes {
		v, err := s.routeView(ctx, &routes[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *Service) routeView(ctx context.Context, r *models.Route) (*models.RouteView, error) {
	active, err := s.store.CountActiveAssignments(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &models.RouteView{Route: *r, CurrentEnrollment: active}, nil
}

// --- student assignments ---

// CreateAssignment enrolls a student on a route, enforcing the route's
// max capacity under the route lock. The monthly fee defaults to the
// route's fee when omitted.
func (s *Service) CreateAssignment(ctx context.Context, req models.CreateAssignmentRequest) (*models.StudentAssignment, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockAssignments, req.RouteID)
	if err != nil {
		return nil, err
	}
	defer release()
	route, err := s.store.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusActive {
		return nil, faults.NotFound("active route", route.ID)
	}
	active, err := s.store.CountActiveAssignments(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	if err := constraints.AssignmentCapacity(*route, active); err != nil {
		return nil, err
	}
	fee := req.MonthlyFee
	if fee == 0 {
		fee = route.MonthlyFee
	}
	return s.store.CreateAssignment(ctx, models.StudentAssignment{
		StudentID:        req.StudentID,
		RouteID:          route.ID,
		PickupLocation:   req.PickupLocation,
		DropoffLocation:  req.DropoffLocation,
		ContactPhone:     req.ContactPhone,
		EmergencyContact: req.EmergencyContact,
		MonthlyFee:       fee,
		PaymentStatus:    models.PaymentStatusPending,
		Status:           models.AssignmentStatusActive,
	})
}

// UpdateAssignment updates contact or billing details.
func (s *Service) UpdateAssignment(ctx context.Context, id string, req models.UpdateAssignmentRequest) (*models.StudentAssignment, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, lockAssignments, id)
	if err != nil {
		return nil, err
	}
	defer release()
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PickupLocation != nil {
		a.PickupLocation = *req.PickupLocation
	}
	if req.DropoffLocation != nil {
		a.DropoffLocation = *req.DropoffLocation
	}
	if req.ContactPhone != nil {
		a.ContactPhone = *req.ContactPhone
	}
	if req.EmergencyContact != nil {
		a.EmergencyContact = *req.EmergencyContact
	}
	if req.MonthlyFee != nil {
		a.MonthlyFee = *req.MonthlyFee
	}
	if req.PaymentStatus != nil {
		a.PaymentStatus = *req.PaymentStatus
	}
	return s.store.UpdateAssignment(ctx, *a)
}

// CancelAssignment frees the student's seat on the route. Cancelling an
// already-cancelled assignment is rejected.
func (s *Service) CancelAssignment(ctx context.Context, id string) (*models.StudentAssignment, error) {
	release, err := s.locks.acquire(s.lockTimeout, lockAssignments, id)
	if err != nil {
		return nil, err
	}
	defer release()
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AssignmentStatusCancelled {
		return nil, faults.Validation("status", "assignment is already cancelled")
	}
	a.Status = models.AssignmentStatusCancelled
	return s.store.UpdateAssignment(ctx, *a)
}

// GetAssignment looks up one assignment.
func (s *Service) GetAssignment(ctx context.Context, id string) (*models.StudentAssignment, error) {
	return s.store.GetAssignment(ctx, id)
}

// ListAssignments lists assignments, optionally by route, student and status.
func (s *Service) ListAssignments(ctx context.Context, routeID, studentID, status string) ([]models.StudentAssignment, error) {
	f := db.AssignmentFilter{RouteID: routeID, StudentID: studentID}
	if status != "" {
		st := models.AssignmentStatus(status)
		if st != models.AssignmentStatusActive && st != models.AssignmentStatusCancelled {
			return nil, faults.Validation("status", "unknown assignment status %q", status)
		}
		f.Status = st
	}
	return s.store.ListAssignments(ctx, f)
}

// --- trips ---

// ScheduleTrip books a trip after locking the route, vehicle and driver.
func (s *Service) ScheduleTrip(ctx context.Context, req models.ScheduleTripRequest) (*models.Trip, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	release, err := s.locks.acquire(s.lockTimeout, req.RouteID, req.VehicleID, req.DriverID)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.engine.ScheduleTrip(ctx, req)
}

// StartTrip moves a trip to in_progress.
func (s *Service) StartTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.tripLifecycle(ctx, id, s.engine.StartTrip)
}

// CancelTrip cancels a trip, keeping the record for history.
func (s *Service) CancelTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.tripLifecycle(ctx, id, s.engine.CancelTrip)
}

// CompleteTrip completes an in-progress trip.
func (s *Service) CompleteTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.tripLifecycle(ctx, id, s.engine.CompleteTrip)
}

// tripLifecycle serializes a lifecycle transition against the trip and
// the vehicle/driver it holds.
func (s *Service) tripLifecycle(ctx context.Context, id string,
	op func(context.Context, string) (*models.Trip, error)) (*models.Trip, error) {

	release, err := s.locks.acquire(s.lockTimeout, id)
	if err != nil {
		return nil, err
	}
	defer release()
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	inner, err := s.locks.acquire(s.lockTimeout, trip.VehicleID, trip.DriverID)
	if err != nil {
		return nil, err
	}
	defer inner()
	return op(ctx, id)
}

// GetTrip looks up one trip.
func (s *Service) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.store.GetTrip(ctx, id)
}

// ListTrips lists trips, optionally by route, vehicle, driver, date and status.
func (s *Service) ListTrips(ctx context.Context, f db.TripFilter) ([]models.Trip, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, faults.Validation("status", "unknown trip status %q", f.Status)
	}
	return s.store.ListTrips(ctx, f)
}

// --- maintenance ---

// ScheduleMaintenance books a service for a vehicle. The open record
// blocks trips for that vehicle on the scheduled date.
func (s *Service) ScheduleMaintenance(ctx context.Context, req models.ScheduleMaintenanceRequest) (*models.MaintenanceRecord, error) {
	if err := s.checkPayload(req); err != nil {
		return nil, err
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, faults.Validation("date", "%s", err)
	}
	release, err := s.locks.acquire(s.lockTimeout, req.VehicleID)
	if err != nil {
		return nil, err
	}
	defer release()
	vehicle, err := s.store.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == models.VehicleStatusRetired {
		return nil, faults.Validation("vehicle_id", "vehicle %s is retired", vehicle.ID)
	}
	rec, err := s.store.CreateMaintenance(ctx, models.MaintenanceRecord{
		VehicleID:   vehicle.ID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Date:        req.Date,
		Status:      models.MaintenanceStatusScheduled,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"maintenance_id": rec.ID, "vehicle_id": vehicle.ID,
		"service_type": rec.ServiceType, "date": rec.Date,
	}).Info("Maintenance scheduled")
	s.events.MaintenanceEvent("scheduled", *rec)
	return rec, nil
}

// StartMaintenance moves a scheduled record to in_progress and takes the
// vehicle out of the active pool.
func (s *Service) StartMaintenance(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	release, err := s.locks.acquire(s.lockTimeout, id)
	if err != nil {
		return nil, err
	}
	defer release()
	rec, err := s.store.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}
	inner, err := s.locks.acquire(s.lockTimeout, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	defer inner()
	if rec.Status != models.MaintenanceStatusScheduled {
		return nil, faults.Validation("status", "maintenance cannot start from status %q", rec.Status)
	}
	rec.Status = models.MaintenanceStatusInProgress
	updated, err := s.store.UpdateMaintenance(ctx, *rec)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.store.GetVehicle(ctx, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == models.VehicleStatusActive {
		vehicle.Status = models.VehicleStatusMaintenance
		if _, err := s.store.UpdateVehicle(ctx, *vehicle); err != nil {
			return nil, err
		}
	}
	s.events.MaintenanceEvent("started", *updated)
	return updated, nil
}

// CompleteMaintenance completes an open record and returns the vehicle to
// the active pool when maintenance had sidelined it.
func (s *Service) CompleteMaintenance(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	release, err := s.locks.acquire(s.lockTimeout, id)
	if err != nil {
		return nil, err
	}
	defer release()
	rec, err := s.store.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}
	inner, err := s.locks.acquire(s.lockTimeout, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	defer inner()
	if !rec.Status.Open() {
		return nil, faults.Validation("status", "maintenance is already %s", rec.Status)
	}
	rec.Status = models.MaintenanceStatusCompleted
	updated, err := s.store.UpdateMaintenance(ctx, *rec)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.store.GetVehicle(ctx, rec.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == models.VehicleStatusMaintenance {
		open, err := s.store.ListMaintenance(ctx, db.MaintenanceFilter{VehicleID: vehicle.ID, OpenOnly: true})
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			vehicle.Status = models.VehicleStatusActive
			if _, err := s.store.UpdateVehicle(ctx, *vehicle); err != nil {
				return nil, err
			}
		}
	}
	s.events.MaintenanceEvent("completed", *updated)
	return updated, nil
}

// GetMaintenance looks up one maintenance record.
func (s *Service) GetMaintenance(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	return s.store.GetMaintenance(ctx, id)
}

// ListMaintenance lists maintenance records, optionally by vehicle and status.
func (s *Service) ListMaintenance(ctx context.Context, vehicleID, status string) ([]models.MaintenanceRecord, error) {
	f := db.MaintenanceFilter{VehicleID: vehicleID}
	if status != "" {
		st := models.MaintenanceStatus(status)
		if !st.Valid() {
			return nil, faults.Validation("status", "unknown maintenance status %q", status)
		}
		f.Status = st
	}
	return s.store.ListMaintenance(ctx, f)
}

// --- dashboard ---

// Dashboard returns the aggregate fleet document for the UI.
func (s *Service) Dashboard(ctx context.Context) (*dashboard.Snapshot, error) {
	return s.agg.Dashboard(ctx)
}

// TripCompletionRate reports the completion percentage over a date range.
func (s *Service) TripCompletionRate(ctx context.Context, from, to string) (float64, error) {
	if from != "" {
		if _, err := models.ParseDate(from); err != nil {
			return 0, faults.Validation("from", "%s", err)
		}
	}
	if to != "" {
		if _, err := models.ParseDate(to); err != nil {
			return 0, faults.Validation("to", "%s", err)
		}
	}
	return s.agg.TripCompletionRate(ctx, dashboard.DateRange{From: from, To: to})
}
