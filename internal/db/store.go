// Package db holds the entity store: the single authoritative owner of
// vehicle, driver, route, assignment, trip and maintenance records.
// Every other package reads through it and never caches entity state.
package db

import (
	"context"

	"github.com/ukydev/school-transport/internal/models"
)

// VehicleFilter narrows vehicle listings.
type VehicleFilter struct {
	Status models.VehicleStatus
}

// DriverFilter narrows driver listings.
type DriverFilter struct {
	Status       models.DriverStatus
	Availability models.DriverAvailability
}

// RouteFilter narrows route listings.
type RouteFilter struct {
	Status models.RouteStatus
}

// AssignmentFilter narrows student-assignment listings.
type AssignmentFilter struct {
	RouteID   string
	StudentID string
	Status    models.AssignmentStatus
}

// TripFilter narrows trip listings. LiveOnly keeps scheduled and
// in-progress trips; DateFrom/DateTo bound the scheduled date, inclusive.
type TripFilter struct {
	RouteID   string
	VehicleID string
	DriverID  string
	Date      string
	DateFrom  string
	DateTo    string
	Status    models.TripStatus
	LiveOnly  bool
}

// MaintenanceFilter narrows maintenance listings.
type MaintenanceFilter struct {
	VehicleID string
	Status    models.MaintenanceStatus
	OpenOnly  bool
}

// EntityStore is the storage contract for the transport fleet. Create
// assigns ids and timestamps and enforces uniqueness on vehicle number,
// license plate, driver license number and route number; Update enforces
// the same against other records. Delete refuses while any trip or
// assignment still references the entity. List returns a fresh snapshot
// slice each call. All errors are faults-typed.
type EntityStore interface {
	CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	ListVehicles(ctx context.Context, f VehicleFilter) ([]models.Vehicle, error)

	CreateDriver(ctx context.Context, d models.Driver) (*models.Driver, error)
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	UpdateDriver(ctx context.Context, d models.Driver) (*models.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	ListDrivers(ctx context.Context, f DriverFilter) ([]models.Driver, error)

	CreateRoute(ctx context.Context, r models.Route) (*models.Route, error)
	GetRoute(ctx context.Context, id string) (*models.Route, error)
	UpdateRoute(ctx context.Context, r models.Route) (*models.Route, error)
	DeleteRoute(ctx context.Context, id string) error
	ListRoutes(ctx context.Context, f RouteFilter) ([]models.Route, error)

	CreateAssignment(ctx context.Context, a models.StudentAssignment) (*models.StudentAssignment, error)
	GetAssignment(ctx context.Context, id string) (*models.StudentAssignment, error)
	UpdateAssignment(ctx context.Context, a models.StudentAssignment) (*models.StudentAssignment, error)
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.StudentAssignment, error)
	CountActiveAssignments(ctx context.Context, routeID string) (int, error)

	CreateTrip(ctx context.Context, t models.Trip) (*models.Trip, error)
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, t models.Trip) (*models.Trip, error)
	ListTrips(ctx context.Context, f TripFilter) ([]models.Trip, error)

	CreateMaintenance(ctx context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error)
	GetMaintenance(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, m models.MaintenanceRecord) (*models.MaintenanceRecord, error)
	ListMaintenance(ctx context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error)
}

// UserStore is the storage contract for staff accounts.
type UserStore interface {
	InsertUser(ctx context.Context, user models.User) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
