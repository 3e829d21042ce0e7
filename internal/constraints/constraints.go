// Package constraints holds the pure constraint checks run before any
// state-changing transport operation commits. Nothing here mutates state;
// callers load the records and pass them in, so the same checks serve
// UI-side pre-validation and the authoritative server-side run.
package constraints

import (
	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
)

// VehicleForRoute checks that a vehicle bound as a route's primary vehicle
// can seat the route's maximum enrollment.
func VehicleForRoute(vehicle models.Vehicle, route models.Route) error {
	if vehicle.Capacity < route.MaxCapacity {
		return faults.Capacity(vehicle.ID, vehicle.Capacity, route.MaxCapacity)
	}
	return nil
}

// DriverForVehicle checks the driver's license class against the minimum
// class for the vehicle type (car: B, van: C, bus: D; ordered B < C < D).
func DriverForVehicle(driver models.Driver, vehicle models.Vehicle) error {
	required := models.RequiredLicenseClass(vehicle.Type)
	if !driver.LicenseClass.Covers(required) {
		return faults.LicenseMismatch(driver.ID, string(driver.LicenseClass), string(required))
	}
	return nil
}

// AssignmentCapacity checks that the route can take one more active
// assignment. activeCount is the current count of active assignments.
func AssignmentCapacity(route models.Route, activeCount int) error {
	if activeCount >= route.MaxCapacity {
		return faults.RouteFull(route.ID, route.MaxCapacity)
	}
	return nil
}

// TripWindow checks the requested [start,end) window on the given date
// against the vehicle's and driver's existing trips and the vehicle's open
// maintenance records. existingTrips should hold every trip for the same
// vehicle or driver on that date; records in terminal states are ignored.
// Touching windows (end == next start) do not conflict.
func TripWindow(vehicle models.Vehicle, driver models.Driver, date string, start, end int,
	existingTrips []models.Trip, openMaintenance []models.MaintenanceRecord) error {

	for _, t := range existingTrips {
		if t.Date != date || !t.Status.Live() {
			continue
		}
		if t.VehicleID != vehicle.ID && t.DriverID != driver.ID {
			continue
		}
		tStart, err := models.ParseClock(t.StartTime)
		if err != nil {
			continue
		}
		tEnd, err := models.ParseClock(t.EndTime)
		if err != nil {
			continue
		}
		if models.WindowsOverlap(start, end, tStart, tEnd) {
			if t.VehicleID == vehicle.ID {
				return faults.SchedulingConflict(vehicle.ID,
					"vehicle is booked on trip %s from %s to %s", t.ID, t.StartTime, t.EndTime)
			}
			return faults.SchedulingConflict(driver.ID,
				"driver is booked on trip %s from %s to %s", t.ID, t.StartTime, t.EndTime)
		}
	}

	for _, m := range openMaintenance {
		if m.VehicleID != vehicle.ID || !m.Status.Open() {
			continue
		}
		// A maintenance booking takes the vehicle out of service for the
		// whole scheduled day.
		if m.Date == date {
			return faults.SchedulingConflict(vehicle.ID,
				"vehicle has maintenance (%s) scheduled on %s", m.ServiceType, m.Date)
		}
	}

	return nil
}
