package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
)

func TestVehicleForRoute(t *testing.T) {
	bus := models.Vehicle{ID: "v1", Type: models.VehicleTypeBus, Capacity: 40}

	assert.NoError(t, VehicleForRoute(bus, models.Route{ID: "r1", MaxCapacity: 40}))
	assert.NoError(t, VehicleForRoute(bus, models.Route{ID: "r1", MaxCapacity: 30}))

	err := VehicleForRoute(bus, models.Route{ID: "r1", MaxCapacity: 45})
	assert.True(t, faults.IsKind(err, faults.KindCapacity))
}

func TestDriverForVehicle(t *testing.T) {
	bus := models.Vehicle{ID: "v1", Type: models.VehicleTypeBus}
	van := models.Vehicle{ID: "v2", Type: models.VehicleTypeVan}
	car := models.Vehicle{ID: "v3", Type: models.VehicleTypeCar}

	classD := models.Driver{ID: "d1", LicenseClass: models.LicenseClassD}
	classC := models.Driver{ID: "d2", LicenseClass: models.LicenseClassC}
	classB := models.Driver{ID: "d3", LicenseClass: models.LicenseClassB}

	// D covers everything.
	assert.NoError(t, DriverForVehicle(classD, bus))
	assert.NoError(t, DriverForVehicle(classD, van))
	assert.NoError(t, DriverForVehicle(classD, car))

	// C covers van and car but not bus.
	assert.NoError(t, DriverForVehicle(classC, van))
	assert.NoError(t, DriverForVehicle(classC, car))
	assert.True(t, faults.IsKind(DriverForVehicle(classC, bus), faults.KindLicenseMismatch))

	// B covers car only.
	assert.NoError(t, DriverForVehicle(classB, car))
	assert.True(t, faults.IsKind(DriverForVehicle(classB, van), faults.KindLicenseMismatch))
	assert.True(t, faults.IsKind(DriverForVehicle(classB, bus), faults.KindLicenseMismatch))
}

func TestAssignmentCapacity(t *testing.T) {
	route := models.Route{ID: "r1", MaxCapacity: 2}

	assert.NoError(t, AssignmentCapacity(route, 0))
	assert.NoError(t, AssignmentCapacity(route, 1))
	assert.True(t, faults.IsKind(AssignmentCapacity(route, 2), faults.KindRouteFull))
	assert.True(t, faults.IsKind(AssignmentCapacity(route, 3), faults.KindRouteFull))
}

func TestTripWindow(t *testing.T) {
	vehicle := models.Vehicle{ID: "v1", Type: models.VehicleTypeBus, Capacity: 40}
	driver := models.Driver{ID: "d1", LicenseClass: models.LicenseClassD}
	date := "2026-09-07"

	booked := models.Trip{
		ID: "t1", VehicleID: "v1", DriverID: "other",
		Date: date, StartTime: "08:00", EndTime: "09:00",
		Status: models.TripStatusScheduled,
	}

	// Overlapping window on the same vehicle conflicts.
	err := TripWindow(vehicle, driver, date, mins(t, "08:30"), mins(t, "09:30"), []models.Trip{booked}, nil)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))

	// Back-to-back windows are fine.
	err = TripWindow(vehicle, driver, date, mins(t, "09:00"), mins(t, "10:00"), []models.Trip{booked}, nil)
	assert.NoError(t, err)

	// Same window on a different date is fine.
	err = TripWindow(vehicle, driver, "2026-09-08", mins(t, "08:30"), mins(t, "09:30"), []models.Trip{booked}, nil)
	assert.NoError(t, err)

	// Cancelled trips do not block.
	cancelled := booked
	cancelled.Status = models.TripStatusCancelled
	err = TripWindow(vehicle, driver, date, mins(t, "08:30"), mins(t, "09:30"), []models.Trip{cancelled}, nil)
	assert.NoError(t, err)

	// A driver booked on another vehicle conflicts too.
	driverBusy := models.Trip{
		ID: "t2", VehicleID: "other", DriverID: "d1",
		Date: date, StartTime: "08:00", EndTime: "09:00",
		Status: models.TripStatusInProgress,
	}
	err = TripWindow(vehicle, driver, date, mins(t, "08:30"), mins(t, "09:30"), []models.Trip{driverBusy}, nil)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))
}

func TestTripWindow_Maintenance(t *testing.T) {
	vehicle := models.Vehicle{ID: "v1", Type: models.VehicleTypeBus, Capacity: 40}
	driver := models.Driver{ID: "d1", LicenseClass: models.LicenseClassD}

	open := models.MaintenanceRecord{
		ID: "m1", VehicleID: "v1", ServiceType: "inspection",
		Date: "2026-09-07", Status: models.MaintenanceStatusScheduled,
	}

	// Maintenance blocks the whole scheduled day regardless of time.
	err := TripWindow(vehicle, driver, "2026-09-07", mins(t, "18:00"), mins(t, "19:00"), nil, []models.MaintenanceRecord{open})
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))

	// Other days are unaffected.
	err = TripWindow(vehicle, driver, "2026-09-08", mins(t, "08:00"), mins(t, "09:00"), nil, []models.MaintenanceRecord{open})
	assert.NoError(t, err)

	// Completed records do not block.
	done := open
	done.Status = models.MaintenanceStatusCompleted
	err = TripWindow(vehicle, driver, "2026-09-07", mins(t, "08:00"), mins(t, "09:00"), nil, []models.MaintenanceRecord{done})
	assert.NoError(t, err)
}

func mins(t *testing.T, clock string) int {
	t.Helper()
	m, err := models.ParseClock(clock)
	assert.NoError(t, err)
	return m
}
