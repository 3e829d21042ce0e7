package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/notify"
)

type fixture struct {
	store   *db.MemoryStore
	engine  *Engine
	route   *models.Route
	vehicle *models.Vehicle
	driver  *models.Driver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	ctx := context.Background()

	route, err := store.CreateRoute(ctx, models.Route{
		Name: "North Loop", RouteNumber: "R-01",
		PickupTime: "07:15", DropoffTime: "16:00",
		OperatingDays: models.Monday | models.Friday,
		MaxCapacity:   40, Status: models.RouteStatusActive,
	})
	assert.NoError(t, err)

	vehicle, err := store.CreateVehicle(ctx, models.Vehicle{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: 48,
		LicensePlate: "SCH-1001", Status: models.VehicleStatusActive,
	})
	assert.NoError(t, err)

	driver, err := store.CreateDriver(ctx, models.Driver{
		Name: "Ayse Demir", LicenseNumber: "DL-1", LicenseClass: models.LicenseClassD,
		Status: models.DriverStatusActive, Availability: models.DriverAvailable,
	})
	assert.NoError(t, err)

	return &fixture{
		store:   store,
		engine:  NewEngine(store, notify.Noop{}),
		route:   route,
		vehicle: vehicle,
		driver:  driver,
	}
}

func (f *fixture) request() models.ScheduleTripRequest {
	return models.ScheduleTripRequest{
		RouteID: f.route.ID, VehicleID: f.vehicle.ID, DriverID: f.driver.ID,
		Date: "2026-09-07", StartTime: "07:00", EndTime: "08:30",
	}
}

func TestEngine_ScheduleTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip, err := f.engine.ScheduleTrip(ctx, f.request())
	assert.NoError(t, err)
	assert.Equal(t, models.TripStatusScheduled, trip.Status)

	// Scheduling marks the driver on_trip.
	driver, _ := f.store.GetDriver(ctx, f.driver.ID)
	assert.Equal(t, models.DriverOnTrip, driver.Availability)
}

func TestEngine_ScheduleTrip_BadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.Date = "07/09/2026"
	_, err := f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindValidation))

	req = f.request()
	req.EndTime = "07:00"
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindValidation))

	req = f.request()
	req.RouteID = "missing"
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindNotFound))
}

func TestEngine_ScheduleTrip_InactiveEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.route.Status = models.RouteStatusSuspended
	_, err := f.store.UpdateRoute(ctx, *f.route)
	assert.NoError(t, err)

	_, err = f.engine.ScheduleTrip(ctx, f.request())
	assert.True(t, faults.IsKind(err, faults.KindNotFound))
}

func TestEngine_ScheduleTrip_CapacityAndLicense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Vehicle too small for the route.
	small, err := f.store.CreateVehicle(ctx, models.Vehicle{
		Number: "VAN-01", Type: models.VehicleTypeVan, Capacity: 14,
		LicensePlate: "SCH-2001", Status: models.VehicleStatusActive,
	})
	assert.NoError(t, err)
	req := f.request()
	req.VehicleID = small.ID
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindCapacity))

	// Driver class below the bus minimum.
	classB, err := f.store.CreateDriver(ctx, models.Driver{
		Name: "Elif", LicenseNumber: "DL-2", LicenseClass: models.LicenseClassB,
		Status: models.DriverStatusActive, Availability: models.DriverAvailable,
	})
	assert.NoError(t, err)
	req = f.request()
	req.DriverID = classB.ID
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindLicenseMismatch))
}

func TestEngine_ScheduleTrip_Overlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.ScheduleTrip(ctx, f.request())
	assert.NoError(t, err)

	// Same vehicle, overlapping window.
	req := f.request()
	req.StartTime = "08:00"
	req.EndTime = "09:00"
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))

	// Back-to-back is allowed.
	req = f.request()
	req.StartTime = "08:30"
	req.EndTime = "10:00"
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.NoError(t, err)
}

func TestEngine_ScheduleTrip_MaintenanceBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateMaintenance(ctx, models.MaintenanceRecord{
		VehicleID: f.vehicle.ID, ServiceType: "inspection",
		Date: "2026-09-07", Status: models.MaintenanceStatusScheduled,
	})
	assert.NoError(t, err)

	_, err = f.engine.ScheduleTrip(ctx, f.request())
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))

	// Other dates are unaffected.
	req := f.request()
	req.Date = "2026-09-08"
	_, err = f.engine.ScheduleTrip(ctx, req)
	assert.NoError(t, err)
}

func TestEngine_TripLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip, err := f.engine.ScheduleTrip(ctx, f.request())
	assert.NoError(t, err)

	started, err := f.engine.StartTrip(ctx, trip.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TripStatusInProgress, started.Status)

	// Cannot start twice.
	_, err = f.engine.StartTrip(ctx, trip.ID)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))

	completed, err := f.engine.CompleteTrip(ctx, trip.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TripStatusCompleted, completed.Status)

	// Completion releases the driver.
	driver, _ := f.store.GetDriver(ctx, f.driver.ID)
	assert.Equal(t, models.DriverAvailable, driver.Availability)

	// Cannot complete or cancel a completed trip.
	_, err = f.engine.CompleteTrip(ctx, trip.ID)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))
	_, err = f.engine.CancelTrip(ctx, trip.ID)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))
}

func TestEngine_CancelTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip, err := f.engine.ScheduleTrip(ctx, f.request())
	assert.NoError(t, err)

	cancelled, err := f.engine.CancelTrip(ctx, trip.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, cancelled.Status)

	// The record survives for history and the driver is released.
	got, err := f.store.GetTrip(ctx, trip.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, got.Status)
	driver, _ := f.store.GetDriver(ctx, f.driver.ID)
	assert.Equal(t, models.DriverAvailable, driver.Availability)

	// A second cancel is rejected.
	_, err = f.engine.CancelTrip(ctx, trip.ID)
	assert.True(t, faults.IsKind(err, faults.KindSchedulingConflict))
}

func TestEngine_DriverHeldByOtherLiveTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.ScheduleTrip(ctx, f.request())
	assert.NoError(t, err)

	second := f.request()
	second.StartTime = "09:00"
	second.EndTime = "10:00"
	_, err = f.engine.ScheduleTrip(ctx, second)
	assert.NoError(t, err)

	// Cancelling one of two live trips keeps the driver on_trip.
	_, err = f.engine.CancelTrip(ctx, first.ID)
	assert.NoError(t, err)
	driver, _ := f.store.GetDriver(ctx, f.driver.ID)
	assert.Equal(t, models.DriverOnTrip, driver.Availability)
}
