package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/school-transport/internal/dashboard"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/notify"
	"github.com/ukydev/school-transport/internal/scheduling"
)

func newService(store *db.MemoryStore) *Service {
	engine := scheduling.NewEngine(store, notify.Noop{})
	agg := dashboard.NewAggregator(store, 0)
	return New(store, engine, agg, notify.Noop{}, 0)
}

func seedRoute(t *testing.T, svc *Service, maxCapacity int) *models.RouteView {
	t.Helper()
	route, err := svc.CreateRoute(context.Background(), models.CreateRouteRequest{
		Name: "North Loop", RouteNumber: "R-01",
		StartLocation: "North Terminal", EndLocation: "Main Campus",
		PickupTime: "07:15", DropoffTime: "16:00",
		OperatingDays: models.Monday | models.Friday,
		MaxCapacity:   maxCapacity, MonthlyFee: 120,
	})
	assert.NoError(t, err)
	return route
}

func assignmentRequest(routeID, studentID string) models.CreateAssignmentRequest {
	return models.CreateAssignmentRequest{
		StudentID: studentID, RouteID: routeID,
		PickupLocation: "Stop 3", DropoffLocation: "Main Campus",
		ContactPhone: "+90-555-0000001", EmergencyContact: "+90-555-0000002",
	}
}

func TestService_CreateVehicle_Validation(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateVehicle(ctx, models.CreateVehicleRequest{
		Number: "BUS-01", Type: "tractor", Capacity: 40,
		Make: "MAN", Model: "Lion's City", Year: 2021, LicensePlate: "SCH-1",
	})
	assert.True(t, faults.IsKind(err, faults.KindValidation))

	_, err = svc.CreateVehicle(ctx, models.CreateVehicleRequest{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: -1,
		Make: "MAN", Model: "Lion's City", Year: 2021, LicensePlate: "SCH-1",
	})
	assert.True(t, faults.IsKind(err, faults.KindValidation))

	v, err := svc.CreateVehicle(ctx, models.CreateVehicleRequest{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: 40,
		Make: "MAN", Model: "Lion's City", Year: 2021, LicensePlate: "SCH-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.VehicleStatusActive, v.Status)
}

func TestService_RetireVehicle_Idempotent(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()

	v, err := svc.CreateVehicle(ctx, models.CreateVehicleRequest{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: 40,
		Make: "MAN", Model: "Lion's City", Year: 2021, LicensePlate: "SCH-1",
	})
	assert.NoError(t, err)

	retired, err := svc.RetireVehicle(ctx, v.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.VehicleStatusRetired, retired.Status)

	again, err := svc.RetireVehicle(ctx, v.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.VehicleStatusRetired, again.Status)
}

func TestService_CreateDriver_Defaults(t *testing.T) {
	svc := newService(db.NewMemoryStore())

	d, err := svc.CreateDriver(context.Background(), models.CreateDriverRequest{
		PersonnelID: "P-100", Name: "Ayse Demir",
		LicenseNumber: "DL-1", LicenseClass: models.LicenseClassD,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.DriverStatusActive, d.Status)
	assert.Equal(t, models.DriverAvailable, d.Availability)
}

func TestService_RouteCapacityEnforced(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()
	route := seedRoute(t, svc, 2)

	a1, err := svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-1"))
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, a1.PaymentStatus)
	// Fee defaults from the route.
	assert.Equal(t, 120.0, a1.MonthlyFee)

	_, err = svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-2"))
	assert.NoError(t, err)

	// Third enrollment hits the cap.
	_, err = svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-3"))
	assert.True(t, faults.IsKind(err, faults.KindRouteFull))

	// Cancelling frees a seat.
	_, err = svc.CancelAssignment(ctx, a1.ID)
	assert.NoError(t, err)
	_, err = svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-3"))
	assert.NoError(t, err)

	view, err := svc.GetRoute(ctx, route.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, view.CurrentEnrollment)
}

func TestService_CancelAssignment_Twice(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()
	route := seedRoute(t, svc, 5)

	a, err := svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-1"))
	assert.NoError(t, err)

	_, err = svc.CancelAssignment(ctx, a.ID)
	assert.NoError(t, err)
	_, err = svc.CancelAssignment(ctx, a.ID)
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestService_SuspendedRouteRefusesAssignments(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()
	route := seedRoute(t, svc, 5)

	_, err := svc.SuspendRoute(ctx, route.ID)
	assert.NoError(t, err)

	_, err = svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU-1"))
	assert.True(t, faults.IsKind(err, faults.KindNotFound))
}

func TestService_UpdateRoute_CapacityBelowEnrollment(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()
	route := seedRoute(t, svc, 5)

	for _, sid := range []string{"STU-1", "STU-2", "STU-3"} {
		_, err := svc.CreateAssignment(ctx, assignmentRequest(route.ID, sid))
		assert.NoError(t, err)
	}

	two := 2
	_, err := svc.UpdateRoute(ctx, route.ID, models.UpdateRouteRequest{MaxCapacity: &two})
	assert.True(t, faults.IsKind(err, faults.KindValidation))

	four := 4
	updated, err := svc.UpdateRoute(ctx, route.ID, models.UpdateRouteRequest{MaxCapacity: &four})
	assert.NoError(t, err)
	assert.Equal(t, 4, updated.MaxCapacity)
	assert.Equal(t, 3, updated.CurrentEnrollment)
}

func TestService_ConcurrentAssignmentsNeverOverfill(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()
	route := seedRoute(t, svc, 3)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateAssignment(ctx, assignmentRequest(route.ID, "STU"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.True(t, faults.IsKind(err, faults.KindRouteFull))
		}
	}
	assert.Equal(t, 3, ok)
}

func TestService_MaintenanceLifecycle(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()

	v, err := svc.CreateVehicle(ctx, models.CreateVehicleRequest{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: 40,
		Make: "MAN", Model: "Lion's City", Year: 2021, LicensePlate: "SCH-1",
	})
	assert.NoError(t, err)

	rec, err := svc.ScheduleMaintenance(ctx, models.ScheduleMaintenanceRequest{
		VehicleID: v.ID, ServiceType: "inspection", Date: "2026-09-10",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusScheduled, rec.Status)

	started, err := svc.StartMaintenance(ctx, rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusInProgress, started.Status)

	// The vehicle leaves the active pool while in the shop.
	vehicle, _ := svc.GetVehicle(ctx, v.ID)
	assert.Equal(t, models.VehicleStatusMaintenance, vehicle.Status)

	done, err := svc.CompleteMaintenance(ctx, rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.MaintenanceStatusCompleted, done.Status)

	vehicle, _ = svc.GetVehicle(ctx, v.ID)
	assert.Equal(t, models.VehicleStatusActive, vehicle.Status)

	// Completing twice is rejected.
	_, err = svc.CompleteMaintenance(ctx, rec.ID)
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestService_ScheduleMaintenance_BadDate(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	_, err := svc.ScheduleMaintenance(context.Background(), models.ScheduleMaintenanceRequest{
		VehicleID: "v1", ServiceType: "inspection", Date: "next tuesday",
	})
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestService_ListStatusValidation(t *testing.T) {
	svc := newService(db.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.ListVehicles(ctx, "broken")
	assert.True(t, faults.IsKind(err, faults.KindValidation))
	_, err = svc.ListDrivers(ctx, "", "busy")
	assert.True(t, faults.IsKind(err, faults.KindValidation))
	_, err = svc.ListMaintenance(ctx, "", "pending")
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestLockManager_Timeout(t *testing.T) {
	m := newLockManager()

	release, err := m.acquire(50*time.Millisecond, "a", "b")
	assert.NoError(t, err)

	// A second acquisition of an overlapping set times out.
	_, err = m.acquire(50*time.Millisecond, "b", "c")
	assert.True(t, faults.IsKind(err, faults.KindRetryable))

	release()
	release2, err := m.acquire(50*time.Millisecond, "b", "c")
	assert.NoError(t, err)
	release2()
}

func TestLockManager_DuplicateIDs(t *testing.T) {
	m := newLockManager()

	// Duplicate ids in one call must not self-deadlock.
	release, err := m.acquire(50*time.Millisecond, "x", "x", "")
	assert.NoError(t, err)
	release()
}
