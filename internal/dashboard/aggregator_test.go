package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
}

func newAggregator(store *db.MemoryStore) *Aggregator {
	agg := NewAggregator(store, 0)
	agg.now = fixedNow
	return agg
}

func TestAggregator_VehicleSummary(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	mk := func(number, plate string, status models.VehicleStatus) {
		_, err := store.CreateVehicle(ctx, models.Vehicle{
			Number: number, Type: models.VehicleTypeBus, Capacity: 40,
			LicensePlate: plate, Status: status,
		})
		assert.NoError(t, err)
	}
	mk("BUS-01", "P1", models.VehicleStatusActive)
	mk("BUS-02", "P2", models.VehicleStatusActive)
	mk("BUS-03", "P3", models.VehicleStatusMaintenance)
	mk("BUS-04", "P4", models.VehicleStatusRetired)

	sum, err := newAggregator(store).VehicleSummary(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.ByStatus["active"])
	assert.Equal(t, 1, sum.ByStatus["maintenance"])
	assert.Equal(t, 1, sum.ByStatus["retired"])
}

func TestAggregator_RouteUtilization(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	route, err := store.CreateRoute(ctx, models.Route{
		Name: "North", RouteNumber: "R-01", MaxCapacity: 40,
		Status: models.RouteStatusActive,
	})
	assert.NoError(t, err)
	for i := 0; i < 30; i++ {
		_, err := store.CreateAssignment(ctx, models.StudentAssignment{
			StudentID: "STU", RouteID: route.ID, Status: models.AssignmentStatusActive,
		})
		assert.NoError(t, err)
	}

	u, err := newAggregator(store).RouteUtilization(ctx, route.ID)
	assert.NoError(t, err)
	assert.Equal(t, 30, u.ActiveAssignments)
	assert.Equal(t, 75.0, u.UtilizationPct)
}

func TestAggregator_RouteUtilization_ZeroCapacity(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	route, err := store.CreateRoute(ctx, models.Route{
		Name: "Empty", RouteNumber: "R-09", MaxCapacity: 0,
	})
	assert.NoError(t, err)

	u, err := newAggregator(store).RouteUtilization(ctx, route.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, u.UtilizationPct)
}

func TestAggregator_TripCompletionRate(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	mk := func(date string, status models.TripStatus) {
		_, err := store.CreateTrip(ctx, models.Trip{
			RouteID: "r1", VehicleID: "v1", DriverID: "d1",
			Date: date, StartTime: "08:00", EndTime: "09:00", Status: status,
		})
		assert.NoError(t, err)
	}
	mk("2026-09-01", models.TripStatusCompleted)
	mk("2026-09-02", models.TripStatusCompleted)
	mk("2026-09-03", models.TripStatusCompleted)
	mk("2026-09-04", models.TripStatusCancelled)
	// Outside the queried range.
	mk("2026-08-01", models.TripStatusCancelled)

	rate, err := newAggregator(store).TripCompletionRate(ctx, DateRange{From: "2026-09-01", To: "2026-09-30"})
	assert.NoError(t, err)
	assert.Equal(t, 75.0, rate)
}

func TestAggregator_TripCompletionRate_Empty(t *testing.T) {
	store := db.NewMemoryStore()
	rate, err := newAggregator(store).TripCompletionRate(context.Background(), DateRange{})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestAggregator_TripCompletionRate_Rounding(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	mk := func(status models.TripStatus) {
		_, err := store.CreateTrip(ctx, models.Trip{
			RouteID: "r1", VehicleID: "v1", DriverID: "d1",
			Date: "2026-09-01", StartTime: "08:00", EndTime: "09:00", Status: status,
		})
		assert.NoError(t, err)
	}
	mk(models.TripStatusCompleted)
	mk(models.TripStatusCompleted)
	mk(models.TripStatusCancelled)

	// 2/3 rounds to one decimal.
	rate, err := newAggregator(store).TripCompletionRate(ctx, DateRange{})
	assert.NoError(t, err)
	assert.Equal(t, 66.7, rate)
}

func TestAggregator_MaintenanceAlerts(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	mk := func(date string, status models.MaintenanceStatus) {
		_, err := store.CreateMaintenance(ctx, models.MaintenanceRecord{
			VehicleID: "v1", ServiceType: "inspection", Date: date, Status: status,
		})
		assert.NoError(t, err)
	}
	// now is fixed at 2026-09-07; default lookahead is 7 days.
	mk("2026-09-10", models.MaintenanceStatusScheduled)
	mk("2026-09-07", models.MaintenanceStatusScheduled)
	mk("2026-09-20", models.MaintenanceStatusScheduled) // beyond horizon
	mk("2026-09-01", models.MaintenanceStatusScheduled) // past
	mk("2026-09-09", models.MaintenanceStatusCompleted) // not scheduled

	alerts, err := newAggregator(store).MaintenanceAlerts(ctx)
	assert.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, "2026-09-07", alerts[0].Date)
	assert.Equal(t, "2026-09-10", alerts[1].Date)
}

func TestAggregator_Dashboard(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	_, err := store.CreateVehicle(ctx, models.Vehicle{
		Number: "BUS-01", Type: models.VehicleTypeBus, Capacity: 40,
		LicensePlate: "P1", Status: models.VehicleStatusActive,
	})
	assert.NoError(t, err)
	_, err = store.CreateDriver(ctx, models.Driver{
		Name: "Ayse", LicenseNumber: "DL-1", LicenseClass: models.LicenseClassD,
		Status: models.DriverStatusActive, Availability: models.DriverAvailable,
	})
	assert.NoError(t, err)
	_, err = store.CreateRoute(ctx, models.Route{
		Name: "North", RouteNumber: "R-01", MaxCapacity: 40,
		Status: models.RouteStatusActive,
	})
	assert.NoError(t, err)

	snap, err := newAggregator(store).Dashboard(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.Vehicles.Total)
	assert.Equal(t, 1, snap.Drivers.Total)
	assert.Len(t, snap.Routes, 1)
	assert.Equal(t, fixedNow(), snap.GeneratedAt)
	assert.NotNil(t, snap.MaintenanceAlerts)
}
