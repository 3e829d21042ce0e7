// Package scheduling owns the trip state machine: it orchestrates the
// constraint validators and either commits a trip or rejects the request
// with a typed error. Callers must hold the per-entity locks for the
// route, vehicle and driver before invoking a mutation.
package scheduling

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/school-transport/internal/constraints"
	"github.com/ukydev/school-transport/internal/db"
	"github.com/ukydev/school-transport/internal/faults"
	"github.com/ukydev/school-transport/internal/metrics"
	"github.com/ukydev/school-transport/internal/models"
	"github.com/ukydev/school-transport/internal/notify"
)

// Engine schedules, starts, cancels and completes trips.
type Engine struct {
	store  db.EntityStore
	events notify.Publisher
}

// NewEngine creates a scheduling engine over the given store.
func NewEngine(store db.EntityStore, events notify.Publisher) *Engine {
	return &Engine{store: store, events: events}
}

// ScheduleTrip validates the route/vehicle/driver combination and the
// requested window, then atomically creates the trip and marks the driver
// on_trip. The first failing check aborts with its typed error and leaves
// the store unchanged.
func (e *Engine) ScheduleTrip(ctx context.Context, req models.ScheduleTripRequest) (*models.Trip, error) {
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, faults.Validation("date", "%s", err)
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return nil, faults.Validation("start_time", "%s", err)
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return nil, faults.Validation("end_time", "%s", err)
	}
	if end <= start {
		return nil, faults.Validation("end_time", "end time %s is not after start time %s", req.EndTime, req.StartTime)
	}

	route, err := e.store.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusActive {
		return nil, faults.NotFound("active route", route.ID)
	}
	vehicle, err := e.store.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != models.VehicleStatusActive {
		return nil, faults.NotFound("active vehicle", vehicle.ID)
	}
	driver, err := e.store.GetDriver(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver.Status != models.DriverStatusActive {
		return nil, faults.NotFound("active driver", driver.ID)
	}

	if err := constraints.VehicleForRoute(*vehicle, *route); err != nil {
		metrics.SchedulingRejections.WithLabelValues(string(faults.KindOf(err))).Inc()
		return nil, err
	}
	if err := constraints.DriverForVehicle(*driver, *vehicle); err != nil {
		metrics.SchedulingRejections.WithLabelValues(string(faults.KindOf(err))).Inc()
		return nil, err
	}

	existing, err := e.tripsTouching(ctx, vehicle.ID, driver.ID, req.Date)
	if err != nil {
		return nil, err
	}
	openMaint, err := e.store.ListMaintenance(ctx, db.MaintenanceFilter{VehicleID: vehicle.ID, OpenOnly: true})
	if err != nil {
		return nil, err
	}
	if err := constraints.TripWindow(*vehicle, *driver, req.Date, start, end, existing, openMaint); err != nil {
		metrics.SchedulingRejections.WithLabelValues(string(faults.KindOf(err))).Inc()
		return nil, err
	}

	trip, err := e.store.CreateTrip(ctx, models.Trip{
		RouteID:   route.ID,
		VehicleID: vehicle.ID,
		DriverID:  driver.ID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.TripStatusScheduled,
	})
	if err != nil {
		return nil, err
	}

	driver.Availability = models.DriverOnTrip
	if _, err := e.store.UpdateDriver(ctx, *driver); err != nil {
		return nil, err
	}

	metrics.TripsScheduled.Inc()
	log.WithFields(log.Fields{
		"trip_id": trip.ID, "route_id": route.ID,
		"vehicle_id": vehicle.ID, "driver_id": driver.ID,
		"date": trip.Date, "window": trip.StartTime + "-" + trip.EndTime,
	}).Info("Trip scheduled")
	e.events.TripEvent("scheduled", *trip)
	return trip, nil
}

// StartTrip moves a scheduled trip into in_progress.
func (e *Engine) StartTrip(ctx context.Context, id string) (*models.Trip, error) {
	trip, err := e.store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusScheduled {
		return nil, faults.SchedulingConflict(id, "trip cannot start from status %q", trip.Status)
	}
	trip.Status = models.TripStatusInProgress
	updated, err := e.store.UpdateTrip(ctx, *trip)
	if err != nil {
		return nil, err
	}
	e.events.TripEvent("started", *updated)
	return updated, nil
}

// CancelTrip cancels a scheduled or in-progress trip and releases the
// driver when no other live trip holds them. The record is kept for
// dashboard history. A second cancel is rejected, not repeated.
func (e *Engine) CancelTrip(ctx context.Context, id string) (*models.Trip, error) {
	trip, err := e.store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if !trip.Status.Live() {
		return nil, faults.SchedulingConflict(id, "trip is already %s", trip.Status)
	}
	trip.Status = models.TripStatusCancelled
	updated, err := e.store.UpdateTrip(ctx, *trip)
	if err != nil {
		return nil, err
	}
	if err := e.releaseDriver(ctx, trip.DriverID); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"trip_id": id, "driver_id": trip.DriverID}).Info("Trip cancelled")
	e.events.TripEvent("cancelled", *updated)
	return updated, nil
}

// CompleteTrip completes an in-progress trip and releases the driver when
// no other live trip holds them.
func (e *Engine) CompleteTrip(ctx context.Context, id string) (*models.Trip, error) {
	trip, err := e.store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, faults.SchedulingConflict(id, "trip cannot complete from status %q", trip.Status)
	}
	trip.Status = models.TripStatusCompleted
	updated, err := e.store.UpdateTrip(ctx, *trip)
	if err != nil {
		return nil, err
	}
	if err := e.releaseDriver(ctx, trip.DriverID); err != nil {
		return nil, err
	}
	e.events.TripEvent("completed", *updated)
	return updated, nil
}

// tripsTouching loads every live trip referencing the vehicle or driver on
// the given date.
func (e *Engine) tripsTouching(ctx context.Context, vehicleID, driverID, date string) ([]models.Trip, error) {
	byVehicle, err := e.store.ListTrips(ctx, db.TripFilter{VehicleID: vehicleID, Date: date, LiveOnly: true})
	if err != nil {
		return nil, err
	}
	byDriver, err := e.store.ListTrips(ctx, db.TripFilter{DriverID: driverID, Date: date, LiveOnly: true})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(byVehicle))
	merged := byVehicle
	for _, t := range byVehicle {
		seen[t.ID] = true
	}
	for _, t := range byDriver {
		if !seen[t.ID] {
			merged = append(merged, t)
		}
	}
	return merged, nil
}

// releaseDriver sets the driver back to available unless another live trip
// still holds them. Suspended and retired drivers are left untouched.
func (e *Engine) releaseDriver(ctx context.Context, driverID string) error {
	live, err := e.store.ListTrips(ctx, db.TripFilter{DriverID: driverID, LiveOnly: true})
	if err != nil {
		return err
	}
	if len(live) > 0 {
		return nil
	}
	driver, err := e.store.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.Availability != models.DriverOnTrip {
		return nil
	}
	driver.Availability = models.DriverAvailable
	_, err = e.store.UpdateDriver(ctx, *driver)
	return err
}
