package models

import "time"

// TripStatus represents a trip's lifecycle state.
// Transitions: scheduled -> in_progress -> completed;
// scheduled|in_progress -> cancelled. completed and cancelled are terminal.
type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusScheduled, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	default:
		return false
	}
}

// Live reports whether the trip still occupies its vehicle and driver.
func (s TripStatus) Live() bool {
	return s == TripStatusScheduled || s == TripStatusInProgress
}

// Trip is a scheduled run of a route with a concrete vehicle and driver.
// No two live trips may overlap on the same vehicle or driver.
type Trip struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	RouteID   string     `bson:"route_id" json:"route_id"`
	VehicleID string     `bson:"vehicle_id" json:"vehicle_id"`
	DriverID  string     `bson:"driver_id" json:"driver_id"`
	Date      string     `bson:"date" json:"date"`             // "YYYY-MM-DD"
	StartTime string     `bson:"start_time" json:"start_time"` // "HH:MM"
	EndTime   string     `bson:"end_time" json:"end_time"`     // "HH:MM"
	Status    TripStatus `bson:"status" json:"status"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// ScheduleTripRequest is the payload for scheduling a trip.
type ScheduleTripRequest struct {
	RouteID   string `json:"route_id" validate:"required"`
	VehicleID string `json:"vehicle_id" validate:"required"`
	DriverID  string `json:"driver_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}
