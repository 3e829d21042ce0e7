package models

import "time"

// MaintenanceStatus represents a maintenance record's lifecycle state.
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceStatusScheduled, MaintenanceStatusInProgress, MaintenanceStatusCompleted:
		return true
	default:
		return false
	}
}

// Open reports whether the record still blocks the vehicle's schedule.
func (s MaintenanceStatus) Open() bool {
	return s == MaintenanceStatusScheduled || s == MaintenanceStatusInProgress
}

// MaintenanceRecord is a service booking for a vehicle. An open record
// blocks trips for that vehicle on its scheduled date.
type MaintenanceRecord struct {
	ID          string            `bson:"_id,omitempty" json:"id"`
	VehicleID   string            `bson:"vehicle_id" json:"vehicle_id"`
	ServiceType string            `bson:"service_type" json:"service_type"` // "oil_change", "tire_rotation", "brake_service", "inspection", "general"
	Description string            `bson:"description" json:"description"`
	Date        string            `bson:"date" json:"date"` // "YYYY-MM-DD"
	Status      MaintenanceStatus `bson:"status" json:"status"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at" json:"updated_at"`
}

// ScheduleMaintenanceRequest is the payload for booking a service.
type ScheduleMaintenanceRequest struct {
	VehicleID   string `json:"vehicle_id" validate:"required"`
	ServiceType string `json:"service_type" validate:"required,oneof=oil_change tire_rotation brake_service inspection general"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required"`
}
