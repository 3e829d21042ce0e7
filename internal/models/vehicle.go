package models

import "time"

// VehicleType classifies a fleet vehicle.
type VehicleType string

const (
	VehicleTypeBus VehicleType = "bus"
	VehicleTypeVan VehicleType = "van"
	VehicleTypeCar VehicleType = "car"
)

// Valid reports whether the vehicle type is one of the known kinds.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeBus, VehicleTypeVan, VehicleTypeCar:
		return true
	default:
		return false
	}
}

// VehicleStatus represents a vehicle's lifecycle state.
type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusActive, VehicleStatusMaintenance, VehicleStatusRetired:
		return true
	default:
		return false
	}
}

// Vehicle represents a school fleet vehicle. Number and LicensePlate are
// unique across the fleet. Retired vehicles stay visible for historical
// trips but cannot be assigned to new ones.
type Vehicle struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	Number       string        `bson:"number" json:"number"`
	Type         VehicleType   `bson:"type" json:"type"`
	Capacity     int           `bson:"capacity" json:"capacity"` // seats
	Make         string        `bson:"make" json:"make"`
	Model        string        `bson:"model" json:"model"`
	Year         int           `bson:"year" json:"year"`
	LicensePlate string        `bson:"license_plate" json:"license_plate"`
	FuelType     string        `bson:"fuel_type" json:"fuel_type"` // "diesel", "petrol", "electric", "hybrid"
	Status       VehicleStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// CreateVehicleRequest is the payload for registering a vehicle.
type CreateVehicleRequest struct {
	Number       string      `json:"number" validate:"required"`
	Type         VehicleType `json:"type" validate:"required,oneof=bus van car"`
	Capacity     int         `json:"capacity" validate:"required,gt=0"`
	Make         string      `json:"make" validate:"required"`
	Model        string      `json:"model" validate:"required"`
	Year         int         `json:"year" validate:"required,gte=1980,lte=2100"`
	LicensePlate string      `json:"license_plate" validate:"required"`
	FuelType     string      `json:"fuel_type" validate:"omitempty,oneof=diesel petrol electric hybrid"`
}

// UpdateVehicleRequest is a partial update; nil fields are left unchanged.
type UpdateVehicleRequest struct {
	Number       *string        `json:"number,omitempty" validate:"omitempty,min=1"`
	Type         *VehicleType   `json:"type,omitempty" validate:"omitempty,oneof=bus van car"`
	Capacity     *int           `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Make         *string        `json:"make,omitempty" validate:"omitempty,min=1"`
	Model        *string        `json:"model,omitempty" validate:"omitempty,min=1"`
	Year         *int           `json:"year,omitempty" validate:"omitempty,gte=1980,lte=2100"`
	LicensePlate *string        `json:"license_plate,omitempty" validate:"omitempty,min=1"`
	FuelType     *string        `json:"fuel_type,omitempty" validate:"omitempty,oneof=diesel petrol electric hybrid"`
	Status       *VehicleStatus `json:"status,omitempty" validate:"omitempty,oneof=active maintenance retired"`
}
