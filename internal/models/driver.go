package models

import "time"

// LicenseClass is a driving license category. Classes are ordered
// B < C < D; a higher class covers every vehicle a lower class may drive.
type LicenseClass string

const (
	LicenseClassB LicenseClass = "B"
	LicenseClassC LicenseClass = "C"
	LicenseClassD LicenseClass = "D"
)

func (c LicenseClass) Valid() bool {
	switch c {
	case LicenseClassB, LicenseClassC, LicenseClassD:
		return true
	default:
		return false
	}
}

// Rank returns the ordering position of the class (B=1, C=2, D=3),
// 0 for unknown classes.
func (c LicenseClass) Rank() int {
	switch c {
	case LicenseClassB:
		return 1
	case LicenseClassC:
		return 2
	case LicenseClassD:
		return 3
	default:
		return 0
	}
}

// Covers reports whether the class satisfies the given minimum class.
func (c LicenseClass) Covers(min LicenseClass) bool {
	return c.Rank() >= min.Rank() && min.Rank() > 0
}

// RequiredLicenseClass returns the minimum license class for a vehicle type.
func RequiredLicenseClass(t VehicleType) LicenseClass {
	switch t {
	case VehicleTypeBus:
		return LicenseClassD
	case VehicleTypeVan:
		return LicenseClassC
	default:
		return LicenseClassB
	}
}

// DriverStatus represents a driver's employment lifecycle state.
type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "active"
	DriverStatusSuspended DriverStatus = "suspended"
	DriverStatusRetired   DriverStatus = "retired"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverStatusActive, DriverStatusSuspended, DriverStatusRetired:
		return true
	default:
		return false
	}
}

// DriverAvailability tracks whether a driver can take a trip right now.
// It is derived by the scheduling engine and never set by a CRUD edit.
type DriverAvailability string

const (
	DriverAvailable DriverAvailability = "available"
	DriverOnTrip    DriverAvailability = "on_trip"
	DriverOffDuty   DriverAvailability = "off_duty"
)

// Driver represents a fleet driver. PersonnelID links one-to-one to a
// personnel identity owned outside this service. LicenseNumber is unique.
type Driver struct {
	ID              string             `bson:"_id,omitempty" json:"id"`
	PersonnelID     string             `bson:"personnel_id" json:"personnel_id"`
	Name            string             `bson:"name" json:"name"`
	LicenseNumber   string             `bson:"license_number" json:"license_number"`
	LicenseClass    LicenseClass       `bson:"license_class" json:"license_class"`
	ExperienceYears int                `bson:"experience_years" json:"experience_years"`
	EmploymentType  string             `bson:"employment_type" json:"employment_type"` // "full_time", "part_time", "contract"
	Status          DriverStatus       `bson:"status" json:"status"`
	Availability    DriverAvailability `bson:"availability" json:"availability"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateDriverRequest is the payload for registering a driver.
// Availability is intentionally absent: it is owned by the scheduler.
type CreateDriverRequest struct {
	PersonnelID     string       `json:"personnel_id" validate:"required"`
	Name            string       `json:"name" validate:"required"`
	LicenseNumber   string       `json:"license_number" validate:"required"`
	LicenseClass    LicenseClass `json:"license_class" validate:"required,oneof=B C D"`
	ExperienceYears int          `json:"experience_years" validate:"gte=0,lte=60"`
	EmploymentType  string       `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract"`
}

// UpdateDriverRequest is a partial update; nil fields are left unchanged.
type UpdateDriverRequest struct {
	Name            *string       `json:"name,omitempty" validate:"omitempty,min=1"`
	LicenseNumber   *string       `json:"license_number,omitempty" validate:"omitempty,min=1"`
	LicenseClass    *LicenseClass `json:"license_class,omitempty" validate:"omitempty,oneof=B C D"`
	ExperienceYears *int          `json:"experience_years,omitempty" validate:"omitempty,gte=0,lte=60"`
	EmploymentType  *string       `json:"employment_type,omitempty" validate:"omitempty,oneof=full_time part_time contract"`
	Status          *DriverStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended retired"`
}
