package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekdays is a bit-set of operating weekdays.
type Weekdays uint8

const (
	Monday Weekdays = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = []struct {
	name string
	bit  Weekdays
}{
	{"monday", Monday},
	{"tuesday", Tuesday},
	{"wednesday", Wednesday},
	{"thursday", Thursday},
	{"friday", Friday},
	{"saturday", Saturday},
	{"sunday", Sunday},
}

// Has reports whether the given day bit is set.
func (w Weekdays) Has(day Weekdays) bool { return w&day != 0 }

// HasTime reports whether the set covers the weekday of t.
func (w Weekdays) HasTime(t time.Time) bool {
	switch t.Weekday() {
	case time.Monday:
		return w.Has(Monday)
	case time.Tuesday:
		return w.Has(Tuesday)
	case time.Wednesday:
		return w.Has(Wednesday)
	case time.Thursday:
		return w.Has(Thursday)
	case time.Friday:
		return w.Has(Friday)
	case time.Saturday:
		return w.Has(Saturday)
	default:
		return w.Has(Sunday)
	}
}

// MarshalJSON renders the set as an array of lowercase day names.
func (w Weekdays) MarshalJSON() ([]byte, error) {
	days := make([]string, 0, 7)
	for _, d := range weekdayNames {
		if w.Has(d.bit) {
			days = append(days, d.name)
		}
	}
	return json.Marshal(days)
}

// UnmarshalJSON accepts an array of day names, case-insensitive.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var days []string
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	var set Weekdays
	for _, name := range days {
		matched := false
		for _, d := range weekdayNames {
			if strings.ToLower(name) == d.name {
				set |= d.bit
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("unknown weekday %q", name)
		}
	}
	*w = set
	return nil
}

// RouteStatus represents a route's lifecycle state.
type RouteStatus string

const (
	RouteStatusActive    RouteStatus = "active"
	RouteStatusSuspended RouteStatus = "suspended"
)

func (s RouteStatus) Valid() bool {
	return s == RouteStatusActive || s == RouteStatusSuspended
}

// Route represents a school transport route. RouteNumber is unique.
// MaxCapacity bounds the number of active student assignments and must be
// covered by the capacity of any vehicle bound as the route's primary one.
type Route struct {
	ID            string      `bson:"_id,omitempty" json:"id"`
	Name          string      `bson:"name" json:"name"`
	RouteNumber   string      `bson:"route_number" json:"route_number"`
	StartLocation string      `bson:"start_location" json:"start_location"`
	EndLocation   string      `bson:"end_location" json:"end_location"`
	PickupTime    string      `bson:"pickup_time" json:"pickup_time"`   // "HH:MM"
	DropoffTime   string      `bson:"dropoff_time" json:"dropoff_time"` // "HH:MM"
	OperatingDays Weekdays    `bson:"operating_days" json:"operating_days"`
	MaxCapacity   int         `bson:"max_capacity" json:"max_capacity"`
	MonthlyFee    float64     `bson:"monthly_fee" json:"monthly_fee"`
	Status        RouteStatus `bson:"status" json:"status"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
}

// RouteView is a Route plus fields derived on read, never stored.
type RouteView struct {
	Route
	CurrentEnrollment int `json:"current_enrollment"`
}

// CreateRouteRequest is the payload for creating a route.
// current_enrollment is never accepted from the client.
type CreateRouteRequest struct {
	Name          string   `json:"name" validate:"required"`
	RouteNumber   string   `json:"route_number" validate:"required"`
	StartLocation string   `json:"start_location" validate:"required"`
	EndLocation   string   `json:"end_location" validate:"required"`
	PickupTime    string   `json:"pickup_time" validate:"required"`
	DropoffTime   string   `json:"dropoff_time" validate:"required"`
	OperatingDays Weekdays `json:"operating_days"`
	MaxCapacity   int      `json:"max_capacity" validate:"required,gt=0"`
	MonthlyFee    float64  `json:"monthly_fee" validate:"gte=0"`
}

// UpdateRouteRequest is a partial update; nil fields are left unchanged.
type UpdateRouteRequest struct {
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=1"`
	RouteNumber   *string      `json:"route_number,omitempty" validate:"omitempty,min=1"`
	StartLocation *string      `json:"start_location,omitempty" validate:"omitempty,min=1"`
	EndLocation   *string      `json:"end_location,omitempty" validate:"omitempty,min=1"`
	PickupTime    *string      `json:"pickup_time,omitempty" validate:"omitempty,min=1"`
	DropoffTime   *string      `json:"dropoff_time,omitempty" validate:"omitempty,min=1"`
	OperatingDays *Weekdays    `json:"operating_days,omitempty"`
	MaxCapacity   *int         `json:"max_capacity,omitempty" validate:"omitempty,gt=0"`
	MonthlyFee    *float64     `json:"monthly_fee,omitempty" validate:"omitempty,gte=0"`
	Status        *RouteStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended"`
}
