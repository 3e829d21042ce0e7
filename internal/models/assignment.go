package models

import "time"

// PaymentStatus tracks the billing state of a student assignment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// AssignmentStatus represents a student assignment's lifecycle state.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// StudentAssignment enrolls a student (owned externally) on a route.
// The count of active assignments for a route never exceeds the route's
// max capacity.
type StudentAssignment struct {
	ID               string           `bson:"_id,omitempty" json:"id"`
	StudentID        string           `bson:"student_id" json:"student_id"`
	RouteID          string           `bson:"route_id" json:"route_id"`
	PickupLocation   string           `bson:"pickup_location" json:"pickup_location"`
	DropoffLocation  string           `bson:"dropoff_location" json:"dropoff_location"`
	ContactPhone     string           `bson:"contact_phone" json:"contact_phone"`
	EmergencyContact string           `bson:"emergency_contact" json:"emergency_contact"`
	MonthlyFee       float64          `bson:"monthly_fee" json:"monthly_fee"`
	PaymentStatus    PaymentStatus    `bson:"payment_status" json:"payment_status"`
	Status           AssignmentStatus `bson:"status" json:"status"`
	CreatedAt        time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `bson:"updated_at" json:"updated_at"`
}

// CreateAssignmentRequest is the payload for enrolling a student on a route.
type CreateAssignmentRequest struct {
	StudentID        string  `json:"student_id" validate:"required"`
	RouteID          string  `json:"route_id" validate:"required"`
	PickupLocation   string  `json:"pickup_location" validate:"required"`
	DropoffLocation  string  `json:"dropoff_location" validate:"required"`
	ContactPhone     string  `json:"contact_phone" validate:"required"`
	EmergencyContact string  `json:"emergency_contact" validate:"required"`
	MonthlyFee       float64 `json:"monthly_fee" validate:"gte=0"`
}

// UpdateAssignmentRequest updates contact or billing details; route and
// student bindings are immutable (cancel and re-create instead).
type UpdateAssignmentRequest struct {
	PickupLocation   *string        `json:"pickup_location,omitempty" validate:"omitempty,min=1"`
	DropoffLocation  *string        `json:"dropoff_location,omitempty" validate:"omitempty,min=1"`
	ContactPhone     *string        `json:"contact_phone,omitempty" validate:"omitempty,min=1"`
	EmergencyContact *string        `json:"emergency_contact,omitempty" validate:"omitempty,min=1"`
	MonthlyFee       *float64       `json:"monthly_fee,omitempty" validate:"omitempty,gte=0"`
	PaymentStatus    *PaymentStatus `json:"payment_status,omitempty" validate:"omitempty,oneof=pending paid overdue"`
}
