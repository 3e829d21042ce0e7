// Package faults defines the typed errors every transport operation can
// return. Validation and business-rule rejections are deterministic and
// must not be retried; only Retryable signals transient contention.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates error categories on the wire and in tests.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindDuplicateKey         Kind = "duplicate_key"
	KindNotFound             Kind = "not_found"
	KindCapacity             Kind = "capacity"
	KindLicenseMismatch      Kind = "license_mismatch"
	KindRouteFull            Kind = "route_full"
	KindSchedulingConflict   Kind = "scheduling_conflict"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindRetryable            Kind = "retryable"
)

// Error carries the error kind plus the offending field or entity id so
// callers can correct their input.
type Error struct {
	Kind     Kind   `json:"kind"`
	Field    string `json:"field,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Message  string `json:"error"`
}

func (e *Error) Error() string { return e.Message }

// Validation reports malformed or missing input on the named field.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateKey reports a unique-constraint collision on the named field.
func DuplicateKey(field, value string) *Error {
	return &Error{
		Kind:    KindDuplicateKey,
		Field:   field,
		Message: fmt.Sprintf("%s %q already exists", field, value),
	}
}

// NotFound reports an absent entity.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:     KindNotFound,
		EntityID: id,
		Message:  fmt.Sprintf("%s %q not found", entity, id),
	}
}

// Capacity reports a vehicle too small for a route.
func Capacity(vehicleID string, capacity, required int) *Error {
	return &Error{
		Kind:     KindCapacity,
		EntityID: vehicleID,
		Message:  fmt.Sprintf("vehicle capacity %d is below route max capacity %d", capacity, required),
	}
}

// LicenseMismatch reports a driver class below the vehicle's minimum.
func LicenseMismatch(driverID string, have, want string) *Error {
	return &Error{
		Kind:     KindLicenseMismatch,
		EntityID: driverID,
		Message:  fmt.Sprintf("license class %s does not cover required class %s", have, want),
	}
}

// RouteFull reports a route at its assignment capacity.
func RouteFull(routeID string, capacity int) *Error {
	return &Error{
		Kind:     KindRouteFull,
		EntityID: routeID,
		Message:  fmt.Sprintf("route is at max capacity (%d active assignments)", capacity),
	}
}

// SchedulingConflict reports a double-booked vehicle or driver, or a
// maintenance window collision.
func SchedulingConflict(entityID, format string, args ...any) *Error {
	return &Error{Kind: KindSchedulingConflict, EntityID: entityID, Message: fmt.Sprintf(format, args...)}
}

// ReferentialIntegrity reports a delete blocked by live references.
func ReferentialIntegrity(entityID, format string, args ...any) *Error {
	return &Error{Kind: KindReferentialIntegrity, EntityID: entityID, Message: fmt.Sprintf(format, args...)}
}

// Retryable reports transient contention (lock timeout); callers may
// retry with backoff.
func Retryable(format string, args ...any) *Error {
	return &Error{Kind: KindRetryable, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" for non-fault errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a fault of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps an error to its HTTP response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateKey, KindCapacity, KindLicenseMismatch,
		KindRouteFull, KindSchedulingConflict, KindReferentialIntegrity:
		return http.StatusConflict
	case KindRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
