package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Stable error codes surfaced to API clients.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeStorage            = "STORAGE_ERROR"
	CodePastBooking        = "PAST_BOOKING"
	CodeSlotNotAligned     = "SLOT_NOT_ALIGNED"
	CodeUnsupportedDur     = "UNSUPPORTED_DURATION"
	CodeRoomConflict       = "ROOM_CONFLICT"
	CodeConsecutiveBooking = "CONSECUTIVE_BOOKING"
	CodeWeeklyQuota        = "WEEKLY_QUOTA_EXCEEDED"
	CodeUserTierMissing    = "USER_TIER_MISSING"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeReservationMissing = "RESERVATION_NOT_FOUND"
	CodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
)

// Sentinels for errors.Is checks. DomainError.Is matches on Code, so any
// error built with the same code compares equal regardless of details.
var (
	ErrPastBooking         = &DomainError{Code: CodePastBooking}
	ErrSlotNotAligned      = &DomainError{Code: CodeSlotNotAligned}
	ErrUnsupportedDuration = &DomainError{Code: CodeUnsupportedDur}
	ErrRoomConflict        = &DomainError{Code: CodeRoomConflict}
	ErrConsecutiveBooking  = &DomainError{Code: CodeConsecutiveBooking}
	ErrWeeklyQuotaExceeded = &DomainError{Code: CodeWeeklyQuota}
	ErrUserTierMissing     = &DomainError{Code: CodeUserTierMissing}
	ErrUserNotFound        = &DomainError{Code: CodeUserNotFound}
	ErrRoomNotFound        = &DomainError{Code: CodeRoomNotFound}
	ErrReservationNotFound = &DomainError{Code: CodeReservationMissing}
	ErrInvalidTransition   = &DomainError{Code: CodeInvalidTransition}
	ErrForbidden           = &DomainError{Code: CodeForbidden}
	ErrStorage             = &DomainError{Code: CodeStorage}
	ErrValidation          = &DomainError{Code: CodeValidation}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewPastBooking(details map[string]any) error {
	return NewDomainError(CodePastBooking, "reservations cannot start in the past", http.StatusBadRequest, details)
}

func NewSlotNotAligned(details map[string]any) error {
	return NewDomainError(CodeSlotNotAligned, "reservations must start on the hour (e.g. 09:00, 10:00)", http.StatusBadRequest, details)
}

func NewUnsupportedDuration(details map[string]any) error {
	return NewDomainError(CodeUnsupportedDur, "only one-hour reservations are supported", http.StatusBadRequest, details)
}

func NewRoomConflict(details map[string]any) error {
	return NewDomainError(CodeRoomConflict, "the room is already booked for this time slot", http.StatusConflict, details)
}

func NewConsecutiveBooking(details map[string]any) error {
	return NewDomainError(CodeConsecutiveBooking, "consecutive reservations are not allowed; leave at least one hour between bookings", http.StatusConflict, details)
}

func NewWeeklyQuotaExceeded(details map[string]any) error {
	return NewDomainError(CodeWeeklyQuota, "this reservation would exceed the weekly hours limit", http.StatusUnprocessableEntity, details)
}

func NewUserTierMissing(details map[string]any) error {
	return NewDomainError(CodeUserTierMissing, "user has no membership tier assigned", http.StatusUnprocessableEntity, details)
}

func NewUserNotFound(details map[string]any) error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, details)
}

func NewRoomNotFound(details map[string]any) error {
	return NewDomainError(CodeRoomNotFound, "meeting room not found", http.StatusNotFound, details)
}

func NewReservationNotFound(details map[string]any) error {
	return NewDomainError(CodeReservationMissing, "reservation not found", http.StatusNotFound, details)
}

func NewInvalidTransition(details map[string]any) error {
	return NewDomainError(CodeInvalidTransition, "reservation status transition not allowed", http.StatusConflict, details)
}

// NewStorageError hides backend faults behind an opaque message while keeping the cause.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       CodeStorage,
		Message:    "storage failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus == 0 {
			cp := *domainErr
			cp.HTTPStatus = http.StatusInternalServerError
			return &cp
		}
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
