package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus enumerates lifecycle states for reservations.
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s exists.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusCompleted
}

var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusConfirmed: {ReservationStatusCancelled, ReservationStatusCompleted},
	ReservationStatusCancelled: {},
	ReservationStatusCompleted: {},
}

// CanTransition reports whether the status machine permits current -> next.
func CanTransition(current, next ReservationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ErrUnsupportedDuration is returned by NewSlotDuration for any length other than one hour.
var ErrUnsupportedDuration = errors.New("unsupported reservation duration")

// SlotDuration is a validated reservation length in whole hours. Only one hour is
// currently accepted; widening the policy means widening NewSlotDuration.
type SlotDuration struct {
	hours int
}

// OneHour is the only duration the booking policy accepts.
var OneHour = SlotDuration{hours: 1}

// NewSlotDuration validates an hour count.
func NewSlotDuration(hours int) (SlotDuration, error) {
	if hours != 1 {
		return SlotDuration{}, ErrUnsupportedDuration
	}
	return SlotDuration{hours: hours}, nil
}

// Hours returns the whole number of hours.
func (d SlotDuration) Hours() int { return d.hours }

// Duration converts to a time.Duration.
func (d SlotDuration) Duration() time.Duration { return time.Duration(d.hours) * time.Hour }

// TotalHours returns the quota weight of the duration.
func (d SlotDuration) TotalHours() decimal.Decimal { return decimal.NewFromInt(int64(d.hours)) }

// Reservation books a room for one slot. EndTime always equals StartTime plus
// the duration recorded in TotalHours.
type Reservation struct {
	ID         string
	UserID     string
	RoomID     string
	StartTime  time.Time
	EndTime    time.Time
	Status     ReservationStatus
	Purpose    *string
	TotalHours decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Overlaps reports whether [start, end) intersects the reservation using half-open semantics.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Adjacent reports whether the reservation touches [start, end) at a boundary.
func (r *Reservation) Adjacent(start, end time.Time) bool {
	return r.EndTime.Equal(start) || r.StartTime.Equal(end)
}
