package events

import (
	"time"

	"github.com/spec-kit/room-booking/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationCreated   EventType = "reservation_created"
	EventReservationUpdated   EventType = "reservation_updated"
	EventReservationCancelled EventType = "reservation_cancelled"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id"`
	Actor         Actor     `json:"actor"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       any       `json:"payload"`
}

// ReservationPayload snapshots the reservation after the change.
type ReservationPayload struct {
	UserID    string                   `json:"user_id"`
	RoomID    string                   `json:"room_id"`
	StartTime time.Time                `json:"start_time"`
	EndTime   time.Time                `json:"end_time"`
	Status    domain.ReservationStatus `json:"status"`
}

// ReservationUpdatedPayload lists the fields an update touched.
type ReservationUpdatedPayload struct {
	ReservationPayload
	Changed []string `json:"changed"`
}

// NewReservationPayload builds the payload from a stored reservation.
func NewReservationPayload(res *domain.Reservation) ReservationPayload {
	return ReservationPayload{
		UserID:    res.UserID,
		RoomID:    res.RoomID,
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Status:    res.Status,
	}
}
