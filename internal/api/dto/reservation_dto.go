package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/domain"
)

// CreateReservationRequest payload. DurationHours defaults to one hour.
type CreateReservationRequest struct {
	RoomID        string    `json:"room_id" validate:"required,uuid"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	DurationHours *int      `json:"duration_hours"`
	Purpose       *string   `json:"purpose" validate:"omitempty,max=500"`
}

// UpdateReservationRequest payload. Absent fields are left unchanged.
type UpdateReservationRequest struct {
	Purpose   *string                   `json:"purpose" validate:"omitempty,max=500"`
	RoomID    *string                   `json:"room_id" validate:"omitempty,uuid"`
	StartTime *time.Time                `json:"start_time"`
	Status    *domain.ReservationStatus `json:"status" validate:"omitempty,oneof=confirmed cancelled completed"`
}

// ReservationResponse is the public view of a reservation.
type ReservationResponse struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"user_id"`
	RoomID     string                   `json:"room_id"`
	StartTime  time.Time                `json:"start_time"`
	EndTime    time.Time                `json:"end_time"`
	Status     domain.ReservationStatus `json:"status"`
	Purpose    *string                  `json:"purpose,omitempty"`
	TotalHours decimal.Decimal          `json:"total_hours"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// NewReservationResponse maps a reservation.
func NewReservationResponse(res *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         res.ID,
		UserID:     res.UserID,
		RoomID:     res.RoomID,
		StartTime:  res.StartTime,
		EndTime:    res.EndTime,
		Status:     res.Status,
		Purpose:    res.Purpose,
		TotalHours: res.TotalHours,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}
}

// NewReservationResponses maps a list.
func NewReservationResponses(items []domain.Reservation) []ReservationResponse {
	resp := make([]ReservationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, NewReservationResponse(&items[i]))
	}
	return resp
}
