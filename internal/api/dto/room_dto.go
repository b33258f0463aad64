package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/domain"
)

// CreateRoomRequest payload.
type CreateRoomRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Capacity    int              `json:"capacity" validate:"required,gt=0"`
	Equipment   []string         `json:"equipment" validate:"omitempty,dive,max=100"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
}

// UpdateRoomRequest payload. Absent fields are left unchanged.
type UpdateRoomRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Capacity    *int             `json:"capacity" validate:"omitempty,gt=0"`
	Equipment   []string         `json:"equipment" validate:"omitempty,dive,max=100"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	IsActive    *bool            `json:"is_active"`
}

// RoomResponse is the public view of a room.
type RoomResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Capacity    int             `json:"capacity"`
	Equipment   []string        `json:"equipment"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewRoomResponse maps a room.
func NewRoomResponse(room *domain.Room) RoomResponse {
	equipment := room.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Capacity:    room.Capacity,
		Equipment:   equipment,
		HourlyRate:  room.HourlyRate,
		IsActive:    room.IsActive,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
}

// NewRoomResponses maps a list.
func NewRoomResponses(rooms []domain.Room) []RoomResponse {
	resp := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, NewRoomResponse(&rooms[i]))
	}
	return resp
}
