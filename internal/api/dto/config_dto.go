package dto

import (
	"time"

	"github.com/spec-kit/room-booking/internal/domain"
)

// SetTimezoneRequest payload.
type SetTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,max=100"`
}

// SetConfigRequest payload.
type SetConfigRequest struct {
	Key         string  `json:"key" validate:"required,max=100"`
	Value       string  `json:"value" validate:"required"`
	Description *string `json:"description"`
}

// TimezoneResponse reports the active timezone and the current time in it.
type TimezoneResponse struct {
	Timezone string    `json:"timezone"`
	Now      time.Time `json:"now"`
}

// ConfigResponse is the public view of a setting.
type ConfigResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewConfigResponses maps a list of settings.
func NewConfigResponses(items []domain.SystemConfig) []ConfigResponse {
	resp := make([]ConfigResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, ConfigResponse{
			Key:         item.Key,
			Value:       item.Value,
			Description: item.Description,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return resp
}
