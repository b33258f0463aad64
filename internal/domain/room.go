package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a bookable meeting room. Rooms are never physically removed; a
// deleted room is one with IsActive=false so reservations keep a valid reference.
type Room struct {
	ID          string
	Name        string
	Description *string
	Capacity    int
	Equipment   []string
	HourlyRate  decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
