package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/room-booking/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Email      string  `json:"email" validate:"required,email,max=255"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"required,max=100"`
	UserTypeID *string `json:"user_type_id" validate:"omitempty,uuid"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Role      domain.Role       `json:"role"`
	UserType  *UserTypeResponse `json:"user_type,omitempty"`
}

// UserTypeResponse describes a quota tier.
type UserTypeResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	WeeklyHoursLimit int     `json:"weekly_hours_limit"`
	Description      *string `json:"description,omitempty"`
}

// WeeklyUsageResponse reports quota consumption. Limit and remaining are -1 for unlimited tiers.
type WeeklyUsageResponse struct {
	UserID    string          `json:"user_id"`
	Limit     int             `json:"limit"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	WeekStart time.Time       `json:"week_start"`
	WeekEnd   time.Time       `json:"week_end"`
}

// NewUserResponse maps a user.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	if user.UserType != nil {
		ut := NewUserTypeResponse(user.UserType)
		resp.UserType = &ut
	}
	return resp
}

// NewUserTypeResponse maps a tier.
func NewUserTypeResponse(ut *domain.UserType) UserTypeResponse {
	return UserTypeResponse{
		ID:               ut.ID,
		Name:             ut.Name,
		WeeklyHoursLimit: ut.WeeklyHoursLimit,
		Description:      ut.Description,
	}
}
