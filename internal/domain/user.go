package domain

import "time"

// Role distinguishes administrators from regular employees.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one the system recognizes.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UnlimitedWeeklyHours marks a tier that is exempt from the weekly quota.
const UnlimitedWeeklyHours = -1

// UserType is a quota tier.
type UserType struct {
	ID               string
	Name             string
	WeeklyHoursLimit int
	Description      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Unlimited reports whether the tier carries the unlimited sentinel.
func (t *UserType) Unlimited() bool {
	return t != nil && t.WeeklyHoursLimit == UnlimitedWeeklyHours
}

// User is an employee account. UserType is nil when no tier is assigned.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	UserTypeID   *string
	UserType     *UserType
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Principal is the authenticated caller handed to every policy decision.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
