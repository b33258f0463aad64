package domain

import "time"

// TimezoneConfigKey is the system_config row holding the process-wide timezone.
const TimezoneConfigKey = "system_timezone"

// SystemConfig is a key-value setting managed by administrators.
type SystemConfig struct {
	ID          string
	Key         string
	Value       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
