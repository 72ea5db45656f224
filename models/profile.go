package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles stored on the profiles table.
const (
	RoleSubcontractor = "subcontractor"
	RoleAdmin         = "admin"
)

// WorkingDays is a subcontractor's weekly availability configuration,
// Sunday through Saturday. Stored as a JSONB column on the profile.
type WorkingDays struct {
	Sunday    bool `json:"sunday"`
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
}

// ForWeekday reports whether the configuration marks the given weekday as a
// working day.
func (w WorkingDays) ForWeekday(d time.Weekday) bool {
	switch d {
	case time.Sunday:
		return w.Sunday
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	}
	return false
}

// Profile represents a row in the profiles table. Subcontractors carry a
// working-days configuration; a nil configuration means the profile was
// never set up and the worker is treated as always available.
type Profile struct {
	ID          uuid.UUID    `json:"id"`
	FullName    string       `json:"full_name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	AvatarURL   *string      `json:"avatar_url,omitempty"`
	WorkingDays *WorkingDays `json:"working_days,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
