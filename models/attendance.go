package models

import "time"

type AttendanceStatus string

const (
	AttendanceAttending    AttendanceStatus = "attending"
	AttendanceNotAttending AttendanceStatus = "not_attending"
	AttendanceUndecided    AttendanceStatus = "undecided"
)

// Valid reports whether the status is one of the three stored values.
// Note that "no row at all" is a distinct, fourth state (unanswered) and is
// deliberately not representable here.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceAttending, AttendanceNotAttending, AttendanceUndecided:
		return true
	default:
		return false
	}
}

type Attendance struct {
	ID        string           `json:"id"`
	EventID   string           `json:"event_id"`
	UserID    string           `json:"user_id"`
	Status    AttendanceStatus `json:"status"`
	Comment   *string          `json:"comment,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	User *User `json:"user,omitempty"`
}
