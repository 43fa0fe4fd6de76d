package models

import "time"

type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxParticipants  *int      `json:"max_participants,omitempty"`
	ParticipationFee int       `json:"participation_fee"`
	GuestCount       int       `json:"guest_count"`
	CreatedBy        *string   `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EventDetail is the read-side projection of an event joined with live
// attendance counts (the event_details view). Counts are recomputed on every
// read and never cached.
type EventDetail struct {
	Event
	AttendingCount    int  `json:"attending_count"`
	NotAttendingCount int  `json:"not_attending_count"`
	UndecidedCount    int  `json:"undecided_count"`
	TotalParticipants int  `json:"total_participants"`
	IsFull            bool `json:"is_full"`
}

// RecalculateIsFull sets the full flag from max_participants and the live
// participant total. Events without a cap are never full.
func (d *EventDetail) RecalculateIsFull() {
	d.IsFull = d.MaxParticipants != nil && d.TotalParticipants >= *d.MaxParticipants
}
