package models

import "time"

// TeamSettings is a singleton row: exactly one must exist system-wide.
type TeamSettings struct {
	ID               string    `json:"id"`
	AppTitle         string    `json:"app_title"`
	TeamPasswordHash string    `json:"-"`
	UpdatedAt        time.Time `json:"updated_at"`
}
