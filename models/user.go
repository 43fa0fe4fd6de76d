package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        *string   `json:"email,omitempty"`
	DisplayName  string    `json:"display_name"`
	JerseyNumber *int      `json:"jersey_number,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	AvatarKey    *string   `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
