package models

import "time"

type AuthMethod string

const (
	AuthMethodProvider    AuthMethod = "provider"
	AuthMethodTeamSession AuthMethod = "team_session"
)

// Identity is the outcome of request authentication: a concrete user plus the
// admin flag, regardless of which of the two credential paths produced it.
type Identity struct {
	UserID      string
	DisplayName string
	IsAdmin     bool
	Method      AuthMethod
	User        *User
}

// TeamSession is the payload of the team_session cookie. It is never persisted
// server-side; the signed token the client holds is the whole session.
type TeamSession struct {
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s TeamSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
