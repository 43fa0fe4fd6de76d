package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/matchday/attendance-system/models"
)

// TeamSessionCookieName is the cookie the client holds between requests.
const TeamSessionCookieName = "team_session"

// TeamSessionTTL bounds every issued team session.
const TeamSessionTTL = 30 * 24 * time.Hour

var ErrTeamSessionInvalid = errors.New("team session is invalid or expired")

// TeamSessionCodec signs and verifies the client-held team session token.
// The token carries the whole session (user id, nickname, expiry); nothing is
// stored server-side. HS256 signing keeps the payload from being forged.
type TeamSessionCodec struct {
	secret []byte
}

func NewTeamSessionCodec(secret string) *TeamSessionCodec {
	return &TeamSessionCodec{secret: []byte(secret)}
}

// Issue encodes a session for the user expiring TeamSessionTTL from now.
func (c *TeamSessionCodec) Issue(userID, nickname string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(TeamSessionTTL)

	claims := jwt.MapClaims{
		"user_id":  userID,
		"nickname": nickname,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign team session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies the token and returns its session payload. Any failure —
// malformed token, wrong signature, past expiry — comes back as
// ErrTeamSessionInvalid so callers treat all of them as "no session".
func (c *TeamSessionCodec) Decode(tokenString string) (*models.TeamSession, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTeamSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTeamSessionInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrTeamSessionInvalid
	}
	nickname, _ := claims["nickname"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTeamSessionInvalid
	}

	return &models.TeamSession{
		UserID:    userID,
		Nickname:  nickname,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
