// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxParticipantIDLen = 254
	MaxUsernameLen      = 36
)

var (
	ErrUsernameTooLong    = errors.New("username too long")
	ErrUsernameEmpty      = errors.New("username empty")
	ErrParticipantEmpty   = errors.New("participant id empty")
	ErrParticipantTooLong = errors.New("participant id too long")
)

// ParticipantID is an opaque identity, usually the user's e-mail.
type ParticipantID string

func ParseParticipantID(raw string) (ParticipantID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrParticipantEmpty
	}
	if len(raw) > MaxParticipantIDLen {
		return "", ErrParticipantTooLong
	}
	return ParticipantID(raw), nil
}

type User struct {
	ID       ParticipantID `json:"id"`
	Username string        `json:"username"`
}

// NewUser falls back to the identity when no display name is given.
func NewUser(id ParticipantID, username string) (*User, error) {
	if username == "" {
		username = string(id)
		if len(username) > MaxUsernameLen {
			username = username[:MaxUsernameLen]
		}
	}
	u := &User{ID: id}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}
