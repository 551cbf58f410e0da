package app

import (
	"errors"

	"notary-relay/internal/domain"
)

// Handshake carries the credential fields presented at connection time.
type Handshake struct {
	Username     string
	Token        string
	SessionRoom  string
	SessionTitle string
}

var (
	// ErrNoCredentials rejects a handshake with no credentials at all.
	// The message is part of the client contract.
	ErrNoCredentials = errors.New("invalid username and SessionRoom")
	// ErrIncompleteCredentials rejects a handshake with some but not all
	// required fields. Incomplete credential sets fail closed.
	ErrIncompleteCredentials = errors.New("incomplete handshake credentials")
)

// Admit decides admission for a handshake before any handler is
// registered. Every combination of field presence resolves to an
// explicit admit or reject; there is no indeterminate middle case.
func Admit(h Handshake) (*domain.Participant, error) {
	switch {
	case h.Username == "" && h.SessionRoom == "" && h.Token == "":
		return nil, ErrNoCredentials
	case h.Username != "" && h.SessionRoom != "" && h.Token != "":
		if len(h.Username) > domain.MaxUsernameLen {
			return nil, domain.ErrUsernameTooLong
		}
		if len(h.SessionRoom) > domain.MaxRoomIDLen {
			return nil, domain.ErrRoomIDTooLong
		}
		return &domain.Participant{
			Username:   h.Username,
			Token:      h.Token,
			RoomID:     domain.RoomID(h.SessionRoom),
			MediaLabel: h.SessionTitle,
		}, nil
	default:
		return nil, ErrIncompleteCredentials
	}
}
