// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUsernameLen = 36
	MaxRoomIDLen   = 64
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrRoomIDTooLong   = errors.New("session room too long")
)

// Participant is the identity attached to one admitted connection.
// All four fields come from the connection handshake and do not change
// for the lifetime of the connection.
type Participant struct {
	Username string `json:"username"`
	Token    string `json:"-"`
	RoomID   RoomID `json:"room"`
	// MediaLabel is the session title, used as the filename key for the
	// participant's recording.
	MediaLabel string `json:"media_label,omitempty"`
}
