package core

import "notary-relay/internal/domain"

// Frame is a raw outbound payload (an encoded event envelope).
type Frame []byte

// SessionID identifies one admitted connection.
type SessionID string

// SignalConnection abstracts the socket transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ParticipantSession binds a participant identity and its transport
// endpoint. This is what a room stores and fans out to.
type ParticipantSession interface {
	Meta() *domain.Participant
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the relay.
type PublishResult struct {
	SentTo  int
	Dropped []ParticipantSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Username string        `json:"username"`
	Room     domain.RoomID `json:"room"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(sid SessionID, ps ParticipantSession)
	RemoveMember(sid SessionID)
	// Broadcast fans data out to the room. With includeSelf the sender
	// receives its own frame, otherwise it is skipped.
	Broadcast(from SessionID, data Frame, includeSelf bool) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
