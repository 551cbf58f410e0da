package app

import "notary-relay/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	ForceDisconnect
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.ParticipantSession) BackpressureAction
}

// KickSlowPolicy force-disconnects slow consumers; the lifecycle then
// drives them through the server-forced reconnect path.
type KickSlowPolicy struct{}

func (KickSlowPolicy) OnBackPressure(room core.RoomService, member core.ParticipantSession) BackpressureAction {
	return ForceDisconnect
}
