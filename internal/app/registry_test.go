package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

func bindSession(r *Registry, sid core.SessionID, username string, room domain.RoomID) {
	p := &domain.Participant{Username: username, Token: "tok", RoomID: room}
	r.Bind(sid, core.NewParticipantSession(p, &fakeConn{}), nil)
}

func TestRegistry_BindGetUnbind(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	req.Zero(r.Count())
	bindSession(r, "s1", "alice", "R1")

	sess, ok := r.Get("s1")
	req.True(ok)
	req.Equal("alice", sess.Meta().Username)
	req.Equal(1, r.Count())

	r.Unbind("s1")
	_, ok = r.Get("s1")
	req.False(ok)
}

func TestRegistry_RoomOf(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	bindSession(r, "s1", "alice", "R1")

	room, ok := r.RoomOf("s1")
	req.True(ok)
	req.Equal(domain.RoomID("R1"), room)

	_, ok = r.RoomOf("s-unknown")
	req.False(ok)
}

func TestRegistry_MembersOfRoom(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	bindSession(r, "s1", "alice", "R1")
	bindSession(r, "s2", "bob", "R1")
	bindSession(r, "s3", "carol", "R2")

	req.Len(r.MembersOfRoom("R1"), 2)
	req.Len(r.MembersOfRoom("R2"), 1)
	req.Empty(r.MembersOfRoom("R3"))
	req.Len(r.AllSessions(), 3)
}

func TestRegistry_CancelInvokesBoundCancelFunc(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	canceled := false
	p := &domain.Participant{Username: "alice", RoomID: "R1"}
	r.Bind("s1", core.NewParticipantSession(p, &fakeConn{}), func() { canceled = true })

	req.True(r.Cancel("s1"))
	req.True(canceled)
	req.False(r.Cancel("s-unknown"))
}
