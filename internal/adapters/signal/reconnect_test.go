package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notary-relay/internal/domain"
)

func TestGraceReconnector_ResumeInsideWindow(t *testing.T) {
	req := require.New(t)
	g := NewGraceReconnector(time.Minute)

	g.Reconnect("s1", domain.Participant{Username: "alice", Token: "tok-1", RoomID: "R1", MediaLabel: "closing.webm"})
	req.Equal(1, g.Pending())

	prev, ok := g.Resume("tok-1")
	req.True(ok)
	req.Equal("alice", prev.Username)
	req.Equal(domain.RoomID("R1"), prev.RoomID)
	req.Equal("closing.webm", prev.MediaLabel)
	req.Zero(g.Pending(), "resume consumes the pending entry")

	_, ok = g.Resume("tok-1")
	req.False(ok, "a window resumes at most once")
}

func TestGraceReconnector_UnknownTokenIsFresh(t *testing.T) {
	g := NewGraceReconnector(time.Minute)
	_, ok := g.Resume("never-forced")
	require.False(t, ok)
}

func TestGraceReconnector_ExpiredWindowDoesNotResume(t *testing.T) {
	req := require.New(t)
	g := NewGraceReconnector(5 * time.Millisecond)

	g.Reconnect("s1", domain.Participant{Username: "alice", Token: "tok-1"})
	time.Sleep(10 * time.Millisecond)

	_, ok := g.Resume("tok-1")
	req.False(ok)
}
