package signal

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

// GraceReconnector implements the relay's reconnect hook for
// server-forced disconnects. The peer is told to come back via close
// code 1012; its identity is held here for a grace window so the
// returning connection resumes the session it was kicked out of
// instead of being admitted as a fresh arrival.
type GraceReconnector struct {
	mu      sync.Mutex
	pending map[string]pendingReconnect
	window  time.Duration
}

type pendingReconnect struct {
	participant domain.Participant
	deadline    time.Time
}

func NewGraceReconnector(window time.Duration) *GraceReconnector {
	return &GraceReconnector{
		pending: make(map[string]pendingReconnect),
		window:  window,
	}
}

func (g *GraceReconnector) Reconnect(sid core.SessionID, p domain.Participant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[p.Token] = pendingReconnect{
		participant: p,
		deadline:    time.Now().Add(g.window),
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", p.Username).Dur("window", g.window).Msg("reconnect window opened")
}

// Resume returns the identity a force-closed peer was kicked with, if
// the token comes back inside the grace window. The pending entry is
// consumed either way; an expired window yields nothing.
func (g *GraceReconnector) Resume(token string) (domain.Participant, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.pending[token]
	if !ok {
		return domain.Participant{}, false
	}
	delete(g.pending, token)
	if !time.Now().Before(entry.deadline) {
		return domain.Participant{}, false
	}
	return entry.participant, true
}

// Pending is the number of open reconnect windows, expired included
// until consumed.
func (g *GraceReconnector) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
