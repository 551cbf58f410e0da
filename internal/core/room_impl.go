package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"notary-relay/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	mu    sync.RWMutex
	bySID map[SessionID]ParticipantSession
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]ParticipantSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) AddMember(sid SessionID, ps ParticipantSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[sid] = ps
	log.Info().Str("module", "core.room").Str("sid", string(sid)).Str("room", string(r.room.ID)).Str("user", ps.Meta().Username).Msg("member added")
}

func (r *roomImpl) RemoveMember(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("sid", string(sid)).Str("room", string(r.room.ID)).Msg("member removed")
}

func (r *roomImpl) Broadcast(from SessionID, data Frame, includeSelf bool) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if sid == from && !includeSelf {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for _, ps := range r.bySID {
		p := ps.Meta()
		out = append(out, MemberDTO{Username: p.Username, Room: p.RoomID})
	}
	return out
}
