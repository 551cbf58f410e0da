package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

// Recorder accumulates media chunks per session. One buffer per
// connection identity carries both the username and the media label,
// so the end-event path and the disconnect path flush the same buffer
// regardless of which key the caller has at hand.
type Recorder struct {
	mu       sync.Mutex
	buffers  map[core.SessionID]*chunkBuffer
	maxBytes int64
}

type chunkBuffer struct {
	owner  domain.Participant
	chunks [][]byte
	size   int64
}

func NewRecorder(maxBytes int64) *Recorder {
	return &Recorder{
		buffers:  make(map[core.SessionID]*chunkBuffer),
		maxBytes: maxBytes,
	}
}

// Append adds one fragment in arrival order, creating the buffer on
// first use. It reports whether the buffer has grown past the
// configured cap, in which case the caller should flush early.
func (r *Recorder) Append(sid core.SessionID, owner domain.Participant, data []byte) (overflow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, ok := r.buffers[sid]
	if !ok {
		buf = &chunkBuffer{owner: owner}
		r.buffers[sid] = buf
	}
	buf.chunks = append(buf.chunks, data)
	buf.size += int64(len(data))
	return r.maxBytes > 0 && buf.size > r.maxBytes
}

// Flush takes the accumulated sequence for the session and clears the
// buffer, leaving the key known but empty. The returned recording
// carries room and token for the persistence collaborator. An empty or
// unknown buffer yields ok=false and no recording.
func (r *Recorder) Flush(sid core.SessionID) (domain.Recording, bool) {
	return r.flush(sid, true)
}

// FlushDetached is the disconnect-path flush: only the chunk sequence
// and the media label travel to the collaborator.
func (r *Recorder) FlushDetached(sid core.SessionID) (domain.Recording, bool) {
	return r.flush(sid, false)
}

func (r *Recorder) flush(sid core.SessionID, withSession bool) (domain.Recording, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, ok := r.buffers[sid]
	if !ok || len(buf.chunks) == 0 {
		return domain.Recording{}, false
	}
	rec := domain.Recording{
		Chunks:     buf.chunks,
		MediaLabel: buf.owner.MediaLabel,
	}
	if withSession {
		rec.RoomID = buf.owner.RoomID
		rec.AuthToken = buf.owner.Token
	}
	buf.chunks = nil
	buf.size = 0
	log.Debug().Str("module", "app.recorder").Str("sid", string(sid)).Str("label", rec.MediaLabel).Int("chunks", len(rec.Chunks)).Msg("buffer flushed")
	return rec, true
}

// Drop removes the buffer entirely once the session is gone for good.
func (r *Recorder) Drop(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, sid)
}

func (r *Recorder) PendingBytes(sid core.SessionID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf, ok := r.buffers[sid]; ok {
		return buf.size
	}
	return 0
}
