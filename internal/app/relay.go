package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

// RecordingSink is the persistence collaborator for flushed chunk
// sequences. Failures are its own concern; the relay never retries.
type RecordingSink interface {
	Save(ctx context.Context, rec domain.Recording) error
}

// SessionExporter is the PDF/email collaborator.
type SessionExporter interface {
	Export(ctx context.Context, roomID domain.RoomID, mediaLabel string) error
}

// Reconnector is invoked for server-forced disconnects only, so the
// transport can offer the peer a way back into its session.
type Reconnector interface {
	Reconnect(sid core.SessionID, p domain.Participant)
}

// Relay coordinates one live notarization session: admission binding,
// room membership, per-event broadcast scope and the recording
// lifecycle. All transport handlers funnel through it.
type Relay struct {
	Registry    *Registry
	Rooms       core.RoomManager
	Policy      Policy
	Recorder    *Recorder
	Store       RecordingSink
	Exporter    SessionExporter
	Dispatch    *Dispatcher
	Reconnector Reconnector

	mu     sync.Mutex
	forced map[core.SessionID]bool
}

// Register binds an admitted session, joins it to its room and
// announces the join to the whole room, joiner included.
func (r *Relay) Register(sid core.SessionID, sess core.ParticipantSession, cancel context.CancelFunc) {
	p := sess.Meta()
	r.Registry.Bind(sid, sess, cancel)
	room := r.Rooms.GetOrCreate(p.RoomID)
	room.AddMember(sid, sess)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("user", p.Username).Str("room", string(p.RoomID)).Msg("participant joined session")

	frame, err := joinFrame(p.Username, p.RoomID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("encode join message")
		return
	}
	res := room.Broadcast(sid, frame, true)
	r.handleDropped(room, res)
}

func joinFrame(username string, roomID domain.RoomID) (core.Frame, error) {
	data, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("Name:%s has joined the session, Room:%s", username, roomID),
	})
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(domain.Envelope{Event: domain.EventJoinRoomMessage, Data: data})
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}

// OnEvent forwards one inbound frame according to the event's broadcast
// scope. The payload travels through byte-for-byte. Events from a
// session without a room, and names outside the vocabulary, are logged
// no-ops.
func (r *Relay) OnEvent(sid core.SessionID, name domain.EventName, raw core.Frame) {
	scope, ok := domain.RelayScopes[name]
	if !ok {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Str("event", string(name)).Msg("unknown event")
		return
	}
	roomID, inRoom := r.Registry.RoomOf(sid)
	if !inRoom {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Str("event", string(name)).Msg("event before room join, dropped")
		return
	}

	switch scope {
	case domain.ScopeRoomExcludeSelf, domain.ScopeRoomIncludeSelf:
		room := r.Rooms.GetOrCreate(roomID)
		res := room.Broadcast(sid, raw, scope == domain.ScopeRoomIncludeSelf)
		r.handleDropped(room, res)
	case domain.ScopeGlobalIncludeSelf:
		for _, snap := range r.Registry.AllSessions() {
			if err := snap.Session.Signal().TrySend(raw); err != nil {
				log.Warn().Str("module", "app.relay").Str("sid", string(snap.SID)).Str("event", string(name)).Msg("global send dropped")
			}
		}
	}
}

func (r *Relay) handleDropped(room core.RoomService, res core.PublishResult) {
	if r.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch r.Policy.OnBackPressure(room, slow) {
		case ForceDisconnect:
			for _, snap := range r.Registry.MembersOfRoom(room.Room().ID) {
				if snap.Session == slow {
					r.ForceDisconnect(snap.SID)
				}
			}
		case DropFrame, NoAction:
		}
	}
}

// OnChunk appends one media fragment to the sender's buffer. When the
// buffer outgrows its cap it is flushed early through the normal
// persistence path.
func (r *Relay) OnChunk(sid core.SessionID, data []byte) {
	sess, ok := r.Registry.Get(sid)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Msg("chunk from unknown session")
		return
	}
	if r.Recorder.Append(sid, *sess.Meta(), data) {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Msg("chunk buffer over cap, early flush")
		r.OnRecordingEnd(sid)
	}
}

// OnRecordingEnd flushes the sender's buffer to the persistence
// collaborator with full session context. An empty buffer is a no-op.
func (r *Relay) OnRecordingEnd(sid core.SessionID) {
	rec, ok := r.Recorder.Flush(sid)
	if !ok {
		return
	}
	r.dispatch("save_recording", func(ctx context.Context) error {
		return r.Store.Save(ctx, rec)
	})
}

// ExportRequest is the expected payload of a generate_pdf_send_mail
// event. The session room must be explicit; without it the request is
// dropped.
type ExportRequest struct {
	SessionRoom string `json:"sessionRoom"`
}

func (r *Relay) OnExportRequest(sid core.SessionID, payload json.RawMessage) {
	var req ExportRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Error().Err(err).Str("module", "app.relay").Str("sid", string(sid)).Msg("bad export payload")
			return
		}
	}
	if req.SessionRoom == "" {
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Msg("export request without session identifier, dropped")
		return
	}
	label := ""
	if sess, ok := r.Registry.Get(sid); ok {
		label = sess.Meta().MediaLabel
	}
	roomID := domain.RoomID(req.SessionRoom)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("room", string(roomID)).Msg("generate pdf and send mail")
	r.dispatch("export_session", func(ctx context.Context) error {
		return r.Exporter.Export(ctx, roomID, label)
	})
}

// ForceDisconnect tears a session down from the server side. The
// adapter observes the cancellation, closes the socket, and the
// disconnect handler sees a server-forced reason.
func (r *Relay) ForceDisconnect(sid core.SessionID) {
	r.mu.Lock()
	if r.forced == nil {
		r.forced = make(map[core.SessionID]bool)
	}
	r.forced[sid] = true
	r.mu.Unlock()
	r.Registry.Cancel(sid)
}

func (r *Relay) takeForced(sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forced[sid] {
		delete(r.forced, sid)
		return true
	}
	return false
}

// OnDisconnect runs once per connection teardown: flush any pending
// recording on the detached path, leave the room silently, and attempt
// a reconnect only for server-forced disconnects.
func (r *Relay) OnDisconnect(sid core.SessionID, reason domain.DisconnectReason) {
	if r.takeForced(sid) {
		reason = domain.ReasonServerForced
	}

	if rec, ok := r.Recorder.FlushDetached(sid); ok {
		r.dispatch("save_recording_disconnect", func(ctx context.Context) error {
			return r.Store.Save(ctx, rec)
		})
	}
	r.Recorder.Drop(sid)

	sess, bound := r.Registry.Get(sid)
	if bound {
		roomID := sess.Meta().RoomID
		room := r.Rooms.GetOrCreate(roomID)
		room.RemoveMember(sid)
		if room.MemberCount() == 0 {
			r.Rooms.StopRoom(roomID)
		}
	}
	r.Registry.Unbind(sid)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("reason", reason.String()).Msg("participant disconnected")

	if reason == domain.ReasonServerForced && bound && r.Reconnector != nil {
		r.Reconnector.Reconnect(sid, *sess.Meta())
	}
}

func (r *Relay) dispatch(name string, fn func(ctx context.Context) error) {
	if r.Dispatch != nil {
		r.Dispatch.Go(name, fn)
		return
	}
	if err := fn(context.Background()); err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("task", name).Msg("collaborator call failed")
	}
}
