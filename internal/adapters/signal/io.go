package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *SessionWSController) writePump(ctx context.Context, c *wsSessionConn) {
	period := ctl.PingPeriod
	if period <= 0 {
		period = 54 * time.Second
	}
	ping := time.NewTicker(period)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			// Deliberate server-side teardown: tell the peer to come back.
			msg := websocket.FormatCloseMessage(websocket.CloseServiceRestart, "reconnect")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			c.Close()
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SessionWSController) readPump(ctx context.Context, sid core.SessionID, c *wsSessionConn) {
	reason := domain.ReasonNetworkError
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		ctl.teardown(sid, reason)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			reason = domain.ReasonServerForced
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					reason = domain.ReasonClientClose
				}
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read ended")
				return
			}
			ctl.handleFrame(sid, data)
		}
	}
}

// teardown releases per-session adapter state and reports the
// disconnect to the relay. The rate-limit window dies with the
// session; a returning peer starts fresh.
func (ctl *SessionWSController) teardown(sid core.SessionID, reason domain.DisconnectReason) {
	if ctl.ChunkRate != nil {
		ctl.ChunkRate.Forget(sid)
	}
	ctl.Relay.OnDisconnect(sid, reason)
}

// handleFrame decodes the envelope and routes: recording events go to
// the aggregator, everything else is relayed by scope. A malformed
// frame is logged and dropped; it must never bring the pump down.
func (ctl *SessionWSController) handleFrame(sid core.SessionID, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	switch env.Event {
	case domain.EventRecordingChunk:
		if ctl.ChunkRate != nil && !ctl.ChunkRate.Allow(sid) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("chunk rate limited, dropped")
			return
		}
		var chunk []byte
		if err := json.Unmarshal(env.Data, &chunk); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad chunk payload")
			return
		}
		ctl.Relay.OnChunk(sid, chunk)
	case domain.EventRecordingEnd:
		ctl.Relay.OnRecordingEnd(sid)
	case domain.EventGeneratePDF:
		ctl.Relay.OnExportRequest(sid, env.Data)
	default:
		ctl.Relay.OnEvent(sid, env.Event, core.Frame(data))
	}
}
