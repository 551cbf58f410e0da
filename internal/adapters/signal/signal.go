package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"notary-relay/internal/app"
	"notary-relay/internal/core"
	"notary-relay/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const sendQueueSize = 32

// SessionWSController bridges WebSocket connections to the relay. The
// admission gate runs before the upgrade, so a rejected peer observes
// a plain connect error and never registers any handler.
type SessionWSController struct {
	Relay      *app.Relay
	Reconnects *GraceReconnector

	ReadLimit  int64
	PingPeriod time.Duration
	ChunkRate  *ChunkRateLimiter
}

func NewSessionWSController(relay *app.Relay, rec *GraceReconnector, readLimit int64, pingPeriod time.Duration, chunkRate *ChunkRateLimiter) *SessionWSController {
	return &SessionWSController{
		Relay:      relay,
		Reconnects: rec,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		ChunkRate:  chunkRate,
	}
}

type wsSessionConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSessionConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSessionConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// resolveParticipant gates the handshake and resolves the identity the
// connection runs under. A peer coming back from a server-forced
// disconnect inside its grace window gets the identity it was kicked
// with, so it resumes its room and recording label regardless of what
// the retry handshake carries.
func (ctl *SessionWSController) resolveParticipant(h app.Handshake) (*domain.Participant, bool, error) {
	p, err := app.Admit(h)
	if err != nil {
		return nil, false, err
	}
	if ctl.Reconnects != nil {
		if prev, ok := ctl.Reconnects.Resume(p.Token); ok {
			return &prev, true, nil
		}
	}
	return p, false, nil
}

// HandleSession gates, upgrades and registers one connection.
// Handshake credentials arrive as query parameters on the upgrade
// request.
func (ctl *SessionWSController) HandleSession(ctx context.Context, c *gin.Context) {
	h := app.Handshake{
		Username:     c.Query("username"),
		Token:        c.Query("token"),
		SessionRoom:  c.Query("sessionRoom"),
		SessionTitle: c.Query("sessionTitle"),
	}
	p, resumed, err := ctl.resolveParticipant(h)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", h.Username).Msg("handshake rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	sid := core.SessionID(c.GetString("client_token"))
	if resumed {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", p.Username).Str("room", string(p.RoomID)).Msg("forced-disconnect peer resumed session")
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("user", p.Username).Str("room", string(p.RoomID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsSessionConn{
		conn: ws,
		send: make(chan core.Frame, sendQueueSize),
	}
	sess := core.NewParticipantSession(p, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Relay.Register(sid, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
