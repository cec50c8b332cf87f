package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/app/orch"
	"github.com/dkeye/voicecall/internal/config"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

// Session keys holding the identity chosen through the HTTP API.
const (
	SessionParticipantKey = "participant"
	SessionUsernameKey    = "username"
)

const (
	sendBuffer = 32
	writeWait  = 5 * time.Second
)

var ErrNoIdentity = errors.New("no participant identity")

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *RateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		Limiter:    NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, sendBuffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// resolveIdentity prefers the id query parameter, then the identity stored
// in the session, then the anonymous client token.
func resolveIdentity(c *gin.Context) (*domain.User, error) {
	sess := sessions.Default(c)
	raw := c.Query("id")
	if raw == "" {
		raw, _ = sess.Get(SessionParticipantKey).(string)
	}
	if raw == "" {
		raw = c.GetString("client_token")
	}
	if raw == "" {
		return nil, ErrNoIdentity
	}
	id, err := domain.ParseParticipantID(raw)
	if err != nil {
		return nil, err
	}
	name := c.Query("name")
	if name == "" {
		name, _ = sess.Get(SessionUsernameKey).(string)
	}
	return domain.NewUser(id, name)
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	user, err := resolveIdentity(c)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("rejecting WS connection")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("module", "signal").Str("participant", string(user.ID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := newWsSignalConn(ws)
	sess := core.NewMemberSession(user, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(user.ID, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sess, conn)
}
