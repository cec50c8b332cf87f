package signal

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/protocol"
)

func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.pingPeriod * 10 / 9
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var ping <-chan time.Time
	if ctl.pingPeriod > 0 {
		ticker := time.NewTicker(ctl.pingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
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

func (ctl *SignalWSController) readPump(ctx context.Context, sess core.MemberSession, c *WsSignalConn) {
	id := sess.Meta().ID
	defer func() {
		log.Info().Str("module", "signal").Str("participant", string(id)).Msg("readPump closing")
		c.Close()
		ctl.Orch.Disconnect(id, sess)
		if _, online := ctl.Orch.Registry.Get(id); !online {
			ctl.Limiter.Forget(id)
		}
	}()

	if ctl.pingPeriod > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("participant", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(sess, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sess core.MemberSession, c *WsSignalConn, data []byte) {
	id := sess.Meta().ID
	if !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("participant", string(id)).Msg("rate limited")
		ctl.sendJSON(c, &protocol.Error{Error: "rate_limited"})
		return
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Msg("bad frame")
		if errors.Is(err, protocol.ErrUnknownType) {
			ctl.sendJSON(c, &protocol.Error{Error: "unknown_type"})
			return
		}
		ctl.sendJSON(c, &protocol.Error{Error: "bad_payload"})
		return
	}

	switch m := msg.(type) {
	case *protocol.Ping:
		ctl.handlePing(c)
	case *protocol.WhoAmI:
		ctl.handleWhoAmI(sess, c)
	case *protocol.InitiateCall:
		ctl.handleInitiateCall(id, c, m)
	case *protocol.AnswerCall:
		ctl.handleAnswerCall(id, c, m)
	case *protocol.SendICECandidate:
		ctl.handleICECandidate(id, c, m)
	case *protocol.RejectCall:
		ctl.handleRejectCall(id, c, m)
	case *protocol.EndCall:
		ctl.handleEndCall(id, c, m)
	default:
		log.Warn().Str("module", "signal").Str("type", msg.MessageType()).Msg("unexpected signal")
		ctl.sendJSON(c, &protocol.Error{Error: "unexpected_type"})
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, m protocol.Message) {
	b, err := protocol.Encode(m)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("type", m.MessageType()).Msg("sendJSON")
	}
}
