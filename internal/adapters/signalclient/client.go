// Package signalclient is the softphone side of the signaling relay. It
// implements core.Signaller over one WebSocket and feeds relay messages
// into an Inbound handler.
package signalclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

// Inbound receives relay events. call.Manager satisfies it.
type Inbound interface {
	OnIncomingCall(caller domain.ParticipantID, offer webrtc.SessionDescription, media domain.MediaKind)
	OnCallAnswered(callee domain.ParticipantID, answer webrtc.SessionDescription)
	OnICECandidate(sender domain.ParticipantID, c webrtc.ICECandidateInit)
	OnCallRejected(callee domain.ParticipantID, reason string)
	OnCallEnded(from domain.ParticipantID)
	OnCallError(message string)
}

type Client struct {
	conn    *websocket.Conn
	out     chan []byte
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  zerolog.Logger
}

var _ core.Signaller = (*Client)(nil)

// Dial connects to the relay at serverURL as self. username may be empty.
func Dial(ctx context.Context, serverURL string, self domain.ParticipantID, username string, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	q := u.Query()
	q.Set("id", string(self))
	if username != "" {
		q.Set("name", username)
	}
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", serverURL, err)
	}
	c := &Client{
		conn:    conn,
		out:     make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger.With().Str("module", "signalclient").Str("self", string(self)).Logger(),
	}
	go c.writePump()
	c.logger.Info().Str("url", serverURL).Msg("connected to relay")
	return c, nil
}

// Done is closed once queued frames are flushed and the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.stopped }

// Close flushes queued frames and closes the connection.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// writePump owns the connection and closes it on the way out.
func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
		close(c.stopped)
	}()
	for {
		select {
		case <-c.done:
			c.flush()
			return
		case data := <-c.out:
			if err := c.write(data); err != nil {
				c.logger.Error().Err(err).Msg("write")
				c.Close()
				return
			}
		}
	}
}

func (c *Client) flush() {
	for {
		select {
		case data := <-c.out:
			if err := c.write(data); err != nil {
				return
			}
		default:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) write(data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) send(ctx context.Context, m protocol.Message) error {
	b, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return core.ErrConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	case <-c.done:
		return core.ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) InitiateCall(ctx context.Context, caller, callee domain.ParticipantID, offer webrtc.SessionDescription, media domain.MediaKind) error {
	return c.send(ctx, &protocol.InitiateCall{Caller: string(caller), Callee: string(callee), Offer: offer, CallType: media.String()})
}

func (c *Client) AnswerCall(ctx context.Context, caller, callee domain.ParticipantID, answer webrtc.SessionDescription) error {
	return c.send(ctx, &protocol.AnswerCall{Caller: string(caller), Callee: string(callee), Answer: answer})
}

func (c *Client) SendICECandidate(ctx context.Context, sender, recipient domain.ParticipantID, candidate webrtc.ICECandidateInit) error {
	return c.send(ctx, &protocol.SendICECandidate{Sender: string(sender), Recipient: string(recipient), Candidate: candidate})
}

func (c *Client) RejectCall(ctx context.Context, callee, caller domain.ParticipantID, reason string) error {
	return c.send(ctx, &protocol.RejectCall{Callee: string(callee), Caller: string(caller), Reason: reason})
}

func (c *Client) EndCall(ctx context.Context, self, other domain.ParticipantID) error {
	return c.send(ctx, &protocol.EndCall{From: string(self), To: string(other)})
}

func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, &protocol.Ping{})
}

func (c *Client) WhoAmI(ctx context.Context) error {
	return c.send(ctx, &protocol.WhoAmI{})
}

// Listen reads relay messages into in until ctx ends or the connection
// drops. A clean shutdown returns nil.
func (c *Client) Listen(ctx context.Context, in Inbound) error {
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-c.done:
				return nil
			default:
			}
			return fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping frame")
			continue
		}
		if err := c.dispatch(msg, in); err != nil {
			c.logger.Warn().Err(err).Str("type", msg.MessageType()).Msg("dropping message")
		}
	}
}

var errUnexpected = errors.New("unexpected message")

func (c *Client) dispatch(msg protocol.Message, in Inbound) error {
	switch m := msg.(type) {
	case *protocol.CallIncoming:
		caller, err := domain.ParseParticipantID(m.Caller)
		if err != nil {
			return err
		}
		media, err := domain.ParseMediaKind(m.CallType)
		if err != nil {
			return err
		}
		in.OnIncomingCall(caller, m.Offer, media)
	case *protocol.CallAnswered:
		callee, err := domain.ParseParticipantID(m.Callee)
		if err != nil {
			return err
		}
		in.OnCallAnswered(callee, m.Answer)
	case *protocol.CallICECandidate:
		sender, err := domain.ParseParticipantID(m.Sender)
		if err != nil {
			return err
		}
		in.OnICECandidate(sender, m.Candidate)
	case *protocol.CallRejected:
		callee, err := domain.ParseParticipantID(m.Callee)
		if err != nil {
			return err
		}
		in.OnCallRejected(callee, m.Reason)
	case *protocol.CallEnded:
		var from domain.ParticipantID
		if m.From != "" {
			var err error
			if from, err = domain.ParseParticipantID(m.From); err != nil {
				return err
			}
		}
		in.OnCallEnded(from)
	case *protocol.CallError:
		in.OnCallError(m.Message)
	case *protocol.Pong:
		c.logger.Debug().Msg("pong")
	case *protocol.WhoAmI:
		c.logger.Info().Str("id", m.ID).Str("username", m.Username).Msg("relay identity")
	case *protocol.Error:
		c.logger.Warn().Str("error", m.Error).Msg("relay refused a frame")
	default:
		return errUnexpected
	}
	return nil
}
