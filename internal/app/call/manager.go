// Package call runs the per-participant call state machine.
package call

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/app/ice"
	"github.com/dkeye/voicecall/internal/clock"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

var (
	ErrCallInProgress = errors.New("call already in progress")
	ErrNoActiveCall   = errors.New("no active call")
	ErrSelfCall       = errors.New("cannot call yourself")
	ErrNoVideo        = errors.New("call has no video")
	ErrNoLocalMedia   = errors.New("call has no local media yet")
	ErrManagerStopped = errors.New("call manager stopped")
	ErrAlreadyRunning = errors.New("call manager already running")
)

// User-facing notices.
const (
	MsgTimeout          = "Call Timeout"
	MsgConnectionFailed = "Connection Failed"
	MsgPermissions      = "Call Failed — check permissions"
	MsgIncomingSetup    = "Failed to setup incoming call"
	MsgEstablish        = "Failed to establish connection"
	MsgEnded            = "Call ended"
	MsgRejected         = "Call rejected"
)

// Reject reasons sent to the caller.
const (
	ReasonBusy     = "busy"
	ReasonDeclined = "declined"
)

type Config struct {
	OutgoingTimeout time.Duration
	ICE             ice.Config
}

func DefaultConfig() Config {
	return Config{
		OutgoingTimeout: 30 * time.Second,
		ICE:             ice.DefaultConfig(),
	}
}

// Manager owns at most one non-terminal Session for the local participant.
// Commands and inbound events are processed one at a time by Run.
type Manager struct {
	self      domain.ParticipantID
	cfg       Config
	signaller core.Signaller
	media     core.MediaSource
	peers     core.PeerFactory
	notifier  core.Notifier
	clock     clock.Clock
	logger    zerolog.Logger

	queue   *eventQueue
	baseCtx context.Context
	running atomic.Bool
	stopped chan struct{}
	snap    atomic.Pointer[core.Snapshot]

	// loop-owned
	sess *Session
}

type Option func(*Manager)

func WithConfig(cfg Config) Option        { return func(m *Manager) { m.cfg = cfg } }
func WithClock(c clock.Clock) Option      { return func(m *Manager) { m.clock = c } }
func WithNotifier(n core.Notifier) Option { return func(m *Manager) { m.notifier = n } }
func WithLogger(l zerolog.Logger) Option  { return func(m *Manager) { m.logger = l } }

func NewManager(self domain.ParticipantID, signaller core.Signaller, media core.MediaSource, peers core.PeerFactory, opts ...Option) *Manager {
	m := &Manager{
		self:      self,
		cfg:       DefaultConfig(),
		signaller: signaller,
		media:     media,
		peers:     peers,
		notifier:  core.NopNotifier{},
		clock:     clock.Real(),
		logger:    log.Logger,
		queue:     newEventQueue(),
		baseCtx:   context.Background(),
		stopped:   make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.With().Str("module", "call").Str("participant", string(self)).Logger()
	return m
}

func (m *Manager) Self() domain.ParticipantID { return m.self }

// Run processes events until ctx is cancelled. An active call is hung up
// on the way out.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(m.stopped)
	m.baseCtx = ctx
	m.logger.Info().Msg("call manager started")

	for {
		ev, ok := m.queue.pop(ctx)
		if !ok {
			m.shutdown(context.WithoutCancel(ctx))
			m.logger.Info().Msg("call manager stopped")
			return ctx.Err()
		}
		err := m.dispatch(ev)
		if ev.reply != nil {
			ev.reply <- err
		}
	}
}

func (m *Manager) shutdown(ctx context.Context) {
	s := m.sess
	if s == nil {
		return
	}
	if s.remoteAware {
		if err := m.signaller.EndCall(ctx, m.self, s.Remote); err != nil {
			m.logger.Warn().Err(err).Str("sid", s.ID).Msg("endCall on shutdown")
		}
	}
	if err := m.finish(s, trigHangup, nil); err != nil {
		m.cleanup(s)
	}
}

// Snapshot returns the state last published by the loop.
func (m *Manager) Snapshot() core.Snapshot {
	if p := m.snap.Load(); p != nil {
		return *p
	}
	return core.Snapshot{State: domain.StateIdle}
}

func (m *Manager) submit(ctx context.Context, ev event) error {
	ev.ctx = ctx
	ev.reply = make(chan error, 1)
	m.queue.push(ev)
	select {
	case err := <-ev.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrManagerStopped
	}
}

func (m *Manager) StartCall(ctx context.Context, callee domain.ParticipantID, media domain.MediaKind) error {
	return m.submit(ctx, event{kind: evStartCall, peer: callee, media: media})
}

func (m *Manager) AcceptCall(ctx context.Context) error {
	return m.submit(ctx, event{kind: evAcceptCall})
}

// RejectCall declines the ringing call. An empty reason sends "declined".
func (m *Manager) RejectCall(ctx context.Context, reason string) error {
	return m.submit(ctx, event{kind: evRejectCall, reason: reason})
}

// EndCall hangs up, cancels an outgoing call or declines a ringing one.
func (m *Manager) EndCall(ctx context.Context) error {
	return m.submit(ctx, event{kind: evEndCall})
}

func (m *Manager) ToggleMute(ctx context.Context) error {
	return m.submit(ctx, event{kind: evToggleMute})
}

func (m *Manager) ToggleVideo(ctx context.Context) error {
	return m.submit(ctx, event{kind: evToggleVideo})
}

// Inbound signaling. These never block.

func (m *Manager) OnIncomingCall(caller domain.ParticipantID, offer webrtc.SessionDescription, media domain.MediaKind) {
	m.queue.push(event{kind: evIncoming, peer: caller, sdp: offer, media: media})
}

func (m *Manager) OnCallAnswered(callee domain.ParticipantID, answer webrtc.SessionDescription) {
	m.queue.push(event{kind: evAnswered, peer: callee, sdp: answer})
}

func (m *Manager) OnICECandidate(sender domain.ParticipantID, c webrtc.ICECandidateInit) {
	m.queue.push(event{kind: evRemoteCandidate, peer: sender, candidate: c})
}

func (m *Manager) OnCallRejected(callee domain.ParticipantID, reason string) {
	m.queue.push(event{kind: evRejected, peer: callee, reason: reason})
}

// OnCallEnded ends the active call. A non-empty from must match its remote
// participant.
func (m *Manager) OnCallEnded(from domain.ParticipantID) {
	m.queue.push(event{kind: evRemoteEnded, peer: from})
}

func (m *Manager) OnCallError(message string) {
	m.queue.push(event{kind: evRemoteError, reason: message})
}
