package rtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/adapters/media"
	"github.com/dkeye/voicecall/internal/core"
)

// Peer wraps one pion PeerConnection for a single call session.
type Peer struct {
	pc     *webrtc.PeerConnection
	sid    string
	logger zerolog.Logger
	cancel context.CancelFunc

	mu       sync.Mutex
	handlers core.PeerHandlers
	closed   bool

	descMu    sync.Mutex
	remoteSet bool
}

var _ core.PeerConnection = (*Peer)(nil)

func NewPeer(cfg webrtc.Configuration, sid string, h core.PeerHandlers, logger zerolog.Logger) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Peer{
		pc:       pc,
		sid:      sid,
		logger:   logger.With().Str("module", "webrtc").Str("sid", sid).Logger(),
		cancel:   cancel,
		handlers: h,
	}
	p.start(ctx)
	return p, nil
}

func (p *Peer) start(ctx context.Context) {
	p.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		p.logger.Debug().Str("ice_state", s.String()).Msg("ICE state")
	})

	p.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		p.logger.Info().Str("peer_connection_state", s.String()).Msg("Peer state")
		if h := p.current(); h.OnStateChange != nil {
			h.OnStateChange(s)
		}
	})

	p.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		// nil marks the end of gathering
		if cand == nil {
			return
		}
		if h := p.current(); h.OnCandidate != nil {
			h.OnCandidate(cand.ToJSON())
		}
	})

	p.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		p.logger.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		h := p.current()
		if h.OnTrack == nil {
			return
		}
		h.OnTrack(track.StreamID(), media.StartRemoteTrack(ctx, track, p.logger))
	})
}

// current returns the registered handlers, or zero handlers once closed.
func (p *Peer) current() core.PeerHandlers {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return core.PeerHandlers{}
	}
	return p.handlers
}

func (p *Peer) CreateOffer() (webrtc.SessionDescription, error) {
	if p.IsClosed() {
		return webrtc.SessionDescription{}, core.ErrPeerClosed
	}
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("create offer: %w", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("set local offer: %w", err)
	}
	return offer, nil
}

func (p *Peer) CreateAnswer() (webrtc.SessionDescription, error) {
	if p.IsClosed() {
		return webrtc.SessionDescription{}, core.ErrPeerClosed
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("create answer: %w", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("set local answer: %w", err)
	}
	return answer, nil
}

// SetRemoteDescription applies sd. Only the first attempt reaches pion,
// even when it fails.
func (p *Peer) SetRemoteDescription(sd webrtc.SessionDescription) error {
	if p.IsClosed() {
		return core.ErrPeerClosed
	}
	p.descMu.Lock()
	defer p.descMu.Unlock()
	if p.remoteSet {
		return core.ErrRemoteDescriptionSet
	}
	p.remoteSet = true
	if err := p.pc.SetRemoteDescription(sd); err != nil {
		return fmt.Errorf("set remote %s: %w", sd.Type, err)
	}
	return nil
}

func (p *Peer) HasRemoteDescription() bool {
	return p.pc.RemoteDescription() != nil
}

func (p *Peer) AddICECandidate(c webrtc.ICECandidateInit) error {
	if p.IsClosed() {
		return core.ErrPeerClosed
	}
	switch p.pc.ConnectionState() {
	case webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateFailed:
		return core.ErrPeerClosed
	}
	if !p.HasRemoteDescription() {
		return core.ErrNoRemoteDescription
	}
	if err := p.pc.AddICECandidate(c); err != nil {
		return fmt.Errorf("add ice candidate: %w", err)
	}
	return nil
}

// AddLocalTrack attaches a local track and drains its RTCP feedback.
func (p *Peer) AddLocalTrack(t core.LocalTrack) error {
	if p.IsClosed() {
		return core.ErrPeerClosed
	}
	sender, err := p.pc.AddTrack(t.TrackLocal())
	if err != nil {
		return fmt.Errorf("add %s track: %w", t.Kind(), err)
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (p *Peer) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close detaches every callback before closing the connection, so nothing
// fires during or after teardown.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.handlers = core.PeerHandlers{}
	p.mu.Unlock()

	p.pc.OnICECandidate(func(*webrtc.ICECandidate) {})
	p.pc.OnTrack(func(*webrtc.TrackRemote, *webrtc.RTPReceiver) {})
	p.pc.OnConnectionStateChange(func(webrtc.PeerConnectionState) {})
	p.pc.OnICEConnectionStateChange(func(webrtc.ICEConnectionState) {})
	p.cancel()

	if err := p.pc.Close(); err != nil {
		p.logger.Error().Err(err).Msg("close error")
		return fmt.Errorf("close peer connection: %w", err)
	}
	p.logger.Info().Msg("closed")
	return nil
}
