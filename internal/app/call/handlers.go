package call

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

func (m *Manager) dispatch(ev event) error {
	switch ev.kind {
	case evStartCall:
		return m.handleStart(ev)
	case evAcceptCall:
		return m.handleAccept(ev)
	case evRejectCall:
		return m.handleDecline(ev)
	case evEndCall:
		return m.handleHangup(ev)
	case evToggleMute:
		return m.handleToggleMute()
	case evToggleVideo:
		return m.handleToggleVideo()
	case evIncoming:
		m.handleIncoming(ev)
	case evAnswered:
		m.handleAnswered(ev)
	case evRemoteCandidate:
		m.handleRemoteCandidate(ev)
	case evRejected:
		m.handleRejected(ev)
	case evRemoteEnded:
		m.handleRemoteEnded(ev)
	case evRemoteError:
		m.handleRemoteError(ev)
	case evLocalCandidate:
		m.handleLocalCandidate(ev)
	case evRemoteTrack:
		m.handleRemoteTrack(ev)
	case evPeerState:
		m.handlePeerState(ev)
	case evTimeout:
		m.handleTimeout(ev)
	default:
		m.logger.Warn().Int("kind", int(ev.kind)).Msg("unknown event")
	}
	return nil
}

func (m *Manager) ctxFor(ev event) context.Context {
	if ev.ctx != nil {
		return ev.ctx
	}
	return m.baseCtx
}

// current returns the active session if sid matches it. Events from
// discarded sessions resolve to nil.
func (m *Manager) current(sid string) *Session {
	if m.sess == nil || m.sess.ID != sid {
		return nil
	}
	return m.sess
}

func (m *Manager) transition(s *Session, on trigger) error {
	to, err := nextState(s.State, on)
	if err != nil {
		return err
	}
	m.logger.Info().
		Str("sid", s.ID).
		Str("from", s.State.String()).
		Str("to", to.String()).
		Str("event", on.String()).
		Msg("call state")
	s.State = to
	m.publish(s)
	return nil
}

func (m *Manager) publish(s *Session) {
	snap := core.Snapshot{State: domain.StateIdle}
	if s != nil {
		snap = s.snapshot()
	}
	m.snap.Store(&snap)
	m.notifier.StateChanged(snap)
}

// finish moves s to a terminal state, shows n and releases the session.
func (m *Manager) finish(s *Session, on trigger, n *core.Notice) error {
	if err := m.transition(s, on); err != nil {
		return err
	}
	if n != nil {
		m.notifier.Notice(*n)
	}
	m.cleanup(s)
	return nil
}

// fail handles a local fault: the remote side is told the call is over and
// the user sees message.
func (m *Manager) fail(ctx context.Context, s *Session, message string, cause error) error {
	m.logger.Error().Err(cause).Str("sid", s.ID).Msg(message)
	if s.remoteAware {
		if err := m.signaller.EndCall(ctx, m.self, s.Remote); err != nil {
			m.logger.Warn().Err(err).Str("sid", s.ID).Msg("endCall after fault")
		}
	}
	if err := m.finish(s, trigFault, &core.Notice{Kind: core.NoticeError, Message: message}); err != nil {
		m.cleanup(s)
	}
	return fmt.Errorf("%s: %w", message, cause)
}

func (m *Manager) openPeer(s *Session) error {
	sid := s.ID
	h := core.PeerHandlers{
		OnCandidate: func(c webrtc.ICECandidateInit) {
			m.queue.push(event{kind: evLocalCandidate, sid: sid, candidate: c})
		},
		OnTrack: func(streamID string, t core.MediaTrack) {
			m.queue.push(event{kind: evRemoteTrack, sid: sid, streamID: streamID, track: t})
		},
		OnStateChange: func(st webrtc.PeerConnectionState) {
			m.queue.push(event{kind: evPeerState, sid: sid, pcState: st})
		},
	}
	pc, err := m.peers.NewPeer(sid, h)
	if err != nil {
		return err
	}
	s.peer = pc
	return nil
}

func (m *Manager) attachLocalTracks(s *Session) error {
	for _, t := range s.localStream.Tracks() {
		lt, ok := t.(core.LocalTrack)
		if !ok {
			continue
		}
		if err := s.peer.AddLocalTrack(lt); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) drain(s *Session) {
	applied, failed := s.candidates.Drain(s.peer.AddICECandidate)
	if applied+failed > 0 {
		m.logger.Info().Str("sid", s.ID).Int("applied", applied).Int("failed", failed).Msg("buffered candidates drained")
	}
}

func (m *Manager) handleStart(ev event) error {
	if m.sess != nil {
		return ErrCallInProgress
	}
	if ev.peer == "" {
		return domain.ErrParticipantEmpty
	}
	if ev.peer == m.self {
		return ErrSelfCall
	}

	ctx := m.ctxFor(ev)
	s := m.newSession(domain.RoleCaller, ev.media, ev.peer)
	m.sess = s
	if err := m.transition(s, trigStart); err != nil {
		m.cleanup(s)
		return err
	}

	stream, err := m.media.GetUserMedia(ctx, s.Media)
	if err != nil {
		return m.fail(ctx, s, MsgPermissions, err)
	}
	s.localStream = stream

	if err := m.openPeer(s); err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	if err := m.attachLocalTracks(s); err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	offer, err := s.peer.CreateOffer()
	if err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	if err := m.signaller.InitiateCall(ctx, m.self, s.Remote, offer, s.Media); err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	s.remoteAware = true

	sid := s.ID
	s.timeout = m.clock.AfterFunc(m.cfg.OutgoingTimeout, func() {
		m.queue.push(event{kind: evTimeout, sid: sid})
	})
	m.publish(s)
	return nil
}

func (m *Manager) handleIncoming(ev event) {
	ctx := m.ctxFor(ev)
	if m.sess != nil {
		m.logger.Info().Str("caller", string(ev.peer)).Str("sid", m.sess.ID).Msg("busy, rejecting incoming call")
		if err := m.signaller.RejectCall(ctx, m.self, ev.peer, ReasonBusy); err != nil {
			m.logger.Warn().Err(err).Msg("rejectCall busy")
		}
		return
	}

	s := m.newSession(domain.RoleCallee, ev.media, ev.peer)
	m.sess = s
	if err := m.transition(s, trigIncoming); err != nil {
		m.cleanup(s)
		return
	}

	if err := m.openPeer(s); err != nil {
		m.failIncoming(ctx, s, err)
		return
	}
	if err := s.peer.SetRemoteDescription(ev.sdp); err != nil {
		m.failIncoming(ctx, s, err)
		return
	}
	s.remoteAware = true
}

// failIncoming answers the caller with a rejection so it leaves Outgoing
// immediately.
func (m *Manager) failIncoming(ctx context.Context, s *Session, cause error) {
	if err := m.signaller.RejectCall(ctx, m.self, s.Remote, MsgIncomingSetup); err != nil {
		m.logger.Warn().Err(err).Str("sid", s.ID).Msg("rejectCall after setup failure")
	}
	_ = m.fail(ctx, s, MsgIncomingSetup, cause)
}

func (m *Manager) handleAccept(ev event) error {
	s := m.sess
	if s == nil {
		return ErrNoActiveCall
	}
	if err := m.transition(s, trigAccept); err != nil {
		return err
	}

	ctx := m.ctxFor(ev)
	stream, err := m.media.GetUserMedia(ctx, s.Media)
	if err != nil {
		return m.fail(ctx, s, MsgPermissions, err)
	}
	s.localStream = stream
	if err := m.attachLocalTracks(s); err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	answer, err := s.peer.CreateAnswer()
	if err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	if err := m.signaller.AnswerCall(ctx, s.Remote, m.self, answer); err != nil {
		return m.fail(ctx, s, MsgEstablish, err)
	}
	m.publish(s)
	m.drain(s)
	return nil
}

func (m *Manager) handleDecline(ev event) error {
	s := m.sess
	if s == nil {
		return ErrNoActiveCall
	}
	if _, err := nextState(s.State, trigDecline); err != nil {
		return err
	}
	reason := ev.reason
	if reason == "" {
		reason = ReasonDeclined
	}
	if err := m.signaller.RejectCall(m.ctxFor(ev), m.self, s.Remote, reason); err != nil {
		m.logger.Warn().Err(err).Str("sid", s.ID).Msg("rejectCall")
	}
	return m.finish(s, trigDecline, nil)
}

func (m *Manager) handleHangup(ev event) error {
	s := m.sess
	if s == nil {
		return ErrNoActiveCall
	}
	if s.State == domain.StateIncoming {
		return m.handleDecline(ev)
	}
	if _, err := nextState(s.State, trigHangup); err != nil {
		return err
	}
	if s.remoteAware {
		if err := m.signaller.EndCall(m.ctxFor(ev), m.self, s.Remote); err != nil {
			m.logger.Warn().Err(err).Str("sid", s.ID).Msg("endCall")
		}
	}
	return m.finish(s, trigHangup, &core.Notice{Kind: core.NoticeInfo, Message: MsgEnded})
}

func (m *Manager) handleAnswered(ev event) {
	s := m.sess
	if s == nil || s.Role != domain.RoleCaller || ev.peer != s.Remote {
		m.logger.Debug().Str("callee", string(ev.peer)).Msg("answer for no matching call")
		return
	}
	if err := m.transition(s, trigAnswered); err != nil {
		m.logger.Debug().Err(err).Str("sid", s.ID).Msg("answer ignored")
		return
	}
	if err := s.peer.SetRemoteDescription(ev.sdp); err != nil {
		_ = m.fail(m.ctxFor(ev), s, MsgEstablish, err)
		return
	}
	m.drain(s)
}

func (m *Manager) handleRemoteCandidate(ev event) {
	s := m.sess
	if s == nil || ev.peer != s.Remote {
		m.logger.Debug().Str("sender", string(ev.peer)).Msg("candidate for no matching call")
		return
	}
	if !s.canApplyCandidates() {
		if dropped := s.candidates.Enqueue(ev.candidate); dropped > 0 {
			m.logger.Debug().Str("sid", s.ID).Int("dropped", dropped).Msg("candidate buffer full")
		}
		return
	}
	if err := s.peer.AddICECandidate(ev.candidate); err != nil {
		m.logger.Warn().Err(err).Str("sid", s.ID).Msg("add remote candidate")
	}
}

func (m *Manager) handleRejected(ev event) {
	s := m.sess
	if s == nil || ev.peer != s.Remote {
		return
	}
	reason := ev.reason
	if reason == "" {
		reason = MsgRejected
	}
	if err := m.finish(s, trigRejected, &core.Notice{Kind: core.NoticeInfo, Message: reason}); err != nil {
		m.logger.Debug().Err(err).Str("sid", s.ID).Msg("rejection ignored")
	}
}

func (m *Manager) handleRemoteEnded(ev event) {
	s := m.sess
	if s == nil {
		return
	}
	if ev.peer != "" && ev.peer != s.Remote {
		m.logger.Debug().Str("sid", s.ID).Str("from", string(ev.peer)).Msg("call:ended for another call")
		return
	}
	if err := m.finish(s, trigRemoteEnded, &core.Notice{Kind: core.NoticeInfo, Message: MsgEnded}); err != nil {
		m.logger.Debug().Err(err).Str("sid", s.ID).Msg("remote end ignored")
	}
}

func (m *Manager) handleRemoteError(ev event) {
	s := m.sess
	if s == nil {
		m.notifier.Notice(core.Notice{Kind: core.NoticeError, Message: ev.reason})
		return
	}
	if err := m.finish(s, trigRemoteError, &core.Notice{Kind: core.NoticeError, Message: ev.reason}); err != nil {
		m.logger.Debug().Err(err).Str("sid", s.ID).Msg("remote error ignored")
	}
}

func (m *Manager) handleTimeout(ev event) {
	s := m.current(ev.sid)
	if s == nil {
		return
	}
	s.timeout = nil
	if _, err := nextState(s.State, trigTimeout); err != nil {
		return
	}
	if err := m.signaller.EndCall(m.ctxFor(ev), m.self, s.Remote); err != nil {
		m.logger.Warn().Err(err).Str("sid", s.ID).Msg("endCall after timeout")
	}
	_ = m.finish(s, trigTimeout, &core.Notice{Kind: core.NoticeError, Message: MsgTimeout})
}

func (m *Manager) handlePeerState(ev event) {
	s := m.current(ev.sid)
	if s == nil {
		return
	}
	var err error
	switch ev.pcState {
	case webrtc.PeerConnectionStateConnected:
		if s.State != domain.StateConnecting {
			return
		}
		s.cancelTimeout()
		err = m.transition(s, trigPeerConnected)
	case webrtc.PeerConnectionStateFailed:
		err = m.finish(s, trigPeerFailed, &core.Notice{Kind: core.NoticeError, Message: MsgConnectionFailed})
	case webrtc.PeerConnectionStateClosed:
		err = m.finish(s, trigPeerClosed, nil)
	default:
		m.logger.Debug().Str("sid", s.ID).Str("peer_state", ev.pcState.String()).Msg("peer state")
		return
	}
	if err != nil {
		m.logger.Debug().Err(err).Str("sid", s.ID).Str("peer_state", ev.pcState.String()).Msg("peer state ignored")
	}
}

func (m *Manager) handleLocalCandidate(ev event) {
	s := m.current(ev.sid)
	if s == nil || s.peer == nil || s.peer.IsClosed() {
		return
	}
	if err := m.signaller.SendICECandidate(m.ctxFor(ev), m.self, s.Remote, ev.candidate); err != nil {
		m.logger.Warn().Err(err).Str("sid", s.ID).Msg("sendICECandidate")
	}
}

func (m *Manager) handleRemoteTrack(ev event) {
	s := m.current(ev.sid)
	if s == nil {
		ev.track.Stop()
		return
	}
	if s.remoteStream == nil {
		s.remoteStream = core.NewMediaStream(ev.streamID)
	}
	if s.remoteStream.ID() != ev.streamID {
		m.logger.Warn().Str("sid", s.ID).Str("stream_id", ev.streamID).Msg("ignoring track from a second remote stream")
		ev.track.Stop()
		return
	}
	if !s.remoteStream.AddTrack(ev.track) {
		return
	}
	m.notifier.RemoteStream(s.remoteStream)
	m.publish(s)
}

func (m *Manager) handleToggleMute() error {
	s := m.sess
	if s == nil {
		return ErrNoActiveCall
	}
	if s.localStream == nil {
		return ErrNoLocalMedia
	}
	s.muted = !s.muted
	for _, t := range s.localStream.TracksOfKind(webrtc.RTPCodecTypeAudio) {
		t.SetEnabled(!s.muted)
	}
	m.publish(s)
	return nil
}

func (m *Manager) handleToggleVideo() error {
	s := m.sess
	if s == nil {
		return ErrNoActiveCall
	}
	if s.localStream == nil {
		return ErrNoLocalMedia
	}
	if !s.Media.HasVideo() {
		return ErrNoVideo
	}
	s.videoOff = !s.videoOff
	for _, t := range s.localStream.TracksOfKind(webrtc.RTPCodecTypeVideo) {
		t.SetEnabled(!s.videoOff)
	}
	m.publish(s)
	return nil
}
