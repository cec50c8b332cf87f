package call

import (
	"github.com/google/uuid"

	"github.com/dkeye/voicecall/internal/app/ice"
	"github.com/dkeye/voicecall/internal/clock"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

// Session is the single in-flight call. It is owned by the manager loop and
// discarded once it reaches a terminal state.
type Session struct {
	ID     string
	Role   domain.Role
	Media  domain.MediaKind
	State  domain.CallState
	Local  domain.ParticipantID
	Remote domain.ParticipantID

	peer         core.PeerConnection
	localStream  *core.MediaStream
	remoteStream *core.MediaStream
	candidates   *ice.Buffer
	timeout      clock.Timer

	muted    bool
	videoOff bool
	// remoteAware is set once the remote side knows about the call and must
	// be told when it ends.
	remoteAware bool
	released    bool
}

func (m *Manager) newSession(role domain.Role, media domain.MediaKind, remote domain.ParticipantID) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Role:       role,
		Media:      media,
		State:      domain.StateIdle,
		Local:      m.self,
		Remote:     remote,
		candidates: ice.NewBuffer(m.cfg.ICE, m.clock, m.logger),
	}
}

func (s *Session) snapshot() core.Snapshot {
	return core.Snapshot{
		SessionID:    s.ID,
		State:        s.State,
		Role:         s.Role,
		Media:        s.Media,
		Remote:       s.Remote,
		Muted:        s.muted,
		VideoEnabled: s.Media.HasVideo() && !s.videoOff,
		LocalStream:  s.localStream,
		RemoteStream: s.remoteStream,
	}
}

func (s *Session) cancelTimeout() {
	if s.timeout != nil {
		s.timeout.Stop()
		s.timeout = nil
	}
}

// canApplyCandidates reports whether remote candidates may go straight to
// the peer instead of the buffer.
func (s *Session) canApplyCandidates() bool {
	if s.peer == nil || !s.peer.HasRemoteDescription() {
		return false
	}
	return s.State == domain.StateConnecting || s.State == domain.StateConnected
}
