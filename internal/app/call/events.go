package call

import (
	"context"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

type eventKind int

const (
	// local commands
	evStartCall eventKind = iota + 1
	evAcceptCall
	evRejectCall
	evEndCall
	evToggleMute
	evToggleVideo

	// signaling
	evIncoming
	evAnswered
	evRemoteCandidate
	evRejected
	evRemoteEnded
	evRemoteError

	// peer connection and timers, tagged with the session id
	evLocalCandidate
	evRemoteTrack
	evPeerState
	evTimeout
)

var eventNames = [...]string{
	evStartCall:       "start_call",
	evAcceptCall:      "accept_call",
	evRejectCall:      "reject_call",
	evEndCall:         "end_call",
	evToggleMute:      "toggle_mute",
	evToggleVideo:     "toggle_video",
	evIncoming:        "call:incoming",
	evAnswered:        "call:answered",
	evRemoteCandidate: "call:iceCandidate",
	evRejected:        "call:rejected",
	evRemoteEnded:     "call:ended",
	evRemoteError:     "call:error",
	evLocalCandidate:  "local_candidate",
	evRemoteTrack:     "remote_track",
	evPeerState:       "peer_state",
	evTimeout:         "timeout",
}

func (k eventKind) String() string {
	if k > 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

type event struct {
	kind eventKind
	sid  string

	peer      domain.ParticipantID
	media     domain.MediaKind
	sdp       webrtc.SessionDescription
	candidate webrtc.ICECandidateInit
	reason    string
	pcState   webrtc.PeerConnectionState
	streamID  string
	track     core.MediaTrack

	ctx   context.Context
	reply chan error
}
