package domain

import "fmt"

type CallState int

const (
	StateIdle CallState = iota
	StateOutgoing
	StateIncoming
	StateConnecting
	StateConnected
	StateEnded
	StateFailed
)

var callStateNames = [...]string{
	StateIdle:       "idle",
	StateOutgoing:   "outgoing",
	StateIncoming:   "incoming",
	StateConnecting: "connecting",
	StateConnected:  "connected",
	StateEnded:      "ended",
	StateFailed:     "failed",
}

func (s CallState) String() string {
	if s < 0 || int(s) >= len(callStateNames) {
		return fmt.Sprintf("CallState(%d)", int(s))
	}
	return callStateNames[s]
}

// Terminal reports whether no further transition may leave s.
func (s CallState) Terminal() bool {
	return s == StateEnded || s == StateFailed
}

type Role int

const (
	RoleCaller Role = iota + 1
	RoleCallee
)

func (r Role) String() string {
	switch r {
	case RoleCaller:
		return "caller"
	case RoleCallee:
		return "callee"
	default:
		return "none"
	}
}

type MediaKind int

const (
	MediaAudio MediaKind = iota + 1
	MediaAudioVideo
)

// Wire names used in the callType field of call:incoming.
const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

func (m MediaKind) String() string {
	switch m {
	case MediaAudio:
		return CallTypeAudio
	case MediaAudioVideo:
		return CallTypeVideo
	default:
		return "unknown"
	}
}

func (m MediaKind) HasVideo() bool { return m == MediaAudioVideo }

func ParseMediaKind(callType string) (MediaKind, error) {
	switch callType {
	case CallTypeAudio:
		return MediaAudio, nil
	case CallTypeVideo:
		return MediaAudioVideo, nil
	default:
		return 0, fmt.Errorf("unknown call type %q", callType)
	}
}
