package core

import (
	"context"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicecall/internal/domain"
)

type ReadyState int

const (
	ReadyStateLive ReadyState = iota
	ReadyStateEnded
)

func (s ReadyState) String() string {
	if s == ReadyStateEnded {
		return "ended"
	}
	return "live"
}

// MediaTrack is one local or remote media track owned by a call session.
type MediaTrack interface {
	ID() string
	Kind() webrtc.RTPCodecType
	ReadyState() ReadyState
	// Stop releases the track. Stopping an ended track is an error in some
	// backends, so callers check ReadyState first.
	Stop()
	Enabled() bool
	SetEnabled(bool)
}

// LocalTrack is a MediaTrack that can be attached to a PeerConnection.
type LocalTrack interface {
	MediaTrack
	TrackLocal() webrtc.TrackLocal
}

// MediaSource acquires local camera/microphone streams.
type MediaSource interface {
	GetUserMedia(ctx context.Context, media domain.MediaKind) (*MediaStream, error)
}
