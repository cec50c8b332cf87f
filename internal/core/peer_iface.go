package core

import (
	"errors"

	"github.com/pion/webrtc/v4"
)

var (
	ErrRemoteDescriptionSet = errors.New("remote description already applied")
	ErrNoRemoteDescription  = errors.New("remote description not set")
	ErrPeerClosed           = errors.New("peer connection closed")
)

// PeerHandlers are registered once, when the PeerConnection is created, and
// detached by Close before the underlying connection shuts down.
type PeerHandlers struct {
	OnCandidate   func(webrtc.ICECandidateInit)
	OnTrack       func(streamID string, track MediaTrack)
	OnStateChange func(webrtc.PeerConnectionState)
}

// PeerConnection owns exactly one transport-level connection.
type PeerConnection interface {
	// CreateOffer creates an offer and applies it as local description.
	CreateOffer() (webrtc.SessionDescription, error)
	// CreateAnswer creates an answer and applies it as local description.
	CreateAnswer() (webrtc.SessionDescription, error)
	// SetRemoteDescription may be called once; later calls return
	// ErrRemoteDescriptionSet.
	SetRemoteDescription(webrtc.SessionDescription) error
	HasRemoteDescription() bool
	// AddICECandidate requires a remote description and an open connection.
	AddICECandidate(webrtc.ICECandidateInit) error
	AddLocalTrack(LocalTrack) error
	IsClosed() bool
	// Close detaches the handlers, then closes. No-op when already closed.
	Close() error
}

// PeerFactory creates one PeerConnection per call session. sid is used for
// logging only.
type PeerFactory interface {
	NewPeer(sid string, h PeerHandlers) (PeerConnection, error)
}
