//go:generate mockgen -destination=mocks/mock_core.go -package=mocks github.com/dkeye/voicecall/internal/core MediaSource,Signaller

package core

import (
	"context"
	"errors"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicecall/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw signaling payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks: a full buffer yields ErrBackpressure.
	TrySend(Frame) error
	Close()
}

// Signaller issues the outbound half of the call signaling protocol.
type Signaller interface {
	InitiateCall(ctx context.Context, caller, callee domain.ParticipantID, offer webrtc.SessionDescription, media domain.MediaKind) error
	AnswerCall(ctx context.Context, caller, callee domain.ParticipantID, answer webrtc.SessionDescription) error
	SendICECandidate(ctx context.Context, sender, recipient domain.ParticipantID, candidate webrtc.ICECandidateInit) error
	RejectCall(ctx context.Context, callee, caller domain.ParticipantID, reason string) error
	EndCall(ctx context.Context, self, other domain.ParticipantID) error
}
