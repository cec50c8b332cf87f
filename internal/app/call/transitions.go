package call

import (
	"errors"
	"fmt"

	"github.com/dkeye/voicecall/internal/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid call state transition")
	ErrCallEnded         = errors.New("call already ended")
)

type trigger int

const (
	trigStart trigger = iota + 1
	trigIncoming
	trigAnswered
	trigTimeout
	trigRejected
	trigAccept
	trigDecline
	trigHangup
	trigPeerConnected
	trigPeerFailed
	trigPeerClosed
	trigRemoteEnded
	trigRemoteError
	trigFault
)

var triggerNames = map[trigger]string{
	trigStart:         "start",
	trigIncoming:      "incoming",
	trigAnswered:      "answered",
	trigTimeout:       "timeout",
	trigRejected:      "rejected",
	trigAccept:        "accept",
	trigDecline:       "decline",
	trigHangup:        "hangup",
	trigPeerConnected: "peer_connected",
	trigPeerFailed:    "peer_failed",
	trigPeerClosed:    "peer_closed",
	trigRemoteEnded:   "remote_ended",
	trigRemoteError:   "remote_error",
	trigFault:         "fault",
}

func (t trigger) String() string {
	if n, ok := triggerNames[t]; ok {
		return n
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

type stateEvent struct {
	from domain.CallState
	on   trigger
}

var transitions = buildTransitions()

func buildTransitions() map[stateEvent]domain.CallState {
	t := map[stateEvent]domain.CallState{
		{domain.StateIdle, trigStart}:    domain.StateOutgoing,
		{domain.StateIdle, trigIncoming}: domain.StateIncoming,

		{domain.StateOutgoing, trigAnswered}: domain.StateConnecting,
		{domain.StateOutgoing, trigTimeout}:  domain.StateFailed,
		{domain.StateOutgoing, trigRejected}: domain.StateFailed,
		{domain.StateOutgoing, trigHangup}:   domain.StateEnded,

		{domain.StateIncoming, trigAccept}:  domain.StateConnecting,
		{domain.StateIncoming, trigDecline}: domain.StateEnded,
		{domain.StateIncoming, trigHangup}:  domain.StateEnded,

		{domain.StateConnecting, trigPeerConnected}: domain.StateConnected,
		{domain.StateConnecting, trigTimeout}:       domain.StateFailed,
	}
	for _, s := range []domain.CallState{domain.StateConnecting, domain.StateConnected} {
		t[stateEvent{s, trigPeerFailed}] = domain.StateFailed
		t[stateEvent{s, trigPeerClosed}] = domain.StateEnded
		t[stateEvent{s, trigHangup}] = domain.StateEnded
	}
	for _, s := range []domain.CallState{domain.StateOutgoing, domain.StateIncoming, domain.StateConnecting, domain.StateConnected} {
		t[stateEvent{s, trigRemoteEnded}] = domain.StateEnded
		t[stateEvent{s, trigRemoteError}] = domain.StateFailed
		t[stateEvent{s, trigFault}] = domain.StateFailed
	}
	return t
}

func nextState(from domain.CallState, on trigger) (domain.CallState, error) {
	if from.Terminal() {
		return from, ErrCallEnded
	}
	to, ok := transitions[stateEvent{from, on}]
	if !ok {
		return from, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, on, from)
	}
	return to, nil
}
