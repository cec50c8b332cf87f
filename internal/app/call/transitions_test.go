package call

import (
	"errors"
	"testing"

	"github.com/dkeye/voicecall/internal/domain"
)

func TestTransitionTable(t *testing.T) {
	const (
		idle       = domain.StateIdle
		outgoing   = domain.StateOutgoing
		incoming   = domain.StateIncoming
		connecting = domain.StateConnecting
		connected  = domain.StateConnected
		ended      = domain.StateEnded
		failed     = domain.StateFailed
	)
	want := map[stateEvent]domain.CallState{
		{idle, trigStart}:    outgoing,
		{idle, trigIncoming}: incoming,

		{outgoing, trigAnswered}:    connecting,
		{outgoing, trigTimeout}:     failed,
		{outgoing, trigRejected}:    failed,
		{outgoing, trigHangup}:      ended,
		{outgoing, trigRemoteEnded}: ended,
		{outgoing, trigRemoteError}: failed,
		{outgoing, trigFault}:       failed,

		{incoming, trigAccept}:      connecting,
		{incoming, trigDecline}:     ended,
		{incoming, trigHangup}:      ended,
		{incoming, trigRemoteEnded}: ended,
		{incoming, trigRemoteError}: failed,
		{incoming, trigFault}:       failed,

		{connecting, trigPeerConnected}: connected,
		{connecting, trigTimeout}:       failed,
		{connecting, trigPeerFailed}:    failed,
		{connecting, trigPeerClosed}:    ended,
		{connecting, trigHangup}:        ended,
		{connecting, trigRemoteEnded}:   ended,
		{connecting, trigRemoteError}:   failed,
		{connecting, trigFault}:         failed,

		{connected, trigPeerFailed}:  failed,
		{connected, trigPeerClosed}:  ended,
		{connected, trigHangup}:      ended,
		{connected, trigRemoteEnded}: ended,
		{connected, trigRemoteError}: failed,
		{connected, trigFault}:       failed,
	}

	states := []domain.CallState{idle, outgoing, incoming, connecting, connected, ended, failed}
	for _, from := range states {
		for on := trigStart; on <= trigFault; on++ {
			got, err := nextState(from, on)
			exp, ok := want[stateEvent{from, on}]
			switch {
			case from.Terminal():
				if !errors.Is(err, ErrCallEnded) || got != from {
					t.Errorf("%s on %s: got (%s, %v), want ErrCallEnded", from, on, got, err)
				}
			case ok:
				if err != nil || got != exp {
					t.Errorf("%s on %s: got (%s, %v), want %s", from, on, got, err, exp)
				}
			default:
				if !errors.Is(err, ErrInvalidTransition) || got != from {
					t.Errorf("%s on %s: got (%s, %v), want ErrInvalidTransition", from, on, got, err)
				}
			}
		}
	}
}

func TestTriggerNames(t *testing.T) {
	for on := trigStart; on <= trigFault; on++ {
		if _, ok := triggerNames[on]; !ok {
			t.Errorf("trigger %d has no name", int(on))
		}
	}
}
