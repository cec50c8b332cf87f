package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/app/orch"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

const MsgNotOnline = "User is not online"

func (ctl *SignalWSController) handleInitiateCall(id domain.ParticipantID, conn *WsSignalConn, m *protocol.InitiateCall) {
	err := ctl.Orch.InitiateCall(id, m)
	if errors.Is(err, orch.ErrOffline) {
		ctl.sendJSON(conn, &protocol.CallError{Message: MsgNotOnline})
		return
	}
	ctl.report(id, conn, protocol.TypeInitiateCall, err)
}

func (ctl *SignalWSController) handleAnswerCall(id domain.ParticipantID, conn *WsSignalConn, m *protocol.AnswerCall) {
	err := ctl.Orch.AnswerCall(id, m)
	if errors.Is(err, orch.ErrOffline) {
		// The caller left while we were ringing.
		ctl.sendJSON(conn, &protocol.CallEnded{From: m.Caller})
		return
	}
	ctl.report(id, conn, protocol.TypeAnswerCall, err)
}

func (ctl *SignalWSController) handleICECandidate(id domain.ParticipantID, conn *WsSignalConn, m *protocol.SendICECandidate) {
	ctl.report(id, conn, protocol.TypeSendICECandidate, ctl.Orch.SendICECandidate(id, m))
}

func (ctl *SignalWSController) handleRejectCall(id domain.ParticipantID, conn *WsSignalConn, m *protocol.RejectCall) {
	ctl.report(id, conn, protocol.TypeRejectCall, ctl.Orch.RejectCall(id, m))
}

func (ctl *SignalWSController) handleEndCall(id domain.ParticipantID, conn *WsSignalConn, m *protocol.EndCall) {
	ctl.report(id, conn, protocol.TypeEndCall, ctl.Orch.EndCall(id, m))
}

// report answers the sender only for errors it caused. Delivery problems
// on the other side are logged.
func (ctl *SignalWSController) report(id domain.ParticipantID, conn *WsSignalConn, action string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, orch.ErrOffline), errors.Is(err, orch.ErrNotInCall):
		log.Debug().Str("module", "signal").Str("participant", string(id)).Str("action", action).Msg("dropped")
	case errors.Is(err, core.ErrBackpressure), errors.Is(err, core.ErrConnClosed):
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Str("action", action).Msg("relay failed")
	default:
		log.Warn().Err(err).Str("module", "signal").Str("participant", string(id)).Str("action", action).Msg("rejected")
		ctl.sendJSON(conn, &protocol.Error{Error: err.Error()})
	}
}
