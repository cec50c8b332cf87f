package signal

import (
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/protocol"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, &protocol.Pong{})
}

func (ctl *SignalWSController) handleWhoAmI(sess core.MemberSession, conn *WsSignalConn) {
	meta := sess.Meta()
	ctl.sendJSON(conn, &protocol.WhoAmI{ID: string(meta.ID), Username: meta.Username})
}
