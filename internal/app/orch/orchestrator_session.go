package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

// Connect registers sess for id. An older connection of the same
// participant is closed.
func (o *Orchestrator) Connect(id domain.ParticipantID, sess core.MemberSession, cancel context.CancelFunc) {
	old, oldCancel, replaced := o.Registry.Bind(id, sess, cancel)
	if !replaced {
		return
	}
	log.Info().Str("module", "orch").Str("participant", string(id)).Msg("replacing previous connection")
	if oldCancel != nil {
		oldCancel()
	}
	old.Signal().Close()
}

// Disconnect unregisters sess and ends every call it was part of.
func (o *Orchestrator) Disconnect(id domain.ParticipantID, sess core.MemberSession) {
	if !o.Registry.Unbind(id, sess) {
		return
	}
	for _, peer := range o.Registry.DropCalls(id) {
		if err := o.deliverMsg(peer, &protocol.CallEnded{From: string(id)}); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("participant", string(peer)).Msg("call:ended after disconnect")
			continue
		}
		log.Info().Str("module", "orch").Str("participant", string(id)).Str("peer", string(peer)).Msg("call ended by disconnect")
	}
}
