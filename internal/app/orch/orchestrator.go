package orch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/app"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

var ErrOffline = errors.New("participant is not online")

// Orchestrator routes call signaling between connected participants.
type Orchestrator struct {
	Registry *app.Registry
	Policy   app.Policy
}

func New(reg *app.Registry, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: reg, Policy: policy}
}

// Deliver queues frame for id. A full buffer is handed to the Policy.
func (o *Orchestrator) Deliver(to domain.ParticipantID, frame core.Frame) error {
	sess, ok := o.Registry.Get(to)
	if !ok {
		return ErrOffline
	}
	err := sess.Signal().TrySend(frame)
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrBackpressure) && o.Policy != nil {
		switch o.Policy.OnBackPressure(sess) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("participant", string(to)).Msg("slow participant kicked")
			o.Kick(to)
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
	return fmt.Errorf("deliver to %s: %w", to, err)
}

func (o *Orchestrator) deliverMsg(to domain.ParticipantID, m protocol.Message) error {
	frame, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	return o.Deliver(to, frame)
}

// Kick cancels the participant's pumps and closes its connection.
func (o *Orchestrator) Kick(id domain.ParticipantID) {
	sess, ok := o.Registry.Get(id)
	if !ok {
		return
	}
	o.Registry.Cancel(id)
	sess.Signal().Close()
}
