package orch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

var (
	ErrIdentityMismatch = errors.New("payload identity does not match connection")
	ErrSelfCall         = errors.New("cannot call yourself")
	ErrNotInCall        = errors.New("no call with participant")
)

func checkSender(from domain.ParticipantID, claimed string) error {
	if domain.ParticipantID(claimed) != from {
		return fmt.Errorf("%w: %q", ErrIdentityMismatch, claimed)
	}
	return nil
}

// target validates the sender and parses the other end of the action.
func target(from domain.ParticipantID, claimed, raw string) (domain.ParticipantID, error) {
	if err := checkSender(from, claimed); err != nil {
		return "", err
	}
	to, err := domain.ParseParticipantID(raw)
	if err != nil {
		return "", err
	}
	if to == from {
		return "", ErrSelfCall
	}
	return to, nil
}

func (o *Orchestrator) InitiateCall(from domain.ParticipantID, m *protocol.InitiateCall) error {
	callee, err := target(from, m.Caller, m.Callee)
	if err != nil {
		return err
	}
	if _, err := domain.ParseMediaKind(m.CallType); err != nil {
		return err
	}
	if err := o.deliverMsg(callee, &protocol.CallIncoming{Caller: m.Caller, Offer: m.Offer, CallType: m.CallType}); err != nil {
		return err
	}
	o.Registry.LinkCall(from, callee)
	return nil
}

func (o *Orchestrator) AnswerCall(from domain.ParticipantID, m *protocol.AnswerCall) error {
	caller, err := target(from, m.Callee, m.Caller)
	if err != nil {
		return err
	}
	if err := o.deliverMsg(caller, &protocol.CallAnswered{Callee: m.Callee, Answer: m.Answer}); err != nil {
		return err
	}
	o.Registry.LinkCall(from, caller)
	return nil
}

func (o *Orchestrator) SendICECandidate(from domain.ParticipantID, m *protocol.SendICECandidate) error {
	recipient, err := target(from, m.Sender, m.Recipient)
	if err != nil {
		return err
	}
	return o.deliverMsg(recipient, &protocol.CallICECandidate{Sender: m.Sender, Candidate: m.Candidate})
}

func (o *Orchestrator) RejectCall(from domain.ParticipantID, m *protocol.RejectCall) error {
	caller, err := target(from, m.Callee, m.Caller)
	if err != nil {
		return err
	}
	o.Registry.UnlinkCall(from, caller)
	return o.deliverMsg(caller, &protocol.CallRejected{Callee: m.Callee, Reason: m.Reason})
}

// EndCall is only relayed between linked participants, so nobody can hang
// up a call they are not part of.
func (o *Orchestrator) EndCall(from domain.ParticipantID, m *protocol.EndCall) error {
	to, err := target(from, m.From, m.To)
	if err != nil {
		return err
	}
	if !o.Registry.InCallWith(from, to) {
		log.Debug().Str("module", "orch").Str("participant", string(from)).Str("peer", string(to)).Msg("endCall without a call, dropped")
		return ErrNotInCall
	}
	o.Registry.UnlinkCall(from, to)
	return o.deliverMsg(to, &protocol.CallEnded{From: string(from)})
}
