// Package protocol defines the JSON signaling messages exchanged between
// softphones and the relay over WebSocket text frames.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Client → relay.
const (
	TypeInitiateCall     = "initiateCall"
	TypeAnswerCall       = "answerCall"
	TypeSendICECandidate = "sendICECandidate"
	TypeRejectCall       = "rejectCall"
	TypeEndCall          = "endCall"
	TypePing             = "ping"
	TypeWhoAmI           = "whoami"
)

// Relay → client.
const (
	TypeCallIncoming     = "call:incoming"
	TypeCallAnswered     = "call:answered"
	TypeCallICECandidate = "call:iceCandidate"
	TypeCallRejected     = "call:rejected"
	TypeCallEnded        = "call:ended"
	TypeCallError        = "call:error"
	TypePong             = "pong"
	TypeError            = "error"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Message is any frame body. Encode fills in the type field.
type Message interface {
	MessageType() string
	stamp(string)
}

// Header is embedded in every message and flattened by encoding/json.
type Header struct {
	Type string `json:"type"`
}

func (h *Header) stamp(t string) { h.Type = t }

type InitiateCall struct {
	Header
	Caller   string                    `json:"caller"`
	Callee   string                    `json:"callee"`
	Offer    webrtc.SessionDescription `json:"offer"`
	CallType string                    `json:"callType"`
}

type AnswerCall struct {
	Header
	Caller string                    `json:"caller"`
	Callee string                    `json:"callee"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type SendICECandidate struct {
	Header
	Sender    string                  `json:"sender"`
	Recipient string                  `json:"recipient"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type RejectCall struct {
	Header
	Callee string `json:"callee"`
	Caller string `json:"caller"`
	Reason string `json:"reason"`
}

type EndCall struct {
	Header
	From string `json:"from"`
	To   string `json:"to"`
}

type Ping struct{ Header }

// WhoAmI is sent empty by the client; the relay fills ID and Username.
type WhoAmI struct {
	Header
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

type CallIncoming struct {
	Header
	Caller   string                    `json:"caller"`
	Offer    webrtc.SessionDescription `json:"offer"`
	CallType string                    `json:"callType"`
}

type CallAnswered struct {
	Header
	Callee string                    `json:"callee"`
	Answer webrtc.SessionDescription `json:"answer"`
}

type CallICECandidate struct {
	Header
	Sender    string                  `json:"sender"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type CallRejected struct {
	Header
	Callee string `json:"callee"`
	Reason string `json:"reason"`
}

// CallEnded names the participant that ended the call when the relay
// knows it.
type CallEnded struct {
	Header
	From string `json:"from,omitempty"`
}

type CallError struct {
	Header
	Message string `json:"message"`
}

type Pong struct{ Header }

type Error struct {
	Header
	Error string `json:"error"`
}

func (InitiateCall) MessageType() string     { return TypeInitiateCall }
func (AnswerCall) MessageType() string       { return TypeAnswerCall }
func (SendICECandidate) MessageType() string { return TypeSendICECandidate }
func (RejectCall) MessageType() string       { return TypeRejectCall }
func (EndCall) MessageType() string          { return TypeEndCall }
func (Ping) MessageType() string             { return TypePing }
func (WhoAmI) MessageType() string           { return TypeWhoAmI }
func (CallIncoming) MessageType() string     { return TypeCallIncoming }
func (CallAnswered) MessageType() string     { return TypeCallAnswered }
func (CallICECandidate) MessageType() string { return TypeCallICECandidate }
func (CallRejected) MessageType() string     { return TypeCallRejected }
func (CallEnded) MessageType() string        { return TypeCallEnded }
func (CallError) MessageType() string        { return TypeCallError }
func (Pong) MessageType() string             { return TypePong }
func (Error) MessageType() string            { return TypeError }

func Encode(m Message) ([]byte, error) {
	m.stamp(m.MessageType())
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return b, nil
}

var factories = map[string]func() Message{
	TypeInitiateCall:     func() Message { return &InitiateCall{} },
	TypeAnswerCall:       func() Message { return &AnswerCall{} },
	TypeSendICECandidate: func() Message { return &SendICECandidate{} },
	TypeRejectCall:       func() Message { return &RejectCall{} },
	TypeEndCall:          func() Message { return &EndCall{} },
	TypePing:             func() Message { return &Ping{} },
	TypeWhoAmI:           func() Message { return &WhoAmI{} },
	TypeCallIncoming:     func() Message { return &CallIncoming{} },
	TypeCallAnswered:     func() Message { return &CallAnswered{} },
	TypeCallICECandidate: func() Message { return &CallICECandidate{} },
	TypeCallRejected:     func() Message { return &CallRejected{} },
	TypeCallEnded:        func() Message { return &CallEnded{} },
	TypeCallError:        func() Message { return &CallError{} },
	TypePong:             func() Message { return &Pong{} },
	TypeError:            func() Message { return &Error{} },
}

// Decode parses a frame into a pointer to its concrete message type.
func Decode(data []byte) (Message, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	newMsg, ok := factories[h.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, h.Type)
	}
	m := newMsg()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, h.Type, err)
	}
	return m, nil
}
