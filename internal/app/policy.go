package app

import "github.com/dkeye/voicecall/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a participant whose outbound buffer is
// full.
type Policy interface {
	OnBackPressure(member core.MemberSession) BackpressureAction
}

// SimplePolicy disconnects slow participants. A client that cannot keep up
// with signaling cannot negotiate a call either.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.MemberSession) BackpressureAction {
	return KickMember
}

// DropPolicy keeps slow participants connected and loses the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.MemberSession) BackpressureAction {
	return DropFrame
}
