package core

import "github.com/dkeye/voicecall/internal/domain"

// MemberSession binds a relay participant and its signaling endpoint.
type MemberSession interface {
	Meta() *domain.User
	Signal() SignalConnection
}
