package core

import "github.com/dkeye/voicecall/internal/domain"

// Snapshot is the read-only view of the current call handed to the UI.
type Snapshot struct {
	SessionID    string
	State        domain.CallState
	Role         domain.Role
	Media        domain.MediaKind
	Remote       domain.ParticipantID
	Muted        bool
	VideoEnabled bool
	LocalStream  *MediaStream
	RemoteStream *MediaStream
}

// Active reports whether a non-terminal call exists.
func (s Snapshot) Active() bool {
	return s.State != domain.StateIdle && !s.State.Terminal()
}

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

// Notice is a one-shot user-facing message.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier is the outward UI surface of the call manager. Implementations
// must not block; they are invoked from the manager's event loop.
type Notifier interface {
	StateChanged(Snapshot)
	RemoteStream(*MediaStream)
	Notice(Notice)
}

type NopNotifier struct{}

func (NopNotifier) StateChanged(Snapshot)     {}
func (NopNotifier) RemoteStream(*MediaStream) {}
func (NopNotifier) Notice(Notice)             {}
