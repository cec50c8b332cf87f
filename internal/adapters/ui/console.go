// Package ui renders call notifications and reads softphone commands on a
// terminal.
package ui

import (
	"github.com/pterm/pterm"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

// Console prints manager notifications with pterm.
type Console struct {
	last domain.CallState
}

var _ core.Notifier = (*Console)(nil)

func NewConsole() *Console { return &Console{} }

func (c *Console) StateChanged(s core.Snapshot) {
	if s.State == c.last {
		return
	}
	c.last = s.State
	switch s.State {
	case domain.StateIncoming:
		pterm.Warning.Printfln("Incoming %s call from %s (accept / reject)", s.Media, s.Remote)
	case domain.StateOutgoing:
		pterm.Info.Printfln("Calling %s (%s)...", s.Remote, s.Media)
	case domain.StateConnecting:
		pterm.Info.Printfln("Connecting to %s", s.Remote)
	case domain.StateConnected:
		pterm.Success.Printfln("Connected with %s", s.Remote)
	case domain.StateEnded:
		pterm.Info.Println("Call ended")
	case domain.StateFailed:
		pterm.Error.Println("Call failed")
	case domain.StateIdle:
	}
}

func (c *Console) RemoteStream(s *core.MediaStream) {
	pterm.Success.Printfln("Receiving media stream %s (%d tracks)", s.ID(), len(s.Tracks()))
}

func (c *Console) Notice(n core.Notice) {
	if n.Kind == core.NoticeError {
		pterm.Error.Println(n.Message)
		return
	}
	pterm.Info.Println(n.Message)
}

// PrintStatus renders a snapshot as a table.
func PrintStatus(s core.Snapshot) {
	if !s.Active() {
		pterm.Info.Printfln("No active call (%s)", s.State)
		return
	}
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"state", s.State.String()},
		{"role", s.Role.String()},
		{"remote", string(s.Remote)},
		{"media", s.Media.String()},
		{"muted", yesNo(s.Muted)},
		{"video", yesNo(s.VideoEnabled)},
	}).Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
