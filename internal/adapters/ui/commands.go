package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Phone is the command surface of call.Manager.
type Phone interface {
	StartCall(ctx context.Context, callee domain.ParticipantID, media domain.MediaKind) error
	AcceptCall(ctx context.Context) error
	RejectCall(ctx context.Context, reason string) error
	EndCall(ctx context.Context) error
	ToggleMute(ctx context.Context) error
	ToggleVideo(ctx context.Context) error
	Snapshot() core.Snapshot
}

type Op int

const (
	OpCall Op = iota + 1
	OpAccept
	OpReject
	OpHangup
	OpMute
	OpVideo
	OpStatus
	OpHelp
	OpQuit
)

type Command struct {
	Op     Op
	Callee domain.ParticipantID
	Media  domain.MediaKind
	Reason string
}

const helpText = `call <id> [audio|video]  start a call
accept                   answer the ringing call
reject [reason]          decline the ringing call
hangup                   end or cancel the call
mute                     toggle the microphone
video                    toggle the camera
status                   show the current call
quit                     leave`

// ParseCommand parses one input line. Empty lines yield a nil command.
func ParseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "call":
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("%w: call <id> [audio|video]", ErrUsage)
		}
		callee, err := domain.ParseParticipantID(args[0])
		if err != nil {
			return nil, err
		}
		media := domain.MediaAudio
		if len(args) == 2 {
			if media, err = domain.ParseMediaKind(args[1]); err != nil {
				return nil, err
			}
		}
		return &Command{Op: OpCall, Callee: callee, Media: media}, nil
	case "accept", "answer":
		return &Command{Op: OpAccept}, nil
	case "reject", "decline":
		return &Command{Op: OpReject, Reason: strings.Join(args, " ")}, nil
	case "hangup", "end":
		return &Command{Op: OpHangup}, nil
	case "mute":
		return &Command{Op: OpMute}, nil
	case "video":
		return &Command{Op: OpVideo}, nil
	case "status":
		return &Command{Op: OpStatus}, nil
	case "help", "?":
		return &Command{Op: OpHelp}, nil
	case "quit", "exit":
		return &Command{Op: OpQuit}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
}

// Execute runs cmd against phone.
func Execute(ctx context.Context, phone Phone, cmd *Command) error {
	switch cmd.Op {
	case OpCall:
		return phone.StartCall(ctx, cmd.Callee, cmd.Media)
	case OpAccept:
		return phone.AcceptCall(ctx)
	case OpReject:
		return phone.RejectCall(ctx, cmd.Reason)
	case OpHangup:
		return phone.EndCall(ctx)
	case OpMute:
		if err := phone.ToggleMute(ctx); err != nil {
			return err
		}
		pterm.Info.Printfln("Muted: %s", yesNo(phone.Snapshot().Muted))
	case OpVideo:
		if err := phone.ToggleVideo(ctx); err != nil {
			return err
		}
		pterm.Info.Printfln("Video: %s", yesNo(phone.Snapshot().VideoEnabled))
	case OpStatus:
		PrintStatus(phone.Snapshot())
	case OpHelp:
		pterm.Println(helpText)
	case OpQuit:
	}
	return nil
}

// Loop reads commands from in until quit, EOF or ctx ends.
func Loop(ctx context.Context, in io.Reader, phone Phone) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			cmd, err := ParseCommand(line)
			if err != nil {
				pterm.Error.Println(err)
				continue
			}
			if cmd == nil {
				continue
			}
			if cmd.Op == OpQuit {
				return nil
			}
			if err := Execute(ctx, phone, cmd); err != nil {
				pterm.Error.Println(err)
			}
		}
	}
}
