package media

import (
	"context"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/core"
)

type readRTPFunc func() (*rtp.Packet, error)

// RemoteTrack consumes an incoming track until it is stopped or the
// transport goes away.
type RemoteTrack struct {
	id    string
	kind  webrtc.RTPCodecType
	state trackState

	packets atomic.Uint64
	bytes   atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

var _ core.MediaTrack = (*RemoteTrack)(nil)

// StartRemoteTrack begins reading src in its own goroutine.
func StartRemoteTrack(ctx context.Context, src *webrtc.TrackRemote, logger zerolog.Logger) *RemoteTrack {
	read := func() (*rtp.Packet, error) {
		pkt, _, err := src.ReadRTP()
		return pkt, err
	}
	return startRemoteTrack(ctx, src.ID(), src.Kind(), read, logger)
}

func startRemoteTrack(ctx context.Context, id string, kind webrtc.RTPCodecType, read readRTPFunc, logger zerolog.Logger) *RemoteTrack {
	ctx, cancel := context.WithCancel(ctx)
	t := &RemoteTrack{
		id:     id,
		kind:   kind,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	l := logger.With().Str("module", "media.remote").Str("track_id", id).Str("kind", kind.String()).Logger()
	go t.loop(ctx, read, &l)
	return t
}

func (t *RemoteTrack) loop(ctx context.Context, read readRTPFunc, logger *zerolog.Logger) {
	defer close(t.done)
	defer t.state.MarkEnded()
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("remote track stopped")
			return
		default:
		}
		pkt, err := read()
		if err != nil {
			logger.Debug().Err(err).Uint64("packets", t.packets.Load()).Msg("remote track read ended")
			return
		}
		t.packets.Add(1)
		t.bytes.Add(uint64(len(pkt.Payload)))
	}
}

func (t *RemoteTrack) ID() string                { return t.id }
func (t *RemoteTrack) Kind() webrtc.RTPCodecType { return t.kind }

func (t *RemoteTrack) ReadyState() core.ReadyState {
	if t.state.Get() == TrackStateEnded {
		return core.ReadyStateEnded
	}
	return core.ReadyStateLive
}

func (t *RemoteTrack) Stop() {
	t.state.MarkEnded()
	t.cancel()
}

// Enabled reports playback state; a disabled remote track is still read.
func (t *RemoteTrack) Enabled() bool { return t.state.Get() == TrackStateLive }

func (t *RemoteTrack) SetEnabled(on bool) {
	if on {
		t.state.MarkLive()
		return
	}
	t.state.MarkMuted()
}

// Stats returns received packet and payload byte counts.
func (t *RemoteTrack) Stats() (packets, bytes uint64) {
	return t.packets.Load(), t.bytes.Load()
}

// Done is closed when the read loop exits.
func (t *RemoteTrack) Done() <-chan struct{} { return t.done }
