package media

import (
	"errors"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/dkeye/voicecall/internal/core"
)

var ErrTrackEnded = errors.New("track ended")

// LocalTrack is an outgoing sample track. Muted tracks swallow samples.
type LocalTrack struct {
	track *webrtc.TrackLocalStaticSample
	state trackState
	done  chan struct{}
}

var _ core.LocalTrack = (*LocalTrack)(nil)

func NewLocalTrack(track *webrtc.TrackLocalStaticSample) *LocalTrack {
	return &LocalTrack{track: track, done: make(chan struct{})}
}

func (t *LocalTrack) ID() string                    { return t.track.ID() }
func (t *LocalTrack) Kind() webrtc.RTPCodecType     { return t.track.Kind() }
func (t *LocalTrack) TrackLocal() webrtc.TrackLocal { return t.track }
func (t *LocalTrack) State() TrackState             { return t.state.Get() }

// Done is closed once the track is stopped.
func (t *LocalTrack) Done() <-chan struct{} { return t.done }

func (t *LocalTrack) ReadyState() core.ReadyState {
	if t.state.Get() == TrackStateEnded {
		return core.ReadyStateEnded
	}
	return core.ReadyStateLive
}

func (t *LocalTrack) Stop() {
	if t.state.MarkEnded() {
		close(t.done)
	}
}

func (t *LocalTrack) Enabled() bool { return t.state.Get() == TrackStateLive }

func (t *LocalTrack) SetEnabled(on bool) {
	if on {
		t.state.MarkLive()
		return
	}
	t.state.MarkMuted()
}

func (t *LocalTrack) WriteSample(s media.Sample) error {
	switch t.state.Get() {
	case TrackStateEnded:
		return ErrTrackEnded
	case TrackStateMuted:
		return nil
	}
	return t.track.WriteSample(s)
}
