// Package media provides local capture and remote playback tracks backed
// by pion.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

var ErrPermissionDenied = errors.New("media permission denied")

const frameDuration = 20 * time.Millisecond

// opusSilence is a single Opus TOC frame carrying 20ms of silence.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// SyntheticSource produces tracks without capture hardware: audio carries
// Opus silence, video is negotiated but sends nothing.
type SyntheticSource struct {
	logger zerolog.Logger
	deny   atomic.Bool
}

var _ core.MediaSource = (*SyntheticSource)(nil)

func NewSyntheticSource(logger zerolog.Logger) *SyntheticSource {
	return &SyntheticSource{logger: logger.With().Str("module", "media.source").Logger()}
}

// Deny makes subsequent GetUserMedia calls fail with ErrPermissionDenied.
func (s *SyntheticSource) Deny(deny bool) { s.deny.Store(deny) }

func (s *SyntheticSource) GetUserMedia(ctx context.Context, kind domain.MediaKind) (*core.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deny.Load() {
		return nil, fmt.Errorf("get user media %s: %w", kind, ErrPermissionDenied)
	}

	streamID := "stream-" + uuid.NewString()
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio-"+uuid.NewString(), streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("audio track: %w", err)
	}
	audioTrack := NewLocalTrack(audio)
	stream := core.NewMediaStream(streamID, audioTrack)

	if kind.HasVideo() {
		video, err := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000},
			"video-"+uuid.NewString(), streamID,
		)
		if err != nil {
			audioTrack.Stop()
			return nil, fmt.Errorf("video track: %w", err)
		}
		stream.AddTrack(NewLocalTrack(video))
	}

	go s.pumpSilence(audioTrack)

	s.logger.Info().Str("stream_id", streamID).Str("media", kind.String()).Msg("local media acquired")
	return stream, nil
}

func (s *SyntheticSource) pumpSilence(t *LocalTrack) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()
	for {
		select {
		case <-t.Done():
			return
		case <-ticker.C:
			err := t.WriteSample(media.Sample{Data: opusSilence, Duration: frameDuration})
			if errors.Is(err, ErrTrackEnded) {
				return
			}
			if err != nil {
				s.logger.Debug().Err(err).Str("track_id", t.ID()).Msg("write sample")
			}
		}
	}
}
