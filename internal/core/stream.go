package core

import (
	"sync"

	"github.com/pion/webrtc/v4"
)

// MediaStream is an ownership list of tracks. The call session that holds it
// is the only party allowed to stop them.
type MediaStream struct {
	id string

	mu     sync.RWMutex
	tracks []MediaTrack
}

func NewMediaStream(id string, tracks ...MediaTrack) *MediaStream {
	s := &MediaStream{id: id}
	for _, t := range tracks {
		s.AddTrack(t)
	}
	return s
}

func (s *MediaStream) ID() string { return s.id }

// AddTrack appends t unless a track with the same ID is already present.
// It reports whether the track was added.
func (s *MediaStream) AddTrack(t MediaTrack) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tracks {
		if existing.ID() == t.ID() {
			return false
		}
	}
	s.tracks = append(s.tracks, t)
	return true
}

func (s *MediaStream) Tracks() []MediaTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MediaTrack, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *MediaStream) TracksOfKind(kind webrtc.RTPCodecType) []MediaTrack {
	var out []MediaTrack
	for _, t := range s.Tracks() {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// StopAll stops every live track and returns how many were stopped.
func (s *MediaStream) StopAll() int {
	stopped := 0
	for _, t := range s.Tracks() {
		if t.ReadyState() == ReadyStateEnded {
			continue
		}
		t.Stop()
		stopped++
	}
	return stopped
}
