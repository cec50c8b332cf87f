package media

import "sync/atomic"

type TrackState int32

const (
	TrackStateLive TrackState = iota
	TrackStateMuted
	TrackStateEnded
)

// trackState is shared by local and remote tracks. Ended is final.
type trackState struct {
	v atomic.Int32 // Zero by default (TrackStateLive)
}

func (s *trackState) Get() TrackState {
	return TrackState(s.v.Load())
}

// MarkLive and MarkMuted never resurrect an ended track.
func (s *trackState) MarkLive() bool {
	return s.v.CompareAndSwap(int32(TrackStateMuted), int32(TrackStateLive)) || s.Get() == TrackStateLive
}

func (s *trackState) MarkMuted() bool {
	return s.v.CompareAndSwap(int32(TrackStateLive), int32(TrackStateMuted)) || s.Get() == TrackStateMuted
}

// MarkEnded reports whether this call ended the track.
func (s *trackState) MarkEnded() bool {
	return TrackState(s.v.Swap(int32(TrackStateEnded))) != TrackStateEnded
}
