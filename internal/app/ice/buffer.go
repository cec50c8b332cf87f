// Package ice buffers remote ICE candidates that arrive before the local
// peer connection can accept them.
package ice

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/clock"
)

type Config struct {
	// SoftLimit is enforced on every Enqueue. Zero disables it.
	SoftLimit int
	// HardLimit is enforced by the periodic cleanup.
	HardLimit       int
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		SoftLimit:       20,
		HardLimit:       50,
		CleanupInterval: 10 * time.Second,
	}
}

// Buffer is an ordered, bounded queue of candidates. When full, the oldest
// entries are dropped: newer candidates are more likely to describe the
// current network path.
type Buffer struct {
	cfg    Config
	clock  clock.Clock
	logger zerolog.Logger

	mu      sync.Mutex
	pending []webrtc.ICECandidateInit
	cleanup clock.Timer
	stopped bool
}

func NewBuffer(cfg Config, clk clock.Clock, logger zerolog.Logger) *Buffer {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}
	return &Buffer{
		cfg:    cfg,
		clock:  clk,
		logger: logger.With().Str("module", "ice.buffer").Logger(),
	}
}

// Enqueue appends c and returns how many old candidates were dropped to
// stay within the soft limit.
func (b *Buffer) Enqueue(c webrtc.ICECandidateInit) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return 0
	}
	b.pending = append(b.pending, c)

	dropped := 0
	if b.cfg.SoftLimit > 0 && len(b.pending) > b.cfg.SoftLimit {
		dropped = len(b.pending) - b.cfg.SoftLimit
		b.pending = keepNewest(b.pending, b.cfg.SoftLimit)
		b.logger.Debug().Int("dropped", dropped).Int("pending", len(b.pending)).Msg("soft limit reached, dropped oldest")
	}
	b.scheduleLocked()
	return dropped
}

// Drain hands every buffered candidate to apply. The queue is emptied before
// the first call to apply, so candidates enqueued meanwhile wait for the next
// Drain. A failing candidate is logged and skipped.
func (b *Buffer) Drain(apply func(webrtc.ICECandidateInit) error) (applied, failed int) {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.stopTimerLocked()
	b.mu.Unlock()

	for _, c := range batch {
		if err := apply(c); err != nil {
			failed++
			b.logger.Warn().Err(err).Str("candidate", c.Candidate).Msg("buffered candidate rejected")
			continue
		}
		applied++
	}
	if len(batch) > 0 {
		b.logger.Debug().Int("applied", applied).Int("failed", failed).Msg("drained")
	}
	return applied, failed
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Pending returns a copy of the queue, oldest first.
func (b *Buffer) Pending() []webrtc.ICECandidateInit {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]webrtc.ICECandidateInit, len(b.pending))
	copy(out, b.pending)
	return out
}

// Stop cancels the cleanup timer and discards the queue. Later calls to
// Enqueue are ignored.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	b.pending = nil
	b.stopTimerLocked()
}

func (b *Buffer) scheduleLocked() {
	if b.cleanup != nil || b.stopped || len(b.pending) == 0 {
		return
	}
	b.cleanup = b.clock.AfterFunc(b.cfg.CleanupInterval, b.runCleanup)
}

func (b *Buffer) stopTimerLocked() {
	if b.cleanup != nil {
		b.cleanup.Stop()
		b.cleanup = nil
	}
}

func (b *Buffer) runCleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cleanup = nil
	if b.stopped {
		return
	}
	if b.cfg.HardLimit > 0 && len(b.pending) > b.cfg.HardLimit {
		dropped := len(b.pending) - b.cfg.HardLimit
		b.pending = keepNewest(b.pending, b.cfg.HardLimit)
		b.logger.Warn().Int("dropped", dropped).Msg("hard limit cleanup")
	}
	b.scheduleLocked()
}

// keepNewest copies the tail so the dropped head can be collected.
func keepNewest(in []webrtc.ICECandidateInit, n int) []webrtc.ICECandidateInit {
	out := make([]webrtc.ICECandidateInit, n)
	copy(out, in[len(in)-n:])
	return out
}
