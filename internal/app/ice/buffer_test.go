package ice

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voicecall/internal/clock"
)

func candidate(i int) webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate: fmt.Sprintf("candidate:%d 1 udp 2130706431 192.0.2.1 %d typ host", i, 50000+i),
	}
}

func newTestBuffer(cfg Config) (*Buffer, *clock.FakeClock) {
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewBuffer(cfg, clk, zerolog.Nop()), clk
}

func TestEnqueueKeepsNewestWithinSoftLimit(t *testing.T) {
	b, _ := newTestBuffer(DefaultConfig())

	dropped := 0
	for i := 0; i < 25; i++ {
		dropped += b.Enqueue(candidate(i))
	}
	if dropped != 5 {
		t.Fatalf("dropped = %d, want 5", dropped)
	}
	got := b.Pending()
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	for i, c := range got {
		if want := candidate(i + 5); c.Candidate != want.Candidate {
			t.Fatalf("pending[%d] = %q, want %q", i, c.Candidate, want.Candidate)
		}
	}
}

func TestDrainAppliesInOrderAndClears(t *testing.T) {
	b, _ := newTestBuffer(DefaultConfig())
	for i := 0; i < 3; i++ {
		b.Enqueue(candidate(i))
	}

	var seen []string
	applied, failed := b.Drain(func(c webrtc.ICECandidateInit) error {
		seen = append(seen, c.Candidate)
		return nil
	})
	if applied != 3 || failed != 0 {
		t.Fatalf("applied=%d failed=%d", applied, failed)
	}
	for i, c := range seen {
		if c != candidate(i).Candidate {
			t.Fatalf("seen[%d] = %q", i, c)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("Len = %d after drain", b.Len())
	}
}

func TestDrainSkipsFailingCandidates(t *testing.T) {
	b, _ := newTestBuffer(DefaultConfig())
	for i := 0; i < 4; i++ {
		b.Enqueue(candidate(i))
	}

	calls := 0
	applied, failed := b.Drain(func(c webrtc.ICECandidateInit) error {
		calls++
		if c.Candidate == candidate(1).Candidate {
			return errors.New("bad candidate")
		}
		return nil
	})
	if calls != 4 || applied != 3 || failed != 1 {
		t.Fatalf("calls=%d applied=%d failed=%d", calls, applied, failed)
	}
	if b.Len() != 0 {
		t.Fatalf("failed candidate was re-enqueued, Len = %d", b.Len())
	}
}

func TestDrainDoesNotApplyCandidatesEnqueuedMidDrain(t *testing.T) {
	b, _ := newTestBuffer(DefaultConfig())
	b.Enqueue(candidate(0))
	b.Enqueue(candidate(1))

	late := candidate(99)
	var seen []string
	b.Drain(func(c webrtc.ICECandidateInit) error {
		if len(seen) == 0 {
			b.Enqueue(late)
		}
		seen = append(seen, c.Candidate)
		return nil
	})

	if len(seen) != 2 {
		t.Fatalf("first drain applied %d candidates, want 2", len(seen))
	}
	for _, c := range seen {
		if c == late.Candidate {
			t.Fatal("candidate enqueued mid-drain was applied by the same drain")
		}
	}
	pending := b.Pending()
	if len(pending) != 1 || pending[0].Candidate != late.Candidate {
		t.Fatalf("pending after drain = %v", pending)
	}

	var second []string
	b.Drain(func(c webrtc.ICECandidateInit) error {
		second = append(second, c.Candidate)
		return nil
	})
	if len(second) != 1 || second[0] != late.Candidate {
		t.Fatalf("second drain = %v", second)
	}
}

func TestCleanupEnforcesHardLimit(t *testing.T) {
	b, clk := newTestBuffer(Config{SoftLimit: 0, HardLimit: 50, CleanupInterval: 10 * time.Second})
	for i := 0; i < 70; i++ {
		b.Enqueue(candidate(i))
	}
	if b.Len() != 70 {
		t.Fatalf("Len = %d before cleanup", b.Len())
	}

	clk.Advance(10 * time.Second)

	got := b.Pending()
	if len(got) != 50 {
		t.Fatalf("Len = %d after cleanup, want 50", len(got))
	}
	if got[0].Candidate != candidate(20).Candidate {
		t.Fatalf("oldest kept = %q, want candidate 20", got[0].Candidate)
	}
	if clk.PendingCount() != 1 {
		t.Fatalf("cleanup not rescheduled while candidates pending")
	}
}

func TestCleanupTimerStopsWhenEmpty(t *testing.T) {
	b, clk := newTestBuffer(DefaultConfig())
	b.Enqueue(candidate(0))
	if clk.PendingCount() != 1 {
		t.Fatalf("cleanup not scheduled on enqueue")
	}
	b.Drain(func(webrtc.ICECandidateInit) error { return nil })
	if clk.PendingCount() != 0 {
		t.Fatalf("cleanup still scheduled after drain")
	}
}

func TestStopCancelsTimerAndIgnoresEnqueue(t *testing.T) {
	b, clk := newTestBuffer(DefaultConfig())
	b.Enqueue(candidate(0))
	b.Stop()

	if clk.PendingCount() != 0 {
		t.Fatal("cleanup timer survived Stop")
	}
	b.Enqueue(candidate(1))
	if b.Len() != 0 {
		t.Fatalf("Len = %d after Stop", b.Len())
	}
	clk.Advance(time.Minute)
}
