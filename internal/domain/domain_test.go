package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseParticipantID(t *testing.T) {
	if id, err := ParseParticipantID("  alice@example.org "); err != nil || id != "alice@example.org" {
		t.Fatalf("got %q, %v", id, err)
	}
	if _, err := ParseParticipantID(" "); !errors.Is(err, ErrParticipantEmpty) {
		t.Fatalf("got %v", err)
	}
	if _, err := ParseParticipantID(strings.Repeat("x", MaxParticipantIDLen+1)); !errors.Is(err, ErrParticipantTooLong) {
		t.Fatalf("got %v", err)
	}
}

func TestNewUserDefaultsUsername(t *testing.T) {
	u, err := NewUser(ParticipantID(strings.Repeat("a", 60)), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Username) != MaxUsernameLen {
		t.Fatalf("username %q", u.Username)
	}
	if _, err := NewUser("bob", strings.Repeat("b", MaxUsernameLen+1)); !errors.Is(err, ErrUsernameTooLong) {
		t.Fatalf("got %v", err)
	}
	if err := u.SetUsername(""); !errors.Is(err, ErrUsernameEmpty) {
		t.Fatalf("got %v", err)
	}
}

func TestCallStateTerminal(t *testing.T) {
	for s := StateIdle; s <= StateFailed; s++ {
		want := s == StateEnded || s == StateFailed
		if s.Terminal() != want {
			t.Errorf("%s terminal=%v", s, s.Terminal())
		}
	}
	if got := CallState(42).String(); got != "CallState(42)" {
		t.Fatalf("got %q", got)
	}
}

func TestParseMediaKind(t *testing.T) {
	for _, m := range []MediaKind{MediaAudio, MediaAudioVideo} {
		got, err := ParseMediaKind(m.String())
		if err != nil || got != m {
			t.Fatalf("%s: got %v, %v", m, got, err)
		}
	}
	if _, err := ParseMediaKind("screen"); err == nil {
		t.Fatal("unknown call type accepted")
	}
	if MediaAudio.HasVideo() || !MediaAudioVideo.HasVideo() {
		t.Fatal("HasVideo")
	}
}
