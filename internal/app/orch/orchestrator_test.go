package orch

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/voicecall/internal/app"
	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
	"github.com/dkeye/voicecall/internal/protocol"
)

const (
	alice domain.ParticipantID = "alice@example.org"
	bob   domain.ParticipantID = "bob@example.org"
	carol domain.ParticipantID = "carol@example.org"
)

type recConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *recConn) messages(t *testing.T) []protocol.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Message, 0, len(c.frames))
	for _, f := range c.frames {
		m, err := protocol.Decode(f)
		if err != nil {
			t.Fatalf("decode %s: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func (c *recConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func connect(t *testing.T, o *Orchestrator, id domain.ParticipantID) (*recConn, core.MemberSession) {
	t.Helper()
	u, err := domain.NewUser(id, "")
	if err != nil {
		t.Fatal(err)
	}
	conn := &recConn{}
	sess := core.NewMemberSession(u, conn)
	o.Connect(id, sess, func() {})
	return conn, sess
}

func TestInitiateCallRelaysOfferAndLinksPair(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	connect(t, o, alice)
	bobConn, _ := connect(t, o, bob)

	err := o.InitiateCall(alice, &protocol.InitiateCall{Caller: string(alice), Callee: string(bob), CallType: "video"})
	if err != nil {
		t.Fatal(err)
	}
	msgs := bobConn.messages(t)
	if len(msgs) != 1 {
		t.Fatalf("bob got %d messages", len(msgs))
	}
	in, ok := msgs[0].(*protocol.CallIncoming)
	if !ok || in.Caller != string(alice) || in.CallType != "video" {
		t.Fatalf("unexpected message %#v", msgs[0])
	}
	if !o.Registry.InCallWith(alice, bob) {
		t.Fatal("pair not linked")
	}
}

func TestInitiateCallValidation(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	connect(t, o, alice)

	cases := []struct {
		name string
		msg  protocol.InitiateCall
		want error
	}{
		{"spoofed caller", protocol.InitiateCall{Caller: string(bob), Callee: string(alice), CallType: "audio"}, ErrIdentityMismatch},
		{"self call", protocol.InitiateCall{Caller: string(alice), Callee: string(alice), CallType: "audio"}, ErrSelfCall},
		{"empty callee", protocol.InitiateCall{Caller: string(alice), CallType: "audio"}, domain.ErrParticipantEmpty},
		{"offline callee", protocol.InitiateCall{Caller: string(alice), Callee: string(carol), CallType: "audio"}, ErrOffline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := o.InitiateCall(alice, &tc.msg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	if o.Registry.InCallWith(alice, carol) {
		t.Fatal("failed initiate linked the pair")
	}
}

func TestCallFlowRelaysEachAction(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	aliceConn, _ := connect(t, o, alice)
	bobConn, _ := connect(t, o, bob)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(o.InitiateCall(alice, &protocol.InitiateCall{Caller: string(alice), Callee: string(bob), CallType: "audio"}))
	must(o.AnswerCall(bob, &protocol.AnswerCall{Caller: string(alice), Callee: string(bob)}))
	must(o.SendICECandidate(bob, &protocol.SendICECandidate{Sender: string(bob), Recipient: string(alice)}))
	must(o.EndCall(alice, &protocol.EndCall{From: string(alice), To: string(bob)}))

	a := aliceConn.messages(t)
	if len(a) != 2 {
		t.Fatalf("alice got %d messages", len(a))
	}
	if _, ok := a[0].(*protocol.CallAnswered); !ok {
		t.Fatalf("want call:answered, got %T", a[0])
	}
	if c, ok := a[1].(*protocol.CallICECandidate); !ok || c.Sender != string(bob) {
		t.Fatalf("want call:iceCandidate from bob, got %#v", a[1])
	}
	b := bobConn.messages(t)
	if end, ok := b[len(b)-1].(*protocol.CallEnded); !ok || end.From != string(alice) {
		t.Fatalf("want call:ended from alice, got %#v", b[len(b)-1])
	}
	if o.Registry.InCallWith(alice, bob) {
		t.Fatal("pair still linked after end")
	}
}

func TestRejectCallUnlinks(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	aliceConn, _ := connect(t, o, alice)
	connect(t, o, bob)

	if err := o.InitiateCall(alice, &protocol.InitiateCall{Caller: string(alice), Callee: string(bob), CallType: "audio"}); err != nil {
		t.Fatal(err)
	}
	if err := o.RejectCall(bob, &protocol.RejectCall{Callee: string(bob), Caller: string(alice), Reason: "busy"}); err != nil {
		t.Fatal(err)
	}
	msgs := aliceConn.messages(t)
	r, ok := msgs[0].(*protocol.CallRejected)
	if !ok || r.Reason != "busy" || r.Callee != string(bob) {
		t.Fatalf("unexpected %#v", msgs[0])
	}
	if o.Registry.InCallWith(alice, bob) {
		t.Fatal("pair still linked after reject")
	}
}

func TestDisconnectEndsLinkedCalls(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	_, aliceSess := connect(t, o, alice)
	bobConn, _ := connect(t, o, bob)
	carolConn, _ := connect(t, o, carol)

	if err := o.InitiateCall(alice, &protocol.InitiateCall{Caller: string(alice), Callee: string(bob), CallType: "audio"}); err != nil {
		t.Fatal(err)
	}
	o.Disconnect(alice, aliceSess)

	b := bobConn.messages(t)
	if end, ok := b[len(b)-1].(*protocol.CallEnded); !ok || end.From != string(alice) {
		t.Fatalf("bob want call:ended from alice, got %#v", b[len(b)-1])
	}
	if n := len(carolConn.messages(t)); n != 0 {
		t.Fatalf("carol got %d messages", n)
	}
	if _, ok := o.Registry.Get(alice); ok {
		t.Fatal("alice still registered")
	}
}

func TestReconnectClosesPreviousConnection(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	first, firstSess := connect(t, o, alice)
	second, _ := connect(t, o, alice)

	if !first.isClosed() {
		t.Fatal("replaced connection left open")
	}
	// The old read pump exiting must not evict the new connection.
	o.Disconnect(alice, firstSess)
	if _, ok := o.Registry.Get(alice); !ok {
		t.Fatal("new connection evicted")
	}
	if second.isClosed() {
		t.Fatal("new connection closed")
	}
}

func TestDeliverBackpressure(t *testing.T) {
	t.Run("kick", func(t *testing.T) {
		o := New(app.NewRegistry(), app.SimplePolicy{})
		conn, _ := connect(t, o, bob)
		conn.full = true
		err := o.Deliver(bob, core.Frame(`{}`))
		if !errors.Is(err, core.ErrBackpressure) {
			t.Fatalf("got %v", err)
		}
		if !conn.isClosed() {
			t.Fatal("slow participant not kicked")
		}
	})
	t.Run("drop", func(t *testing.T) {
		o := New(app.NewRegistry(), app.DropPolicy{})
		conn, _ := connect(t, o, bob)
		conn.full = true
		if err := o.Deliver(bob, core.Frame(`{}`)); !errors.Is(err, core.ErrBackpressure) {
			t.Fatalf("got %v", err)
		}
		if conn.isClosed() {
			t.Fatal("drop policy closed the connection")
		}
	})
}

func TestEndCallRequiresCallLink(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	aliceConn, _ := connect(t, o, alice)
	connect(t, o, bob)
	connect(t, o, carol)

	if err := o.InitiateCall(alice, &protocol.InitiateCall{Caller: string(alice), Callee: string(bob), CallType: "audio"}); err != nil {
		t.Fatal(err)
	}
	err := o.EndCall(carol, &protocol.EndCall{From: string(carol), To: string(alice)})
	if !errors.Is(err, ErrNotInCall) {
		t.Fatalf("got %v, want ErrNotInCall", err)
	}
	if n := len(aliceConn.messages(t)); n != 0 {
		t.Fatalf("alice got %d messages", n)
	}
	if !o.Registry.InCallWith(alice, bob) {
		t.Fatal("alice and bob unlinked")
	}
}

func TestEndCallAfterBusyRejectIsDropped(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	aliceConn, _ := connect(t, o, alice)
	connect(t, o, carol)

	if err := o.InitiateCall(carol, &protocol.InitiateCall{Caller: string(carol), Callee: string(alice), CallType: "audio"}); err != nil {
		t.Fatal(err)
	}
	if err := o.RejectCall(alice, &protocol.RejectCall{Callee: string(alice), Caller: string(carol), Reason: "busy"}); err != nil {
		t.Fatal(err)
	}
	// carol hangs up before the rejection reaches her.
	if err := o.EndCall(carol, &protocol.EndCall{From: string(carol), To: string(alice)}); !errors.Is(err, ErrNotInCall) {
		t.Fatalf("got %v, want ErrNotInCall", err)
	}
	for _, m := range aliceConn.messages(t) {
		if _, ok := m.(*protocol.CallEnded); ok {
			t.Fatal("alice received call:ended")
		}
	}
}

func TestActionsValidateTarget(t *testing.T) {
	o := New(app.NewRegistry(), app.SimplePolicy{})
	connect(t, o, alice)

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"answer empty caller", func() error {
			return o.AnswerCall(alice, &protocol.AnswerCall{Callee: string(alice)})
		}, domain.ErrParticipantEmpty},
		{"candidate empty recipient", func() error {
			return o.SendICECandidate(alice, &protocol.SendICECandidate{Sender: string(alice), Recipient: " "})
		}, domain.ErrParticipantEmpty},
		{"reject empty caller", func() error {
			return o.RejectCall(alice, &protocol.RejectCall{Callee: string(alice)})
		}, domain.ErrParticipantEmpty},
		{"end empty target", func() error {
			return o.EndCall(alice, &protocol.EndCall{From: string(alice)})
		}, domain.ErrParticipantEmpty},
		{"end self", func() error {
			return o.EndCall(alice, &protocol.EndCall{From: string(alice), To: string(alice)})
		}, ErrSelfCall},
		{"answer spoofed callee", func() error {
			return o.AnswerCall(alice, &protocol.AnswerCall{Caller: string(bob), Callee: string(carol)})
		}, ErrIdentityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
