package call

import (
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

type fakeTrack struct {
	id      string
	kind    webrtc.RTPCodecType
	mu      sync.Mutex
	stops   int
	ended   bool
	enabled bool
}

func newFakeTrack(id string, kind webrtc.RTPCodecType) *fakeTrack {
	return &fakeTrack{id: id, kind: kind, enabled: true}
}

func (t *fakeTrack) ID() string                    { return t.id }
func (t *fakeTrack) Kind() webrtc.RTPCodecType     { return t.kind }
func (t *fakeTrack) TrackLocal() webrtc.TrackLocal { return nil }

func (t *fakeTrack) ReadyState() core.ReadyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return core.ReadyStateEnded
	}
	return core.ReadyStateLive
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	t.ended = true
}

func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *fakeTrack) SetEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = on
}

func (t *fakeTrack) stopCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

var (
	testOffer  = webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 offer"}
	testAnswer = webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 answer"}
)

type fakePeer struct {
	sid string
	h   core.PeerHandlers

	mu         sync.Mutex
	remote     *webrtc.SessionDescription
	closed     bool
	closeCalls int
	applied    []webrtc.ICECandidateInit
	tracks     []core.LocalTrack

	offerErr   error
	answerErr  error
	remoteErr  error
	closePanic bool
}

var _ core.PeerConnection = (*fakePeer)(nil)

func (p *fakePeer) CreateOffer() (webrtc.SessionDescription, error) {
	if p.offerErr != nil {
		return webrtc.SessionDescription{}, p.offerErr
	}
	return testOffer, nil
}

func (p *fakePeer) CreateAnswer() (webrtc.SessionDescription, error) {
	if p.answerErr != nil {
		return webrtc.SessionDescription{}, p.answerErr
	}
	return testAnswer, nil
}

func (p *fakePeer) SetRemoteDescription(sd webrtc.SessionDescription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remote != nil {
		return core.ErrRemoteDescriptionSet
	}
	if p.remoteErr != nil {
		return p.remoteErr
	}
	p.remote = &sd
	return nil
}

func (p *fakePeer) HasRemoteDescription() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remote != nil
}

func (p *fakePeer) AddICECandidate(c webrtc.ICECandidateInit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return core.ErrPeerClosed
	}
	if p.remote == nil {
		return core.ErrNoRemoteDescription
	}
	p.applied = append(p.applied, c)
	return nil
}

func (p *fakePeer) AddLocalTrack(t core.LocalTrack) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks = append(p.tracks, t)
	return nil
}

func (p *fakePeer) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	if p.closePanic {
		panic("close exploded")
	}
	if p.closed {
		return nil
	}
	p.closed = true
	p.h = core.PeerHandlers{}
	return nil
}

func (p *fakePeer) appliedCandidates() []webrtc.ICECandidateInit {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]webrtc.ICECandidateInit, len(p.applied))
	copy(out, p.applied)
	return out
}

// handlers returns the callbacks registered at creation, nil once closed.
func (p *fakePeer) handlers() core.PeerHandlers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.h
}

type fakeFactory struct {
	mu    sync.Mutex
	peers []*fakePeer
	err   error
	setup func(*fakePeer)
}

func (f *fakeFactory) NewPeer(sid string, h core.PeerHandlers) (core.PeerConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p := &fakePeer{sid: sid, h: h}
	if f.setup != nil {
		f.setup(p)
	}
	f.peers = append(f.peers, p)
	return p, nil
}

func (f *fakeFactory) last() *fakePeer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.peers) == 0 {
		return nil
	}
	return f.peers[len(f.peers)-1]
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.peers)
}

type recordingNotifier struct {
	mu      sync.Mutex
	states  []core.Snapshot
	notices []core.Notice
	remotes []*core.MediaStream
}

func (n *recordingNotifier) StateChanged(s core.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, s)
}

func (n *recordingNotifier) RemoteStream(s *core.MediaStream) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.remotes = append(n.remotes, s)
}

func (n *recordingNotifier) Notice(x core.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, x)
}

func (n *recordingNotifier) noticeMessages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Message)
	}
	return out
}

// stateTrail lists published states, collapsing repeats.
func (n *recordingNotifier) stateTrail() []domain.CallState {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.CallState
	for _, s := range n.states {
		if len(out) > 0 && out[len(out)-1] == s.State {
			continue
		}
		out = append(out, s.State)
	}
	return out
}
