package app

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicecall/internal/core"
	"github.com/dkeye/voicecall/internal/domain"
)

type sessionEntry struct {
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks which participants are online and which pairs are
// currently exchanging call traffic.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ParticipantID]*sessionEntry
	calls    map[domain.ParticipantID]map[domain.ParticipantID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ParticipantID]*sessionEntry),
		calls:    make(map[domain.ParticipantID]map[domain.ParticipantID]struct{}),
	}
}

// Bind registers sess for id and returns the entry it replaced, if any.
// The caller is responsible for closing the replaced connection.
func (r *Registry) Bind(id domain.ParticipantID, sess core.MemberSession, cancel context.CancelFunc) (core.MemberSession, context.CancelFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, replaced := r.sessions[id]
	r.sessions[id] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Bool("replaced", replaced).Msg("bound signal")
	if !replaced {
		return nil, nil, false
	}
	return old.Session, old.Cancel, true
}

func (r *Registry) Get(id domain.ParticipantID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind removes id only while sess is still its current session, so a
// replaced connection cannot evict its successor.
func (r *Registry) Unbind(id domain.ParticipantID, sess core.MemberSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || e.Session != sess {
		return false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Msg("unbind session")
	return true
}

func (r *Registry) Cancel(id domain.ParticipantID) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("participant", string(id)).Msg("canceled session")
	return true
}

// Online returns the connected users ordered by id.
func (r *Registry) Online() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, *e.Session.Meta())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) LinkCall(a, b domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.link(a, b)
	r.link(b, a)
}

func (r *Registry) link(a, b domain.ParticipantID) {
	peers, ok := r.calls[a]
	if !ok {
		peers = make(map[domain.ParticipantID]struct{})
		r.calls[a] = peers
	}
	peers[b] = struct{}{}
}

func (r *Registry) UnlinkCall(a, b domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unlink(a, b)
	r.unlink(b, a)
}

func (r *Registry) unlink(a, b domain.ParticipantID) {
	peers, ok := r.calls[a]
	if !ok {
		return
	}
	delete(peers, b)
	if len(peers) == 0 {
		delete(r.calls, a)
	}
}

// DropCalls removes every call link of id and returns the other ends.
func (r *Registry) DropCalls(id domain.ParticipantID) []domain.ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers := r.calls[id]
	out := make([]domain.ParticipantID, 0, len(peers))
	for p := range peers {
		out = append(out, p)
		r.unlink(p, id)
	}
	delete(r.calls, id)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) InCallWith(a, b domain.ParticipantID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.calls[a][b]
	return ok
}
