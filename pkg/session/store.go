// Package session keeps per-user, per-case conversation state in process
// memory: the cached summary, the rolling history window, any pending
// clarification, and whether the ephemeral uploaded-case index has been built
// since the process started. Nothing here is durable; everything can be
// reconstructed from the repository.
package session

import (
	"sync"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

// DefaultHistoryCap bounds the rolling history window per session.
const DefaultHistoryCap = 20

// Key identifies one session. All state is scoped to an owner and a case.
type Key struct {
	Owner  model.OwnerID
	CaseID model.CaseID
}

type session struct {
	summary *model.CaseSummary
	history []model.Turn
	pending *model.PendingClarification
	indexed bool
}

type Store struct {
	mu         sync.RWMutex
	sessions   map[Key]*session
	historyCap int
}

type Option func(*Store)

func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[Key]*session),
		historyCap: DefaultHistoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) get(key Key) *session {
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := &session{}
	s.sessions[key] = sess
	return sess
}

// Summary returns the cached summary, or nil if the session has none yet.
// Callers fall back to the repository and call SetSummary.
func (s *Store) Summary(key Key) *model.CaseSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[key]; ok {
		return sess.summary
	}
	return nil
}

func (s *Store) SetSummary(key Key, summary *model.CaseSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(key).summary = summary
}

// History returns a copy of the session's rolling history window, oldest
// first.
func (s *Store) History(key Key) []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	out := make([]model.Turn, len(sess.history))
	copy(out, sess.history)
	return out
}

// AppendHistory appends turns, evicting the oldest entries beyond the cap.
func (s *Store) AppendHistory(key Key, turns ...model.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(key)
	sess.history = append(sess.history, turns...)
	if over := len(sess.history) - s.historyCap; over > 0 {
		sess.history = append([]model.Turn(nil), sess.history[over:]...)
	}
}

// Pending returns the session's pending clarification, if any.
func (s *Store) Pending(key Key) *model.PendingClarification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[key]; ok {
		return sess.pending
	}
	return nil
}

// PutPending installs a clarification round, replacing any previous one.
func (s *Store) PutPending(key Key, p *model.PendingClarification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(key).pending = p
}

// TakePending removes and returns the pending clarification. A clarification
// round is consumed exactly once, whether its resolution succeeds or not.
func (s *Store) TakePending(key Key) *model.PendingClarification {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	p := sess.pending
	sess.pending = nil
	return p
}

// Indexed reports whether the uploaded-case index has been built for this
// session since process start.
func (s *Store) Indexed(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[key]; ok {
		return sess.indexed
	}
	return false
}

func (s *Store) SetIndexed(key Key, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(key).indexed = v
}

// Reset drops all session state for the key. Idempotent, and never touches
// durable storage.
func (s *Store) Reset(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
