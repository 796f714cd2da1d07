package gateway

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a gateway connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateIdentifying
	StateResuming
	StateReady
	StateDispatching
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateIdentifying:
		return "identifying"
	case StateResuming:
		return "resuming"
	case StateReady:
		return "ready"
	case StateDispatching:
		return "dispatching"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Session is one logical connection lifetime. It survives resumes and is
// reset only when a fresh identify is sent.
type Session struct {
	mu        sync.RWMutex
	id        string
	resumeURL string

	// -1 until the first dispatch of the session.
	sequence atomic.Int64
}

func newSession() *Session {
	s := &Session{}
	s.sequence.Store(-1)
	return s
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) ResumeURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resumeURL
}

// Sequence returns the last seen sequence number; ok is false before the
// first dispatch.
func (s *Session) Sequence() (seq int64, ok bool) {
	seq = s.sequence.Load()
	return seq, seq >= 0
}

// Resumable reports whether there is enough state to send a resume.
func (s *Session) Resumable() bool {
	_, ok := s.Sequence()
	return ok && s.ID() != ""
}

// establish records the identity handed out in READY.
func (s *Session) establish(id, resumeURL string) {
	s.mu.Lock()
	s.id = id
	s.resumeURL = resumeURL
	s.mu.Unlock()
}

// reset discards the session id and sequence ahead of a fresh identify.
func (s *Session) reset() {
	s.mu.Lock()
	s.id = ""
	s.resumeURL = ""
	s.mu.Unlock()
	s.sequence.Store(-1)
}

// advance moves the sequence forward. It reports false, leaving the sequence
// untouched, if seq is not greater than the last seen value.
func (s *Session) advance(seq int64) bool {
	for {
		last := s.sequence.Load()
		if seq <= last {
			return false
		}
		if s.sequence.CompareAndSwap(last, seq) {
			return true
		}
	}
}
