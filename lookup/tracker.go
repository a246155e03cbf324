package lookup

import (
	"sync"
)

// Phase is a session's position in the search state machine:
// Idle -> Searching -> Found | NotFound | Error, and back to Searching on
// the next search.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseFound     Phase = "found"
	PhaseNotFound  Phase = "not_found"
	PhaseError     Phase = "error"
)

// SessionState is a snapshot of one session.
type SessionState struct {
	Phase      Phase
	Generation uint64
	Query      string
	Result     *Result
}

// Tracker keeps per-session search state. Each Begin bumps the session's
// generation; Complete with an older generation is discarded so a slow
// search can't overwrite a newer one.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*SessionState
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]*SessionState)}
}

// Begin moves the session to Searching and returns the new generation.
func (t *Tracker) Begin(session, query string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[session]
	if !ok {
		s = &SessionState{Phase: PhaseIdle}
		t.sessions[session] = s
	}
	s.Generation++
	s.Phase = PhaseSearching
	s.Query = query
	s.Result = nil
	return s.Generation
}

// Complete records res if gen is still current. It reports whether the
// result was applied.
func (t *Tracker) Complete(session string, gen uint64, res Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[session]
	if !ok || s.Generation != gen || s.Phase != PhaseSearching {
		return false
	}
	s.Phase = phaseFor(res.Status)
	s.Result = &res
	return true
}

// Reset returns the session to Idle, invalidating any in-flight search.
func (t *Tracker) Reset(session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[session]; ok {
		s.Generation++
		s.Phase = PhaseIdle
		s.Query = ""
		s.Result = nil
	}
}

// State returns a copy of the session's state. Unknown sessions are Idle.
func (t *Tracker) State(session string) SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[session]; ok {
		return *s
	}
	return SessionState{Phase: PhaseIdle}
}

func phaseFor(s Status) Phase {
	switch s {
	case StatusFound:
		return PhaseFound
	case StatusNotFound:
		return PhaseNotFound
	default:
		return PhaseError
	}
}
