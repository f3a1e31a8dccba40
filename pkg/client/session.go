package client

import "sync"

// Session holds the bearer credential for a Client. It is set on login and
// cleared on logout or when the server rejects the credential.
type Session struct {
	mu      sync.RWMutex
	token   string
	onClear []func()
}

// NewSession returns a session preloaded with token, which may be empty.
func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear forgets the credential and notifies OnClear listeners.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	listeners := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnClear registers fn to run every time the session is cleared, e.g. to
// remove a persisted token.
func (s *Session) OnClear(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
