package planner

import "sync"

// Manager hands out one Session per user identifier. The identifier is an
// opaque string; nothing is validated against it.
type Manager struct {
	mu       sync.Mutex
	routes   RouteService
	sessions map[string]*Session
}

func NewManager(routes RouteService) *Manager {
	return &Manager{
		routes:   routes,
		sessions: map[string]*Session{},
	}
}

// Get returns the session for userUID, creating it on first use.
func (m *Manager) Get(userUID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userUID]; ok {
		return s
	}
	s := NewSession(m.routes)
	m.sessions[userUID] = s
	return s
}
