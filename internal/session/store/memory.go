package store

import (
	"sync"

	"codgoo/client/internal/session/domain"
)

// Memory is the in-memory credential store. It performs no I/O; the session
// lives for the lifetime of the process.
type Memory struct {
	mu   sync.RWMutex
	snap domain.Snapshot
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns a copy of the current snapshot.
func (m *Memory) Get() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := m.snap
	if m.snap.User != nil {
		u := *m.snap.User
		snap.User = &u
	}
	return snap
}

// SetLoading sets the in-flight flag.
func (m *Memory) SetLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Loading = v
}

// SetError replaces the failure message; empty string clears it.
func (m *Memory) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Error = msg
}

// SetUser replaces the user profile, leaving the token untouched.
func (m *Memory) SetUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.User = copyUser(u)
}

// SetSession replaces the token and user together.
func (m *Memory) SetSession(token string, u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Token = token
	m.snap.User = copyUser(u)
}

// Clear resets to the empty snapshot.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = domain.Snapshot{}
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
