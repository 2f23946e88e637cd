package token

import (
	"context"
	"sync"
	"time"

	"BangerBoard/internal/ports"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory; restarting the service voids all links.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]entry{}}
}

// Put overwrites the token of submissionID.
func (m *MemoryStore) Put(_ context.Context, submissionID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[submissionID] = entry{token: token, expiresAt: expiresAt}
	return nil
}

// Get returns the current token of submissionID.
func (m *MemoryStore) Get(_ context.Context, submissionID string) (string, time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[submissionID]
	return e.token, e.expiresAt, ok, nil
}

// Prune drops expired entries.
func (m *MemoryStore) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}
