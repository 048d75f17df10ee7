package session

import (
	"context"
	"sync"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
)

type memoryEntry struct {
	session   ledger.RegisterSession
	expiresAt time.Time
}

// MemoryStore implements ledger.SessionStore with an in-process map. It is
// suitable for single-instance deployments and testing; expiry is evaluated
// lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory session store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

// Open stores the session if no live session exists for the tenant
func (s *MemoryStore) Open(ctx context.Context, session ledger.RegisterSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[session.TenantID]; exists && s.now().Before(e.expiresAt) {
		return shared.ErrRegisterAlreadyOpen
	}
	s.entries[session.TenantID] = memoryEntry{
		session:   session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Get returns the open session for the tenant, nil when closed or expired
func (s *MemoryStore) Get(ctx context.Context, tenantID int64) (*ledger.RegisterSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[tenantID]
	if !exists {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, tenantID)
		return nil, nil
	}
	session := e.session
	return &session, nil
}

// Close removes the session
func (s *MemoryStore) Close(ctx context.Context, tenantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[tenantID]
	if !exists || !s.now().Before(e.expiresAt) {
		delete(s.entries, tenantID)
		return shared.ErrRegisterNotOpen
	}
	delete(s.entries, tenantID)
	return nil
}

// Ensure MemoryStore implements ledger.SessionStore
var _ ledger.SessionStore = (*MemoryStore)(nil)
