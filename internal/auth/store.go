package auth

import (
	"context"
	"sync"

	"opptak/pkg/platform/sentinel"
)

// StaffStore resolves staff accounts for login.
type StaffStore interface {
	FindByUsername(ctx context.Context, username string) (Staff, error)
}

// InMemoryStaffStore serves the prototype deployment; accounts are seeded at
// startup.
type InMemoryStaffStore struct {
	mu    sync.RWMutex
	staff map[string]Staff
}

func NewInMemoryStaffStore() *InMemoryStaffStore {
	return &InMemoryStaffStore{staff: make(map[string]Staff)}
}

// Seed registers accounts, replacing any with the same username.
func (s *InMemoryStaffStore) Seed(accounts ...Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.staff[account.Username] = account
	}
}

func (s *InMemoryStaffStore) FindByUsername(_ context.Context, username string) (Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.staff[username]; ok {
		return account, nil
	}
	return Staff{}, sentinel.ErrNotFound
}
