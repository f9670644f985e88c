package admission

import (
	"context"
	"sync"

	"opptak/internal/domain"
	id "opptak/pkg/domain"
	"opptak/pkg/platform/sentinel"
)

// InMemoryApplicationStore keeps the default deployment dependency-free. It
// intentionally favors clarity over performance.
type InMemoryApplicationStore struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]domain.Application
}

func NewInMemoryApplicationStore() *InMemoryApplicationStore {
	return &InMemoryApplicationStore{apps: make(map[id.ApplicationID]domain.Application)}
}

func (s *InMemoryApplicationStore) Save(_ context.Context, app domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = app
	return nil
}

func (s *InMemoryApplicationStore) FindByID(_ context.Context, appID id.ApplicationID) (domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[appID]; ok {
		return app, nil
	}
	return domain.Application{}, sentinel.ErrNotFound
}

func (s *InMemoryApplicationStore) ListByStatus(_ context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Application
	for _, app := range s.apps {
		if app.Status == status {
			out = append(out, app)
		}
	}
	return out, nil
}
