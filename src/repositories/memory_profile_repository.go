package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]entities.Profile
	failures map[string]error
}

func NewMemoryProfileRepository(profiles ...entities.Profile) *MemoryProfileRepository {
	repo := &MemoryProfileRepository{
		profiles: make(map[string]entities.Profile),
		failures: make(map[string]error),
	}
	for _, profile := range profiles {
		repo.Save(profile)
	}
	return repo
}

func (m *MemoryProfileRepository) Save(profile entities.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
}

// FailFor faz GetByID(id) devolver err, simulando um lookup que falhou.
func (m *MemoryProfileRepository) FailFor(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = err
}

func (m *MemoryProfileRepository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures[id]; ok {
		return nil, err
	}

	profile, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("MemoryProfileRepository.GetByID - user %s: %w", id, domain.ErrProfileNotFound)
	}
	return &profile, nil
}

func (m *MemoryProfileRepository) GetByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, profile := range m.profiles {
		if strings.EqualFold(profile.Email, email) {
			p := profile
			return &p, nil
		}
	}
	return nil, fmt.Errorf("MemoryProfileRepository.GetByEmail - user %s: %w", email, domain.ErrProfileNotFound)
}
