package memory

import (
	"sync"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// profileRepositoryInMemory хранит профили доставки в памяти.
type profileRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.DeliveryProfile
}

// NewProfileRepository создаёт in-memory реализацию ProfileRepository.
func NewProfileRepository() domain.ProfileRepository {
	return &profileRepositoryInMemory{
		items: make(map[string]domain.DeliveryProfile),
	}
}

// Get возвращает профиль или ErrProfileNotFound, если его ещё нет.
func (r *profileRepositoryInMemory) Get(userID string) (domain.DeliveryProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.items[userID]
	if !ok {
		return domain.DeliveryProfile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

// Save создаёт или перезаписывает профиль.
func (r *profileRepositoryInMemory) Save(profile domain.DeliveryProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.UserID == "" {
		return domain.ErrUserRequired
	}
	r.items[profile.UserID] = profile
	return nil
}

var _ domain.ProfileRepository = (*profileRepositoryInMemory)(nil)
