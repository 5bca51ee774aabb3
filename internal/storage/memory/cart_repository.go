package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
// Корзина и позиции хранятся отдельно: позиции читаются и пишутся
// независимыми вызовами, как и в реальном backend.
type cartRepositoryInMemory struct {
	mu     sync.RWMutex
	byUser map[string]domain.Cart
	byID   map[string]string // cartID -> userID
	lines  map[string]map[string]domain.CartLine
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		byUser: make(map[string]domain.Cart),
		byID:   make(map[string]string),
		lines:  make(map[string]map[string]domain.CartLine),
	}
}

// GetByUser возвращает корзину пользователя вместе с позициями.
func (r *cartRepositoryInMemory) GetByUser(userID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.byUser[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	cart.Lines = r.collectLines(cart.ID)
	return cart, nil
}

func (r *cartRepositoryInMemory) collectLines(cartID string) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(r.lines[cartID]))
	for _, line := range r.lines[cartID] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].AddedAt.Before(lines[j].AddedAt)
		}
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// Create сохраняет новую корзину без позиций.
func (r *cartRepositoryInMemory) Create(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[cart.UserID]; exists {
		return domain.ErrCartAlreadyExists
	}
	cart.Lines = nil
	r.byUser[cart.UserID] = cart
	r.byID[cart.ID] = cart.UserID
	r.lines[cart.ID] = make(map[string]domain.CartLine)
	return nil
}

// UpsertLine вставляет позицию или перезаписывает существующую по ID.
func (r *cartRepositoryInMemory) UpsertLine(cartID string, line domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byID[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if r.lines[cartID] == nil {
		r.lines[cartID] = make(map[string]domain.CartLine)
	}
	r.lines[cartID][line.ID] = line
	r.touch(userID)
	return nil
}

// DeleteLine удаляет позицию; отсутствие позиции — не ошибка.
func (r *cartRepositoryInMemory) DeleteLine(cartID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byID[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	delete(r.lines[cartID], lineID)
	r.touch(userID)
	return nil
}

// DeleteAllLines очищает состав корзины, не удаляя саму корзину.
func (r *cartRepositoryInMemory) DeleteAllLines(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byID[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	r.lines[cartID] = make(map[string]domain.CartLine)
	r.touch(userID)
	return nil
}

func (r *cartRepositoryInMemory) touch(userID string) {
	cart := r.byUser[userID]
	cart.UpdatedAt = time.Now().UTC()
	r.byUser[userID] = cart
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
