package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Заголовки и позиции лежат в разных структурах: запись заказа целиком
// состоит из независимых вызовов, между которыми возможен сбой.
type orderRepositoryInMemory struct {
	mu      sync.RWMutex
	headers map[string]domain.Order
	lines   map[string]map[string]domain.OrderLine // orderID -> lineID -> line
}

// NewOrderRepository возвращает in-memory репозиторий для локальной
// разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		headers: make(map[string]domain.Order),
		lines:   make(map[string]map[string]domain.OrderLine),
	}
}

// CreateHeader сохраняет заголовок заказа, если ID ещё не занят.
func (r *orderRepositoryInMemory) CreateHeader(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.headers[order.ID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	order.Lines = nil
	r.headers[order.ID] = order
	r.lines[order.ID] = make(map[string]domain.OrderLine)
	return nil
}

// CreateLine сохраняет позицию заказа. Повторная запись позиции с тем же ID —
// no-op, чтобы возобновление оформления оставалось идемпотентным.
func (r *orderRepositoryInMemory) CreateLine(line domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.headers[line.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	if r.lines[line.OrderID] == nil {
		r.lines[line.OrderID] = make(map[string]domain.OrderLine)
	}
	if _, exists := r.lines[line.OrderID][line.ID]; exists {
		return nil
	}
	r.lines[line.OrderID][line.ID] = line
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.headers[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Lines = r.collectLines(id)
	return order, nil
}

func (r *orderRepositoryInMemory) collectLines(orderID string) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(r.lines[orderID]))
	for _, line := range r.lines[orderID] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].CreatedAt.Before(lines[j].CreatedAt)
		}
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (r *orderRepositoryInMemory) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.headers))
	for id, order := range r.headers {
		if order.UserID != userID {
			continue
		}
		order.Lines = r.collectLines(id)
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListWithoutLines возвращает заказы без позиций, созданные до olderThan.
func (r *orderRepositoryInMemory) ListWithoutLines(olderThan time.Time, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for id, order := range r.headers {
		if len(r.lines[id]) > 0 {
			continue
		}
		if !order.CreatedAt.Before(olderThan) {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save перезаписывает заголовок заказа, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.headers[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	order.Version++
	order.Lines = nil
	r.headers[order.ID] = order
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
