package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/ARADHYA200/glow-shop-keeper/internal/domain"
)

// placementRepositoryInMemory хранит ключи идемпотентности оформления.
type placementRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.PlacementRecord
}

// NewPlacementRepository создаёт in-memory реализацию PlacementRepository.
func NewPlacementRepository() domain.PlacementRepository {
	return &placementRepositoryInMemory{
		items: make(map[string]domain.PlacementRecord),
	}
}

// Create регистрирует ключ в статусе processing; занятый ключ — ошибка.
func (r *placementRepositoryInMemory) Create(record domain.PlacementRecord) error {
	record.Key = strings.TrimSpace(record.Key)
	if record.Key == "" {
		return domain.ErrPlacementKeyExists
	}

	now := time.Now().UTC()
	if record.TTLAt.IsZero() {
		record.TTLAt = now.Add(24 * time.Hour)
	}
	record.Status = domain.PlacementStatusProcessing
	record.CreatedAt = now
	record.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[record.Key]; exists {
		return domain.ErrPlacementKeyExists
	}
	r.items[record.Key] = record
	return nil
}

// Get возвращает запись по ключу; отсутствие ключа — не ошибка.
func (r *placementRepositoryInMemory) Get(key string) (domain.PlacementRecord, bool, error) {
	key = strings.TrimSpace(key)

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[key]
	if !ok {
		return domain.PlacementRecord{}, false, nil
	}
	return record, true, nil
}

// AttachLines перезаписывает снимок позиций ключа.
func (r *placementRepositoryInMemory) AttachLines(key string, lines []domain.PlacementLine) error {
	key = strings.TrimSpace(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.items[key]
	if !ok {
		return domain.ErrPlacementKeyNotFound
	}
	record.Lines = append([]domain.PlacementLine(nil), lines...)
	record.UpdatedAt = time.Now().UTC()
	r.items[key] = record
	return nil
}

// MarkDone фиксирует успешное завершение оформления по ключу.
func (r *placementRepositoryInMemory) MarkDone(key string) error {
	return r.markStatus(key, domain.PlacementStatusDone)
}

// MarkFailed фиксирует отказ до записи заказа.
func (r *placementRepositoryInMemory) MarkFailed(key string) error {
	return r.markStatus(key, domain.PlacementStatusFailed)
}

func (r *placementRepositoryInMemory) markStatus(key string, status domain.PlacementStatus) error {
	key = strings.TrimSpace(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.items[key]
	if !ok {
		return domain.ErrPlacementKeyNotFound
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	r.items[key] = record
	return nil
}

// DeleteExpired удаляет записи с истёкшим TTL, не более limit за вызов.
func (r *placementRepositoryInMemory) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, record := range r.items {
		if record.TTLAt.After(before) {
			continue
		}
		delete(r.items, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}

	return removed, nil
}

var _ domain.PlacementRepository = (*placementRepositoryInMemory)(nil)
